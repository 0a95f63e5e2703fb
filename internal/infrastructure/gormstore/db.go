// Package gormstore persists the service's aggregates with gorm. Postgres is used in production,
// sqlite for local runs and tests.
package gormstore

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	// DSN is a postgres URL/keyword string, or "sqlite:<path>" (":memory:" allowed).
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// Open connects and migrates the schema.
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(opts.DSN, "sqlite:"):
		dialector = sqlite.Open(strings.TrimPrefix(opts.DSN, "sqlite:"))
	case opts.DSN != "":
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("gormstore: empty dsn")
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gormstore: pool: %w", err)
	}
	if strings.HasPrefix(opts.DSN, "sqlite:") {
		// each sqlite connection to :memory: is its own database
		sqlDB.SetMaxOpenConns(1)
	} else {
		if opts.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		}
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&orderRecord{},
		&stockRecord{},
		&ingredientRecord{},
		&productRecord{},
		&categoryRecord{},
		&settingsRecord{},
		&profileRecord{},
	); err != nil {
		return fmt.Errorf("gormstore: migrate: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
