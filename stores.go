package main

import (
	"context"
	"fmt"
	"time"

	appOrder "github.com/kursant77/ajabo-f69de2d8/internal/application/order"
	"github.com/kursant77/ajabo-f69de2d8/internal/config"
	domcatalog "github.com/kursant77/ajabo-f69de2d8/internal/domain/catalog"
	dominventory "github.com/kursant77/ajabo-f69de2d8/internal/domain/inventory"
	domorder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	domprofile "github.com/kursant77/ajabo-f69de2d8/internal/domain/profile"
	domsettings "github.com/kursant77/ajabo-f69de2d8/internal/domain/settings"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/gormstore"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/memory"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/ratelimit"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/redis/go-redis/v9"
)

type stores struct {
	backend   string
	orders    domorder.Repository
	inventory dominventory.Repository
	catalog   domcatalog.Repository
	settings  domsettings.Repository
	profiles  domprofile.Repository
	close     func()
}

// openStores uses postgres (or sqlite) when a database URL is configured and process memory otherwise.
func openStores(cfg *config.Config) (*stores, error) {
	if cfg.Database.URL == "" {
		orders := memory.NewOrderRepository()
		return &stores{
			backend:   "memory",
			orders:    orders,
			inventory: memory.NewInventoryRepository(orders),
			catalog:   memory.NewCatalogRepository(),
			settings:  memory.NewSettingsRepository(),
			profiles:  memory.NewProfileRepository(),
			close:     func() {},
		}, nil
	}

	db, err := gormstore.Open(gormstore.Options{
		DSN:          cfg.Database.URL,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}
	return &stores{
		backend:   "gorm",
		orders:    gormstore.NewOrderRepository(db),
		inventory: gormstore.NewInventoryRepository(db),
		catalog:   gormstore.NewCatalogRepository(db),
		settings:  gormstore.NewSettingsRepository(db),
		profiles:  gormstore.NewProfileRepository(db),
		close:     func() { _ = gormstore.Close(db) },
	}, nil
}

// newLimiter shares the order window through redis when configured. An unreachable redis
// is only logged: the limiter fails open per request anyway.
func newLimiter(ctx context.Context, cfg *config.Config, tel observability.Observability, logger observability.Logger) (appOrder.RateLimiter, func()) {
	opts := ratelimit.Options{
		Window: cfg.RateLimit.Window,
		Max:    cfg.RateLimit.Max,
		Tel:    tel,
	}
	if cfg.Redis.Addr == "" {
		return ratelimit.NewSlidingWindow(opts), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis_unreachable",
			observability.F("addr", cfg.Redis.Addr),
			observability.F("error", fmt.Sprint(err)),
		)
	}
	return ratelimit.NewRedisSlidingWindow(client, opts), func() { _ = client.Close() }
}
