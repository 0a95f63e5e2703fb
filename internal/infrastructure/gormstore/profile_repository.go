package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/profile"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByPhone returns the most recently updated profile for the phone.
func (r *ProfileRepository) FindByPhone(ctx context.Context, phone string) (*domain.Profile, error) {
	var rec profileRecord
	err := r.db.WithContext(ctx).
		Where("phone = ?", domain.NormalizePhone(phone)).
		Order("updated_at DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile repository: find: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *ProfileRepository) FindByTelegramID(ctx context.Context, telegramID string) (*domain.Profile, error) {
	var rec profileRecord
	err := r.db.WithContext(ctx).First(&rec, "telegram_id = ?", telegramID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile repository: find by telegram id: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	rec := profileRecord{
		TelegramID: p.TelegramID,
		Phone:      domain.NormalizePhone(p.Phone),
		FullName:   p.FullName,
		Username:   p.Username,
		UpdatedAt:  updated.UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		UpdateAll: true,
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("profile repository: upsert: %w", err)
	}
	return nil
}

func (rec *profileRecord) toDomain() *domain.Profile {
	return &domain.Profile{
		TelegramID: rec.TelegramID,
		Phone:      rec.Phone,
		FullName:   rec.FullName,
		Username:   rec.Username,
		UpdatedAt:  rec.UpdatedAt.UTC(),
	}
}
