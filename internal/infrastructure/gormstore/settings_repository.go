package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/settings"
	"gorm.io/gorm"
)

const settingsRowID = 1

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	var rec settingsRecord
	err := r.db.WithContext(ctx).Where("id = ?", settingsRowID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("settings repository: get: %w", err)
	}
	return &domain.Settings{
		CafeName:        rec.CafeName,
		Address:         rec.Address,
		Phone:           rec.Phone,
		OpenTime:        rec.OpenTime,
		CloseTime:       rec.CloseTime,
		Description:     rec.Description,
		DeliveryEnabled: rec.DeliveryEnabled,
		MinOrderAmount:  rec.MinOrderAmount,
		DeliveryFee:     rec.DeliveryFee,
		Payments: payment.Toggles{
			payment.MethodCash:   rec.PaymentCashEnabled,
			payment.MethodClick:  rec.PaymentClickEnabled,
			payment.MethodPayme:  rec.PaymentPaymeEnabled,
			payment.MethodUzum:   rec.PaymentUzumEnabled,
			payment.MethodPaynet: rec.PaymentPaynetEnabled,
		},
		UpdatedAt: rec.UpdatedAt.UTC(),
	}, nil
}

// Save upserts the singleton row.
func (r *SettingsRepository) Save(ctx context.Context, s *domain.Settings) error {
	rec := settingsRecord{
		ID:                   settingsRowID,
		CafeName:             s.CafeName,
		Address:              s.Address,
		Phone:                s.Phone,
		OpenTime:             s.OpenTime,
		CloseTime:            s.CloseTime,
		Description:          s.Description,
		DeliveryEnabled:      s.DeliveryEnabled,
		MinOrderAmount:       s.MinOrderAmount,
		DeliveryFee:          s.DeliveryFee,
		PaymentCashEnabled:   s.Payments[payment.MethodCash],
		PaymentClickEnabled:  s.Payments[payment.MethodClick],
		PaymentPaymeEnabled:  s.Payments[payment.MethodPayme],
		PaymentUzumEnabled:   s.Payments[payment.MethodUzum],
		PaymentPaynetEnabled: s.Payments[payment.MethodPaynet],
		UpdatedAt:            s.UpdatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("settings repository: save: %w", err)
	}
	return nil
}
