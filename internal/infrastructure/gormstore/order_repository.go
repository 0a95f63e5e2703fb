package gormstore

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	if order == nil || order.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}
	rec := toOrderRecord(order)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return fmt.Errorf("order repository: insert: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	var rec orderRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("order repository: get: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *OrderRepository) List(ctx context.Context, f domain.Filter) ([]*domain.Order, error) {
	q := r.db.WithContext(ctx).Model(&orderRecord{})
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where("status IN ?", statuses)
	}
	switch {
	case f.TelegramUserID != "" && f.PhoneNumber != "":
		q = q.Where("telegram_user_id = ? OR phone_number = ?", f.TelegramUserID, f.PhoneNumber)
	case f.TelegramUserID != "":
		q = q.Where("telegram_user_id = ?", f.TelegramUserID)
	case f.PhoneNumber != "":
		q = q.Where("phone_number = ?", f.PhoneNumber)
	}
	if !f.CreatedAfter.IsZero() {
		q = q.Where("created_at >= ?", f.CreatedAfter.UTC())
	}
	if !f.CreatedBefore.IsZero() {
		q = q.Where("created_at < ?", f.CreatedBefore.UTC())
	}
	q = q.Order("created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var recs []orderRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("order repository: list: %w", err)
	}
	out := make([]*domain.Order, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, order *domain.Order, from domain.Status) error {
	if order == nil || order.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}
	res := r.db.WithContext(ctx).Model(&orderRecord{}).
		Where("id = ? AND status = ?", order.ID, string(from)).
		Updates(map[string]any{
			"status":          string(order.Status),
			"delivery_person": order.DeliveryPerson,
			"updated_at":      order.UpdatedAt.UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("order repository: update status: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", order.ID).Count(&n).Error; err != nil {
		return fmt.Errorf("order repository: update status: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

func toOrderRecord(o *domain.Order) orderRecord {
	return orderRecord{
		ID:                o.ID,
		ProductName:       o.ProductName,
		Quantity:          o.Quantity,
		TotalPrice:        o.TotalPrice,
		CustomerName:      o.CustomerName,
		PhoneNumber:       o.PhoneNumber,
		Address:           o.Address,
		Status:            string(o.Status),
		OrderType:         string(o.OrderType),
		PaymentMethod:     string(o.PaymentMethod),
		DeliveryPerson:    o.DeliveryPerson,
		TelegramUserID:    o.TelegramUserID,
		WarehouseDeducted: o.WarehouseDeducted,
		CreatedAt:         o.CreatedAt.UTC(),
		UpdatedAt:         o.UpdatedAt.UTC(),
	}
}

func (rec *orderRecord) toDomain() *domain.Order {
	return &domain.Order{
		ID:                rec.ID,
		ProductName:       rec.ProductName,
		Quantity:          rec.Quantity,
		TotalPrice:        rec.TotalPrice,
		CustomerName:      rec.CustomerName,
		PhoneNumber:       rec.PhoneNumber,
		Address:           rec.Address,
		Status:            domain.Status(rec.Status),
		OrderType:         orderType(rec.OrderType),
		PaymentMethod:     payment.Method(rec.PaymentMethod),
		DeliveryPerson:    rec.DeliveryPerson,
		TelegramUserID:    rec.TelegramUserID,
		WarehouseDeducted: rec.WarehouseDeducted,
		CreatedAt:         rec.CreatedAt.UTC(),
		UpdatedAt:         rec.UpdatedAt.UTC(),
	}
}

// orderType reads legacy rows without a type as delivery; unknown values pass through.
func orderType(raw string) domain.Type {
	t, err := domain.ParseType(raw)
	if err != nil {
		return domain.Type(raw)
	}
	return t
}
