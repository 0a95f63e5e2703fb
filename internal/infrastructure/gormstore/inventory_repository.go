package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/inventory"
	domorder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	"gorm.io/gorm"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) CreateStock(ctx context.Context, item *domain.StockItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&stockRecord{}).
			Where("id = ? OR LOWER(name) = LOWER(?)", item.ID, item.Name).
			Count(&n).Error; err != nil {
			return fmt.Errorf("inventory repository: create: %w", err)
		}
		if n > 0 {
			return domain.ErrConflict
		}
		rec := toStockRecord(item)
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("inventory repository: create: %w", err)
		}
		return nil
	})
}

func (r *InventoryRepository) GetStock(ctx context.Context, id string) (*domain.StockItem, error) {
	return r.firstStock(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *InventoryRepository) FindStockByName(ctx context.Context, name string) (*domain.StockItem, error) {
	return r.firstStock(r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name))
}

func (r *InventoryRepository) firstStock(q *gorm.DB) (*domain.StockItem, error) {
	var rec stockRecord
	err := q.First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("inventory repository: get: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *InventoryRepository) ListStock(ctx context.Context) ([]*domain.StockItem, error) {
	var recs []stockRecord
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("inventory repository: list: %w", err)
	}
	out := make([]*domain.StockItem, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

func (r *InventoryRepository) UpdateStock(ctx context.Context, item *domain.StockItem) error {
	res := r.db.WithContext(ctx).Model(&stockRecord{}).Where("id = ?", item.ID).
		Updates(map[string]any{
			"name":         item.Name,
			"quantity":     item.Quantity,
			"unit":         item.Unit,
			"min_quantity": item.MinQuantity,
			"updated_at":   item.UpdatedAt.UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("inventory repository: update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InventoryRepository) DeleteStock(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&stockRecord{})
		if res.Error != nil {
			return fmt.Errorf("inventory repository: delete: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		if err := tx.Where("stock_item_id = ?", id).Delete(&ingredientRecord{}).Error; err != nil {
			return fmt.Errorf("inventory repository: delete ingredients: %w", err)
		}
		return nil
	})
}

func (r *InventoryRepository) Restock(ctx context.Context, id string, amount float64) (*domain.StockItem, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	var out *domain.StockItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&stockRecord{}).Where("id = ?", id).
			Updates(map[string]any{
				"quantity":   gorm.Expr("quantity + ?", amount),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("inventory repository: restock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		var rec stockRecord
		if err := tx.Where("id = ?", id).First(&rec).Error; err != nil {
			return fmt.Errorf("inventory repository: restock: %w", err)
		}
		out = rec.toDomain()
		return nil
	})
	return out, err
}

func (r *InventoryRepository) Ingredients(ctx context.Context, productID string) ([]domain.Ingredient, error) {
	var recs []ingredientRecord
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).
		Order("stock_item_id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("inventory repository: ingredients: %w", err)
	}
	out := make([]domain.Ingredient, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.Ingredient{
			ProductID:       rec.ProductID,
			StockItemID:     rec.StockItemID,
			QuantityPerUnit: rec.QuantityPerUnit,
		})
	}
	return out, nil
}

// SetIngredients replaces the product's mapping.
func (r *InventoryRepository) SetIngredients(ctx context.Context, productID string, ingredients []domain.Ingredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(ingredients) > 0 {
			ids := make([]string, 0, len(ingredients))
			for _, ing := range ingredients {
				ids = append(ids, ing.StockItemID)
			}
			var n int64
			if err := tx.Model(&stockRecord{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
				return fmt.Errorf("inventory repository: set ingredients: %w", err)
			}
			if int(n) != len(ids) {
				return domain.ErrNotFound
			}
		}
		if err := tx.Where("product_id = ?", productID).Delete(&ingredientRecord{}).Error; err != nil {
			return fmt.Errorf("inventory repository: set ingredients: %w", err)
		}
		if len(ingredients) == 0 {
			return nil
		}
		recs := make([]ingredientRecord, 0, len(ingredients))
		for _, ing := range ingredients {
			recs = append(recs, ingredientRecord{
				ProductID:       productID,
				StockItemID:     ing.StockItemID,
				QuantityPerUnit: ing.QuantityPerUnit,
			})
		}
		if err := tx.Create(&recs).Error; err != nil {
			return fmt.Errorf("inventory repository: set ingredients: %w", err)
		}
		return nil
	})
}

// ApplyDeduction flips orders.warehouse_deducted with a conditional update and decrements the
// warehouse in the same transaction, so concurrent callers deduct at most once.
func (r *InventoryRepository) ApplyDeduction(ctx context.Context, orderID string, lines []domain.Line) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&orderRecord{}).
			Where("id = ? AND warehouse_deducted = ?", orderID, false).
			Update("warehouse_deducted", true)
		if res.Error != nil {
			return fmt.Errorf("inventory repository: claim deduction: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&orderRecord{}).Where("id = ?", orderID).Count(&n).Error; err != nil {
				return fmt.Errorf("inventory repository: claim deduction: %w", err)
			}
			if n == 0 {
				return domorder.ErrNotFound
			}
			return nil
		}

		now := time.Now().UTC()
		for _, l := range lines {
			if err := tx.Model(&stockRecord{}).Where("id = ?", l.StockItemID).
				Updates(map[string]any{
					"quantity":   gorm.Expr("CASE WHEN quantity > ? THEN quantity - ? ELSE 0 END", l.Amount, l.Amount),
					"updated_at": now,
				}).Error; err != nil {
				return fmt.Errorf("inventory repository: deduct %s: %w", l.StockItemID, err)
			}
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func toStockRecord(item *domain.StockItem) stockRecord {
	return stockRecord{
		ID:          item.ID,
		Name:        item.Name,
		Quantity:    item.Quantity,
		Unit:        item.Unit,
		MinQuantity: item.MinQuantity,
		CreatedAt:   item.CreatedAt.UTC(),
		UpdatedAt:   item.UpdatedAt.UTC(),
	}
}

func (rec *stockRecord) toDomain() *domain.StockItem {
	return &domain.StockItem{
		ID:          rec.ID,
		Name:        rec.Name,
		Quantity:    rec.Quantity,
		Unit:        rec.Unit,
		MinQuantity: rec.MinQuantity,
		CreatedAt:   rec.CreatedAt.UTC(),
		UpdatedAt:   rec.UpdatedAt.UTC(),
	}
}
