package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/application/validation"
	dominv "github.com/kursant77/ajabo-f69de2d8/internal/domain/inventory"
)

var ErrValidation = validation.ErrValidation

type IDGenerator interface {
	NewID() string
}

// WarehouseService is the staff-facing stock management API.
type WarehouseService struct {
	repo  dominv.Repository
	ids   IDGenerator
	clock func() time.Time
}

func NewWarehouseService(repo dominv.Repository, ids IDGenerator) *WarehouseService {
	return &WarehouseService{repo: repo, ids: ids, clock: time.Now}
}

type StockInput struct {
	Name        string  `validate:"notblank"`
	Quantity    float64 `validate:"gte=0"`
	Unit        string
	MinQuantity float64 `validate:"gte=0"`
}

func (s *WarehouseService) AddStock(ctx context.Context, in StockInput) (*dominv.StockItem, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	item, err := dominv.NewStockItem(s.ids.NewID(), in.Name, in.Quantity, in.Unit, in.MinQuantity, s.clock())
	if err != nil {
		return nil, validation.Wrap(err)
	}
	if err := s.repo.CreateStock(ctx, item); err != nil {
		return nil, fmt.Errorf("inventory: create stock: %w", err)
	}
	return item, nil
}

func (s *WarehouseService) UpdateStock(ctx context.Context, id string, in StockInput) (*dominv.StockItem, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	item, err := s.repo.GetStock(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Name = strings.TrimSpace(in.Name)
	item.Quantity = in.Quantity
	item.MinQuantity = in.MinQuantity
	if u := strings.TrimSpace(in.Unit); u != "" {
		item.Unit = u
	}
	item.UpdatedAt = s.clock().UTC()
	if err := s.repo.UpdateStock(ctx, item); err != nil {
		return nil, fmt.Errorf("inventory: update stock: %w", err)
	}
	return item, nil
}

// Restock adds a delivery to the current quantity.
func (s *WarehouseService) Restock(ctx context.Context, id string, amount float64) (*dominv.StockItem, error) {
	if amount <= 0 {
		return nil, validation.Wrap(dominv.ErrInvalidAmount)
	}
	item, err := s.repo.Restock(ctx, id, amount)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *WarehouseService) DeleteStock(ctx context.Context, id string) error {
	return s.repo.DeleteStock(ctx, id)
}

// ListStock returns every stock item ordered by name.
func (s *WarehouseService) ListStock(ctx context.Context) ([]*dominv.StockItem, error) {
	return s.repo.ListStock(ctx)
}

// LowStock returns the items at or below their reorder threshold.
func (s *WarehouseService) LowStock(ctx context.Context) ([]*dominv.StockItem, error) {
	all, err := s.repo.ListStock(ctx)
	if err != nil {
		return nil, err
	}
	low := make([]*dominv.StockItem, 0, len(all))
	for _, it := range all {
		if it.Low() {
			low = append(low, it)
		}
	}
	return low, nil
}

type IngredientInput struct {
	StockItemID     string  `validate:"required"`
	QuantityPerUnit float64 `validate:"gt=0"`
}

// SetIngredients replaces the stock consumed per unit of a product.
func (s *WarehouseService) SetIngredients(ctx context.Context, productID string, in []IngredientInput) ([]dominv.Ingredient, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, validation.Wrap(errors.New("inventory: product id is required"))
	}
	out := make([]dominv.Ingredient, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, ing := range in {
		if err := validation.Struct(ing); err != nil {
			return nil, err
		}
		if seen[ing.StockItemID] {
			return nil, validation.Wrap(fmt.Errorf("inventory: stock item %s listed twice", ing.StockItemID))
		}
		seen[ing.StockItemID] = true
		if _, err := s.repo.GetStock(ctx, ing.StockItemID); err != nil {
			if errors.Is(err, dominv.ErrNotFound) {
				return nil, validation.Wrap(fmt.Errorf("%w: %s", err, ing.StockItemID))
			}
			return nil, err
		}
		out = append(out, dominv.Ingredient{
			ProductID:       productID,
			StockItemID:     ing.StockItemID,
			QuantityPerUnit: ing.QuantityPerUnit,
		})
	}
	if err := s.repo.SetIngredients(ctx, productID, out); err != nil {
		return nil, fmt.Errorf("inventory: set ingredients: %w", err)
	}
	return out, nil
}

func (s *WarehouseService) Ingredients(ctx context.Context, productID string) ([]dominv.Ingredient, error) {
	return s.repo.Ingredients(ctx, productID)
}
