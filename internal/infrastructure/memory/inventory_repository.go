package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/inventory"
)

type InventoryRepository struct {
	mu          sync.RWMutex
	items       map[string]*domain.StockItem
	ingredients map[string][]domain.Ingredient
	orders      *OrderRepository
}

// NewInventoryRepository shares the order store so deductions can claim the order flag.
func NewInventoryRepository(orders *OrderRepository) *InventoryRepository {
	return &InventoryRepository{
		items:       make(map[string]*domain.StockItem),
		ingredients: make(map[string][]domain.Ingredient),
		orders:      orders,
	}
}

func (r *InventoryRepository) CreateStock(ctx context.Context, item *domain.StockItem) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return domain.ErrConflict
	}
	for _, it := range r.items {
		if strings.EqualFold(it.Name, item.Name) {
			return domain.ErrConflict
		}
	}
	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *InventoryRepository) GetStock(ctx context.Context, id string) (*domain.StockItem, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneItem(item), nil
}

func (r *InventoryRepository) FindStockByName(ctx context.Context, name string) (*domain.StockItem, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, it := range r.items {
		if strings.EqualFold(it.Name, strings.TrimSpace(name)) {
			return cloneItem(it), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *InventoryRepository) ListStock(ctx context.Context) ([]*domain.StockItem, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.StockItem, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, cloneItem(it))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InventoryRepository) UpdateStock(ctx context.Context, item *domain.StockItem) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; !ok {
		return domain.ErrNotFound
	}
	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *InventoryRepository) DeleteStock(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	for pid, ings := range r.ingredients {
		kept := ings[:0]
		for _, ing := range ings {
			if ing.StockItemID != id {
				kept = append(kept, ing)
			}
		}
		r.ingredients[pid] = kept
	}
	return nil
}

func (r *InventoryRepository) Restock(ctx context.Context, id string, amount float64) (*domain.StockItem, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := item.Restock(amount, time.Now()); err != nil {
		return nil, err
	}
	return cloneItem(item), nil
}

func (r *InventoryRepository) Ingredients(ctx context.Context, productID string) ([]domain.Ingredient, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]domain.Ingredient(nil), r.ingredients[productID]...), nil
}

func (r *InventoryRepository) SetIngredients(ctx context.Context, productID string, ingredients []domain.Ingredient) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ing := range ingredients {
		if _, ok := r.items[ing.StockItemID]; !ok {
			return domain.ErrNotFound
		}
	}
	r.ingredients[productID] = append([]domain.Ingredient(nil), ingredients...)
	return nil
}

func (r *InventoryRepository) ApplyDeduction(ctx context.Context, orderID string, lines []domain.Line) (bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	claimed, err := r.orders.claimDeduction(orderID)
	if err != nil || !claimed {
		return false, err
	}
	now := time.Now()
	for _, l := range lines {
		if item, ok := r.items[l.StockItemID]; ok {
			item.Deduct(l.Amount, now)
		}
	}
	return true, nil
}

func cloneItem(item *domain.StockItem) *domain.StockItem {
	if item == nil {
		return nil
	}
	clone := *item
	return &clone
}
