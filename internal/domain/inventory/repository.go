package inventory

import "context"

type Repository interface {
	CreateStock(ctx context.Context, item *StockItem) error
	GetStock(ctx context.Context, id string) (*StockItem, error)
	// FindStockByName matches names case-insensitively.
	FindStockByName(ctx context.Context, name string) (*StockItem, error)
	ListStock(ctx context.Context) ([]*StockItem, error)
	UpdateStock(ctx context.Context, item *StockItem) error
	DeleteStock(ctx context.Context, id string) error
	// Restock adds amount to the stored quantity atomically.
	Restock(ctx context.Context, id string, amount float64) (*StockItem, error)

	Ingredients(ctx context.Context, productID string) ([]Ingredient, error)
	SetIngredients(ctx context.Context, productID string, ingredients []Ingredient) error

	// ApplyDeduction claims the order's deduction flag and applies the lines, clamped at zero,
	// as one unit. It returns false without touching stock when the order was already deducted.
	ApplyDeduction(ctx context.Context, orderID string, lines []Line) (bool, error)
}
