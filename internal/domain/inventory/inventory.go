package inventory

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("inventory: stock item not found")
	ErrConflict        = errors.New("inventory: stock item already exists")
	ErrInvalidQuantity = errors.New("inventory: quantity must not be negative")
	ErrInvalidAmount   = errors.New("inventory: restock amount must be greater than zero")
	ErrNameRequired    = errors.New("inventory: name is required")
)

// DefaultUnit applies to stock items created without a unit.
const DefaultUnit = "dona"

// StockItem is a raw ingredient tracked in the warehouse.
type StockItem struct {
	ID          string
	Name        string
	Quantity    float64
	Unit        string
	MinQuantity float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewStockItem(id, name string, quantity float64, unit string, minQuantity float64, now time.Time) (*StockItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if quantity < 0 || minQuantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if strings.TrimSpace(unit) == "" {
		unit = DefaultUnit
	}
	now = now.UTC()
	return &StockItem{
		ID:          id,
		Name:        name,
		Quantity:    quantity,
		Unit:        unit,
		MinQuantity: minQuantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Deduct lowers the quantity, never below zero.
func (i *StockItem) Deduct(amount float64, now time.Time) {
	i.Quantity = Clamp(i.Quantity - amount)
	i.touch(now)
}

func (i *StockItem) Restock(amount float64, now time.Time) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	i.Quantity += amount
	i.touch(now)
	return nil
}

// Low reports whether the item reached its reorder threshold.
func (i *StockItem) Low() bool {
	return i.Quantity <= i.MinQuantity
}

func (i *StockItem) touch(now time.Time) {
	i.UpdatedAt = now.UTC()
}

// Clamp keeps stock quantities non-negative.
func Clamp(q float64) float64 {
	if q < 0 {
		return 0
	}
	return q
}

// Ingredient links a catalog product to the stock it consumes per unit sold.
type Ingredient struct {
	ProductID       string
	StockItemID     string
	QuantityPerUnit float64
}

// Line is one stock decrement of a deduction.
type Line struct {
	StockItemID string
	Amount      float64
}
