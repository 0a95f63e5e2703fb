package catalog

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("catalog: not found")
	ErrConflict     = errors.New("catalog: already exists")
	ErrInvalidPrice = errors.New("catalog: price must be greater than zero")
	ErrNameRequired = errors.New("catalog: name is required")
	ErrUnavailable  = errors.New("catalog: product is not available")
)

type Product struct {
	ID          string
	Name        string
	Price       int64
	Description string
	Image       string
	Category    string
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewProduct(id, name string, price int64, description, image, category string, available bool, now time.Time) (*Product, error) {
	p := &Product{
		ID:          id,
		Description: description,
		Image:       image,
		IsAvailable: available,
		CreatedAt:   now.UTC(),
	}
	if err := p.Apply(name, price, category); err != nil {
		return nil, err
	}
	p.UpdatedAt = p.CreatedAt
	return p, nil
}

// Apply sets the validated core fields.
func (p *Product) Apply(name string, price int64, category string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if price <= 0 {
		return ErrInvalidPrice
	}
	p.Name = name
	p.Price = price
	p.Category = strings.TrimSpace(category)
	return nil
}

type Category struct {
	Slug      string
	Name      string
	SortOrder int
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Category      string
	AvailableOnly bool
}

type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id string) (*Product, error)
	// FindProductByName matches names case-insensitively.
	FindProductByName(ctx context.Context, name string) (*Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context) ([]*Category, error)
	DeleteCategory(ctx context.Context, slug string) error
}
