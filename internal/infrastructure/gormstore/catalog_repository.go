package gormstore

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/catalog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	rec := toProductRecord(p)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return fmt.Errorf("catalog repository: create product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return r.firstProduct(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *CatalogRepository) FindProductByName(ctx context.Context, name string) (*domain.Product, error) {
	return r.firstProduct(r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name))
}

func (r *CatalogRepository) firstProduct(q *gorm.DB) (*domain.Product, error) {
	var rec productRecord
	err := q.First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog repository: get product: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *CatalogRepository) ListProducts(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, error) {
	q := r.db.WithContext(ctx).Model(&productRecord{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.AvailableOnly {
		q = q.Where("is_available = ?", true)
	}
	var recs []productRecord
	if err := q.Order("name ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("catalog repository: list products: %w", err)
	}
	out := make([]*domain.Product, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

func (r *CatalogRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	res := r.db.WithContext(ctx).Model(&productRecord{}).Where("id = ?", p.ID).
		Updates(map[string]any{
			"name":         p.Name,
			"price":        p.Price,
			"description":  p.Description,
			"image":        p.Image,
			"category":     p.Category,
			"is_available": p.IsAvailable,
			"updated_at":   p.UpdatedAt.UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("catalog repository: update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CatalogRepository) DeleteProduct(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&productRecord{})
		if res.Error != nil {
			return fmt.Errorf("catalog repository: delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Where("product_id = ?", id).Delete(&ingredientRecord{}).Error
	})
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	rec := categoryRecord{Slug: c.Slug, Name: c.Name, SortOrder: c.SortOrder}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return fmt.Errorf("catalog repository: create category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var recs []categoryRecord
	if err := r.db.WithContext(ctx).Order("sort_order ASC, slug ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("catalog repository: list categories: %w", err)
	}
	out := make([]*domain.Category, 0, len(recs))
	for _, rec := range recs {
		out = append(out, &domain.Category{Slug: rec.Slug, Name: rec.Name, SortOrder: rec.SortOrder})
	}
	return out, nil
}

func (r *CatalogRepository) DeleteCategory(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&categoryRecord{})
	if res.Error != nil {
		return fmt.Errorf("catalog repository: delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toProductRecord(p *domain.Product) productRecord {
	return productRecord{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		Category:    p.Category,
		IsAvailable: p.IsAvailable,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}

func (rec *productRecord) toDomain() *domain.Product {
	return &domain.Product{
		ID:          rec.ID,
		Name:        rec.Name,
		Price:       rec.Price,
		Description: rec.Description,
		Image:       rec.Image,
		Category:    rec.Category,
		IsAvailable: rec.IsAvailable,
		CreatedAt:   rec.CreatedAt.UTC(),
		UpdatedAt:   rec.UpdatedAt.UTC(),
	}
}
