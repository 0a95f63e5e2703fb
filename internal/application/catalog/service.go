// Package catalog manages the menu: products, categories and product images.
package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/application/validation"
	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/catalog"
)

type IDGenerator interface {
	NewID() string
}

// ImageStore keeps uploaded product images and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, filename string, r io.Reader) (string, error)
}

type Service struct {
	repo   domain.Repository
	images ImageStore
	ids    IDGenerator
	clock  func() time.Time
}

func NewService(repo domain.Repository, images ImageStore, ids IDGenerator) *Service {
	return &Service{repo: repo, images: images, ids: ids, clock: time.Now}
}

type ProductInput struct {
	Name        string `validate:"notblank"`
	Price       int64  `validate:"gt=0"`
	Description string
	Image       string `validate:"omitempty,url"`
	Category    string
	IsAvailable bool
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	p, err := domain.NewProduct(s.ids.NewID(), in.Name, in.Price, in.Description, in.Image, in.Category, in.IsAvailable, s.clock())
	if err != nil {
		return nil, validation.Wrap(err)
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("catalog: create product: %w", err)
	}
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(in.Name, in.Price, in.Category); err != nil {
		return nil, validation.Wrap(err)
	}
	p.Description = in.Description
	p.Image = in.Image
	p.IsAvailable = in.IsAvailable
	p.UpdatedAt = s.clock().UTC()
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("catalog: update product: %w", err)
	}
	return p, nil
}

// SetAvailability toggles a product on or off the menu.
func (s *Service) SetAvailability(ctx context.Context, id string, available bool) (*domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p.IsAvailable = available
	p.UpdatedAt = s.clock().UTC()
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("catalog: update product: %w", err)
	}
	return p, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, error) {
	return s.repo.ListProducts(ctx, f)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

type CategoryInput struct {
	Slug      string
	Name      string `validate:"notblank"`
	SortOrder int    `validate:"gte=0"`
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(in.Name)
	}
	if slug == "" {
		return nil, validation.Wrap(fmt.Errorf("catalog: slug is required"))
	}
	c := &domain.Category{Slug: slug, Name: strings.TrimSpace(in.Name), SortOrder: in.SortOrder}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("catalog: create category: %w", err)
	}
	return c, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) DeleteCategory(ctx context.Context, slug string) error {
	return s.repo.DeleteCategory(ctx, slug)
}

// UploadImage stores an image and, when productID is set, points the product at it.
func (s *Service) UploadImage(ctx context.Context, productID, filename string, r io.Reader) (string, error) {
	if s.images == nil {
		return "", fmt.Errorf("catalog: image storage is not configured")
	}
	var p *domain.Product
	if productID != "" {
		var err error
		if p, err = s.repo.GetProduct(ctx, productID); err != nil {
			return "", err
		}
	}
	url, err := s.images.Put(ctx, filename, r)
	if err != nil {
		return "", fmt.Errorf("catalog: store image: %w", err)
	}
	if p != nil {
		p.Image = url
		p.UpdatedAt = s.clock().UTC()
		if err := s.repo.UpdateProduct(ctx, p); err != nil {
			return "", fmt.Errorf("catalog: update product: %w", err)
		}
	}
	return url, nil
}

// Slugify lower-cases s and joins its words with dashes, keeping letters and digits only.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
