package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/kursant77/ajabo-f69de2d8/internal/application/validation"
	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/catalog"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seq struct{ n int }

func (s *seq) NewID() string { s.n++; return fmt.Sprintf("p%d", s.n) }

type fakeImages struct{ stored map[string]string }

func (f *fakeImages) Put(_ context.Context, name string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.stored[name] = string(b)
	return "https://cdn.example/" + name, nil
}

func TestProductLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewCatalogRepository(), nil, &seq{})

	p, err := svc.CreateProduct(ctx, ProductInput{Name: " Lavash ", Price: 28000, Category: "fast-food", IsAvailable: true})
	require.NoError(t, err)
	assert.Equal(t, "Lavash", p.Name)

	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Free", Price: 0})
	assert.ErrorIs(t, err, validation.ErrValidation)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Bad", Price: 1, Image: "not a url"})
	assert.ErrorIs(t, err, validation.ErrValidation)

	p, err = svc.UpdateProduct(ctx, p.ID, ProductInput{Name: "Lavash XL", Price: 32000, Category: "fast-food", IsAvailable: true})
	require.NoError(t, err)
	assert.Equal(t, int64(32000), p.Price)

	_, err = svc.SetAvailability(ctx, p.ID, false)
	require.NoError(t, err)
	menu, err := svc.ListProducts(ctx, domain.ProductFilter{AvailableOnly: true})
	require.NoError(t, err)
	assert.Empty(t, menu)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewCatalogRepository(), nil, &seq{})

	c, err := svc.CreateCategory(ctx, CategoryInput{Name: "Issiq Ichimliklar", SortOrder: 2})
	require.NoError(t, err)
	assert.Equal(t, "issiq-ichimliklar", c.Slug)

	_, err = svc.CreateCategory(ctx, CategoryInput{Slug: "burgers", Name: "Burgerlar", SortOrder: 1})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, CategoryInput{Slug: "burgers", Name: "Again"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	all, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "burgers", all[0].Slug)

	require.NoError(t, svc.DeleteCategory(ctx, "burgers"))
}

func TestUploadImageUpdatesProduct(t *testing.T) {
	ctx := context.Background()
	images := &fakeImages{stored: map[string]string{}}
	svc := NewService(memory.NewCatalogRepository(), images, &seq{})
	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Cola", Price: 8000, IsAvailable: true})
	require.NoError(t, err)

	url, err := svc.UploadImage(ctx, p.ID, "cola.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/cola.png", url)
	assert.Equal(t, "png-bytes", images.stored["cola.png"])

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, url, got.Image)

	_, err = svc.UploadImage(ctx, "missing", "x.png", strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hot-drinks", Slugify("  Hot  Drinks! "))
	assert.Equal(t, "", Slugify("!!!"))
}
