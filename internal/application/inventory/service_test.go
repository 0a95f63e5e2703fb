package inventory

import (
	"context"
	"fmt"
	"testing"

	dominv "github.com/kursant77/ajabo-f69de2d8/internal/domain/inventory"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterIDs struct{ n int }

func (c *counterIDs) NewID() string {
	c.n++
	return fmt.Sprintf("stock-%d", c.n)
}

func TestWarehouseService(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewInventoryRepository(memory.NewOrderRepository())
	svc := NewWarehouseService(repo, &counterIDs{})

	milk, err := svc.AddStock(ctx, StockInput{Name: "Sut", Quantity: 2, Unit: "litr", MinQuantity: 5})
	require.NoError(t, err)
	cups, err := svc.AddStock(ctx, StockInput{Name: "Stakan", Quantity: 100})
	require.NoError(t, err)
	assert.Equal(t, dominv.DefaultUnit, cups.Unit)

	_, err = svc.AddStock(ctx, StockInput{Name: " ", Quantity: 1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddStock(ctx, StockInput{Name: "Shakar", Quantity: -1})
	assert.ErrorIs(t, err, ErrValidation)

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, milk.ID, low[0].ID)

	restocked, err := svc.Restock(ctx, milk.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 12.0, restocked.Quantity)
	_, err = svc.Restock(ctx, milk.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)

	low, err = svc.LowStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, low)

	all, err := svc.ListStock(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Stakan", all[0].Name)

	updated, err := svc.UpdateStock(ctx, cups.ID, StockInput{Name: "Qog'oz stakan", Quantity: 80, MinQuantity: 20})
	require.NoError(t, err)
	assert.Equal(t, dominv.DefaultUnit, updated.Unit)
	assert.Equal(t, 80.0, updated.Quantity)

	ings, err := svc.SetIngredients(ctx, "latte", []IngredientInput{
		{StockItemID: milk.ID, QuantityPerUnit: 0.2},
		{StockItemID: cups.ID, QuantityPerUnit: 1},
	})
	require.NoError(t, err)
	assert.Len(t, ings, 2)

	_, err = svc.SetIngredients(ctx, "latte", []IngredientInput{{StockItemID: "nope", QuantityPerUnit: 1}})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.SetIngredients(ctx, "latte", []IngredientInput{{StockItemID: milk.ID, QuantityPerUnit: 0}})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := svc.Ingredients(ctx, "latte")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, svc.DeleteStock(ctx, cups.ID))
	got, err = svc.Ingredients(ctx, "latte")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.ErrorIs(t, svc.DeleteStock(ctx, cups.ID), dominv.ErrNotFound)
}
