package inventory

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	apporder "github.com/kursant77/ajabo-f69de2d8/internal/application/order"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/catalog"
	dominv "github.com/kursant77/ajabo-f69de2d8/internal/domain/inventory"
	domorder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	domoutbox "github.com/kursant77/ajabo-f69de2d8/internal/domain/outbox"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/settings"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/memory"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSettings struct{ s *settings.Settings }

func (f fixedSettings) Current(context.Context) (*settings.Settings, error) { return f.s, nil }

type openLimiter struct{}

func (openLimiter) Allow(context.Context, string) (bool, time.Duration, error) { return true, 0, nil }

type fixedID string

func (id fixedID) NewID() string { return string(id) }

func TestCashOrderDeductsStockOnceThroughBus(t *testing.T) {
	ctx := context.Background()
	orders := memory.NewOrderRepository()
	stock := memory.NewInventoryRepository(orders)
	products := memory.NewCatalogRepository()

	require.NoError(t, products.CreateProduct(ctx, &catalog.Product{ID: "p-burger", Name: "Burger", Price: 25000, IsAvailable: true}))
	for _, s := range []struct {
		id   string
		name string
		qty  float64
	}{{"bun", "Bulochka", 10}, {"patty", "Kotlet", 10}} {
		item, err := dominv.NewStockItem(s.id, s.name, s.qty, "", 0, time.Now())
		require.NoError(t, err)
		require.NoError(t, stock.CreateStock(ctx, item))
	}
	require.NoError(t, stock.SetIngredients(ctx, "p-burger", []dominv.Ingredient{
		{ProductID: "p-burger", StockItemID: "bun", QuantityPerUnit: 1},
		{ProductID: "p-burger", StockItemID: "patty", QuantityPerUnit: 2},
	}))

	bus := outbox.NewBus(nil)
	rep := &recordingReporter{}
	NewWorker(bus, NewDeductStockUseCase(stock, products, bus, nil), rep, nil).Start()

	var deducted atomic.Int32
	first := make(chan struct{}, 1)
	bus.Subscribe(dominv.StockDeductedEvent{}.EventName(), func(context.Context, domoutbox.Event) error {
		deducted.Add(1)
		select {
		case first <- struct{}{}:
		default:
		}
		return nil
	})

	create := apporder.NewCreateOrderUseCase(apporder.CreateOrderDeps{
		Repo:        orders,
		Products:    products,
		Settings:    fixedSettings{s: settings.Default()},
		Resolver:    payment.NewResolver(payment.Merchants{}),
		Links:       payment.NewGenerator(payment.Merchants{}, "https://cafe.example"),
		Limiter:     openLimiter{},
		IDGenerator: fixedID("o-1"),
		Publisher:   bus,
	}, nil)

	bus.Start(ctx)
	res, err := create.Execute(ctx, apporder.CreateOrderInput{
		ProductID:     "p-burger",
		Quantity:      2,
		CustomerName:  "Dilnoza",
		PhoneNumber:   "901234567",
		OrderType:     "takeaway",
		PaymentMethod: "cash",
		ClientID:      "10.0.0.1",
	})
	require.NoError(t, err)
	require.Equal(t, domorder.StatusPending, res.Status)

	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatal("stock was never deducted")
	}

	// replay the creation event as it was first published
	stored, err := orders.Get(ctx, res.OrderID)
	require.NoError(t, err)
	assert.True(t, stored.WarehouseDeducted)
	replay := *stored
	replay.WarehouseDeducted = false
	require.NoError(t, bus.Publish(ctx, domorder.NewOrderCreatedEvent(&replay)))

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	bus.Stop(stopCtx)

	bun, err := stock.GetStock(ctx, "bun")
	require.NoError(t, err)
	patty, err := stock.GetStock(ctx, "patty")
	require.NoError(t, err)
	assert.Equal(t, 8.0, bun.Quantity)
	assert.Equal(t, 6.0, patty.Quantity)
	assert.Equal(t, int32(1), deducted.Load())
	assert.Empty(t, rep.errs)
}
