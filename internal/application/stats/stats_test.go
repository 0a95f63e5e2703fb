package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	domorder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func put(t *testing.T, repo *memory.OrderRepository, id, product string, qty int, total int64, m payment.Method, at time.Time, status domorder.Status) {
	t.Helper()
	o, err := domorder.New(id, domorder.Draft{
		ProductName:   product,
		Quantity:      qty,
		TotalPrice:    total,
		CustomerName:  "Test",
		PhoneNumber:   "901234567",
		OrderType:     domorder.TypeTakeaway,
		PaymentMethod: m,
	}, at)
	require.NoError(t, err)
	o.Status = status
	require.NoError(t, repo.Insert(context.Background(), o))
}

func TestDashboard(t *testing.T) {
	loc := time.FixedZone("UZT", 5*3600)
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, loc)
	repo := memory.NewOrderRepository()

	put(t, repo, "a", "Burger", 2, 50000, payment.MethodCash, now.Add(-time.Hour), domorder.StatusPending)
	put(t, repo, "b", "Cola", 3, 24000, payment.MethodCash, now.Add(-2*time.Hour), domorder.StatusDelivered)
	// 23:30 local on the previous day
	put(t, repo, "c", "Burger", 1, 25000, payment.MethodCash, time.Date(2026, 5, 9, 23, 30, 0, 0, loc), domorder.StatusDelivered)
	put(t, repo, "d", "Lavash", 5, 140000, payment.MethodClick, now.Add(-time.Hour), domorder.StatusPendingPayment)
	put(t, repo, "e", "Lavash", 5, 140000, payment.MethodCash, now.Add(-time.Hour), domorder.StatusCancelled)
	put(t, repo, "f", "Somsa", 1, 7000, payment.MethodCash, now.AddDate(0, 0, -10), domorder.StatusDelivered)

	d, err := NewService(repo, loc).Dashboard(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 2, d.TodayOrders)
	assert.Equal(t, int64(74000), d.TodayRevenue)
	assert.Equal(t, 1, d.DeliveredToday)
	assert.Equal(t, 1, d.PendingToday)

	require.Len(t, d.Weekly, 7)
	assert.Equal(t, "2026-05-04", d.Weekly[0].Date)
	assert.Equal(t, "2026-05-10", d.Weekly[6].Date)
	assert.Equal(t, int64(74000), d.Weekly[6].Revenue)
	assert.Equal(t, int64(25000), d.Weekly[5].Revenue)

	require.Len(t, d.TopProducts, 3)
	assert.Equal(t, ProductSales{Name: "Burger", Sold: 3, Revenue: 75000}, d.TopProducts[0])
	assert.Equal(t, "Cola", d.TopProducts[1].Name)
	assert.Equal(t, "Somsa", d.TopProducts[2].Name)
}

func TestDashboardKeepsTopFive(t *testing.T) {
	repo := memory.NewOrderRepository()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 7; i++ {
		put(t, repo, fmt.Sprintf("o%d", i), fmt.Sprintf("P%d", i), i, int64(i)*1000, payment.MethodCash, now, domorder.StatusPending)
	}
	d, err := NewService(repo, nil).Dashboard(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, d.TopProducts, 5)
	assert.Equal(t, "P7", d.TopProducts[0].Name)
	assert.Equal(t, "P3", d.TopProducts[4].Name)
}
