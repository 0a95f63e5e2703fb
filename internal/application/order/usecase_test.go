package order

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderCash(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.create.Execute(ctx, cashInput())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, res.Status)
	assert.Equal(t, int64(50000), res.TotalPrice)
	assert.Empty(t, res.PaymentURL)

	stored, err := f.repo.Get(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "Burger", stored.ProductName)
	assert.Equal(t, "+998901234567", stored.PhoneNumber)
	assert.False(t, stored.WarehouseDeducted)

	events := f.publisher.Events()
	require.Len(t, events, 1)
	created, ok := events[0].(domain.OrderCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, res.OrderID, created.Order.ID)
	assert.Equal(t, []string{"10.0.0.1"}, f.limiter.keys)
}

func TestCreateOrderStoresCanonicalPhone(t *testing.T) {
	for _, phone := range []string{"+998901234567", "998901234567", "90 123 45 67"} {
		t.Run(phone, func(t *testing.T) {
			f := newFixture()
			in := cashInput()
			in.PhoneNumber = phone

			res, err := f.create.Execute(context.Background(), in)
			require.NoError(t, err)
			stored, err := f.repo.Get(context.Background(), res.OrderID)
			require.NoError(t, err)
			assert.Equal(t, "+998901234567", stored.PhoneNumber)
		})
	}
}

func TestCreateOrderClickRedirect(t *testing.T) {
	f := newFixture()
	in := cashInput()
	in.PaymentMethod = "click"

	res, err := f.create.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingPayment, res.Status)
	require.NotEmpty(t, res.PaymentURL)
	assert.Contains(t, res.PaymentURL, "transaction_param="+res.OrderID)
	assert.Contains(t, res.PaymentURL, "amount=50000")

	id, amount, err := payment.ParseLink(payment.MethodClick, res.PaymentURL)
	require.NoError(t, err)
	assert.Equal(t, res.OrderID, id)
	assert.Equal(t, float64(50000), amount)
}

func TestCreateOrderUnconfiguredMethodRejected(t *testing.T) {
	f := newFixture()
	// uzum is toggled on but carries no merchant id, so it is not offered
	in := cashInput()
	in.PaymentMethod = "uzum"
	_, err := f.create.Execute(context.Background(), in)
	assert.ErrorIs(t, err, ErrMethodUnavailable)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateOrderValidation(t *testing.T) {
	cases := map[string]func(*CreateOrderInput){
		"blank delivery address": func(in *CreateOrderInput) { in.Address = "   " },
		"short delivery address": func(in *CreateOrderInput) { in.Address = "ab" },
		"zero quantity":          func(in *CreateOrderInput) { in.Quantity = 0 },
		"bad phone":              func(in *CreateOrderInput) { in.PhoneNumber = "12345" },
		"missing name":           func(in *CreateOrderInput) { in.CustomerName = " " },
		"below minimum":          func(in *CreateOrderInput) { in.Quantity = 1 },
		"unknown method":         func(in *CreateOrderInput) { in.PaymentMethod = "bitcoin" },
		"unknown product":        func(in *CreateOrderInput) { in.ProductID = "nope" },
		"unavailable product":    func(in *CreateOrderInput) { in.ProductID = "p-off" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			in := cashInput()
			mutate(&in)

			_, err := f.create.Execute(context.Background(), in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
			assert.Empty(t, f.publisher.Events())
		})
	}
}

func TestCreateOrderTakeawayWhenDeliveryDisabled(t *testing.T) {
	f := newFixture()
	f.settings.DeliveryEnabled = false
	in := cashInput()
	in.Address = ""

	res, err := f.create.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeTakeaway, res.OrderType)

	stored, err := f.repo.Get(context.Background(), res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAddress, stored.Address)
}

func TestCreateOrderRateLimited(t *testing.T) {
	f := newFixture()
	f.limiter.allowed = false
	f.limiter.retryAfter = 42 * time.Second

	_, err := f.create.Execute(context.Background(), cashInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)

	var rl *RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 42*time.Second, rl.RetryAfter)
}

func TestCreateOrderLimiterDownStillAccepts(t *testing.T) {
	f := newFixture()
	f.limiter.allowed = false
	f.limiter.err = errors.New("redis: connection refused")

	res, err := f.create.Execute(context.Background(), cashInput())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, res.Status)
}
