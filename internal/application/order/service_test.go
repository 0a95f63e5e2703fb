package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceMyOrders(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	byPhone, err := f.create.Execute(ctx, cashInput())
	require.NoError(t, err)

	in := cashInput()
	in.PhoneNumber = "901112233"
	in.TelegramUserID = "5551234"
	byTelegram, err := f.create.Execute(ctx, in)
	require.NoError(t, err)

	svc := NewService(f.repo, nil)

	mine, err := svc.MyOrders(ctx, "", "+998 (90) 123 45 67")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, byPhone.OrderID, mine[0].ID)

	mine, err = svc.MyOrders(ctx, "5551234", "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, byTelegram.OrderID, mine[0].ID)

	_, err = svc.MyOrders(ctx, " ", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestServiceListAndReceipt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.create.Execute(ctx, cashInput())
	require.NoError(t, err)
	in := cashInput()
	in.PaymentMethod = "payme"
	_, err = f.create.Execute(ctx, in)
	require.NoError(t, err)

	svc := NewService(f.repo, nil)

	all, err := svc.List(ctx, ListInput{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.List(ctx, ListInput{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, res.OrderID, pending[0].ID)

	_, err = svc.List(ctx, ListInput{Status: "lost"})
	assert.ErrorIs(t, err, ErrValidation)

	receipt, err := svc.Receipt(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Contains(t, receipt, "Burger")
	assert.Contains(t, receipt, "2 x 25 000 so'm")
	assert.Contains(t, receipt, "JAMI: 50 000 so'm")

	_, err = svc.Receipt(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
