package settings

import (
	"context"
	"testing"

	"github.com/kursant77/ajabo-f69de2d8/internal/application/validation"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/settings"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseInput() UpdateInput {
	return UpdateInput{
		CafeName:        "Ajabo",
		OpenTime:        "09:00",
		CloseTime:       "23:30",
		DeliveryEnabled: true,
		MinOrderAmount:  20000,
		DeliveryFee:     5000,
	}
}

func TestCurrentFallsBackToDefaults(t *testing.T) {
	svc := NewService(memory.NewSettingsRepository(), payment.NewResolver(payment.Merchants{}))
	cur, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Default().CafeName, cur.CafeName)
	assert.Equal(t, int64(30000), cur.MinOrderAmount)
}

func TestUpdateValidatesAndPersists(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewSettingsRepository(), payment.NewResolver(payment.Merchants{PaymeMerchantID: "pm"}))

	in := baseInput()
	in.Payments = map[string]bool{"click": false}
	saved, err := svc.Update(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "09:00", saved.OpenTime)
	assert.False(t, saved.Payments[payment.MethodClick])
	assert.True(t, saved.Payments[payment.MethodCash])

	view, err := svc.Public(ctx)
	require.NoError(t, err)
	assert.Equal(t, []payment.Option{
		{Method: payment.MethodCash, Label: payment.MethodCash.Label(), Online: false},
		{Method: payment.MethodPayme, Label: payment.MethodPayme.Label(), Online: true},
	}, view.PaymentMethods)

	bad := baseInput()
	bad.OpenTime = "9am"
	_, err = svc.Update(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidHours)

	off := baseInput()
	off.Payments = map[string]bool{"cash": false, "payme": false}
	_, err = svc.Update(ctx, off)
	assert.ErrorIs(t, err, domain.ErrNoPaymentMethods)
	assert.ErrorIs(t, err, validation.ErrValidation)

	unknown := baseInput()
	unknown.Payments = map[string]bool{"bitcoin": true}
	_, err = svc.Update(ctx, unknown)
	assert.ErrorIs(t, err, payment.ErrUnknownMethod)
}

func TestPublicAppliesMinimumFallback(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewSettingsRepository(), payment.NewResolver(payment.Merchants{}))
	in := baseInput()
	in.MinOrderAmount = 0
	_, err := svc.Update(ctx, in)
	require.NoError(t, err)

	view, err := svc.Public(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.FallbackMinOrderAmount, view.MinOrderAmount)
}
