package order

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() Draft {
	return Draft{
		ProductName:   "Latte",
		Quantity:      2,
		TotalPrice:    50000,
		CustomerName:  "Aziz",
		PhoneNumber:   "+998901234567",
		Address:       "Chilonzor 5",
		OrderType:     TypeDelivery,
		PaymentMethod: payment.MethodCash,
	}
}

func TestNewInitialStatus(t *testing.T) {
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	cash, err := New("o-1", validDraft(), now)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, cash.Status)
	assert.Equal(t, int64(25000), cash.UnitPrice())

	d := validDraft()
	d.PaymentMethod = payment.MethodClick
	online, err := New("o-2", d, now)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingPayment, online.Status)
}

func TestNewDeliveryAddress(t *testing.T) {
	for _, addr := range []string{"", "   ", "ab", " a "} {
		d := validDraft()
		d.Address = addr
		_, err := New("o", d, time.Now())
		assert.True(t, errors.Is(err, ErrAddressRequired), "address %q", addr)
	}

	d := validDraft()
	d.OrderType = TypeTakeaway
	d.Address = ""
	o, err := New("o", d, time.Now())
	require.NoError(t, err)
	assert.Equal(t, DefaultAddress, o.Address)
}

func TestNewRejectsQuantity(t *testing.T) {
	d := validDraft()
	d.Quantity = 0
	_, err := New("o", d, time.Now())
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		typ      Type
		actor    Actor
		ok       bool
	}{
		{StatusPendingPayment, StatusPending, TypeDelivery, ActorSystem, true},
		{StatusPendingPayment, StatusCancelled, TypeTakeaway, ActorSystem, true},
		{StatusPendingPayment, StatusReady, TypeDelivery, ActorAdmin, false},
		{StatusPending, StatusReady, TypeDelivery, ActorAdmin, true},
		{StatusPending, StatusReady, TypeDelivery, ActorDelivery, false},
		{StatusReady, StatusOnWay, TypeDelivery, ActorDelivery, true},
		{StatusReady, StatusOnWay, TypeTakeaway, ActorAdmin, false},
		{StatusReady, StatusDelivered, TypeTakeaway, ActorAdmin, true},
		{StatusReady, StatusDelivered, TypeDelivery, ActorAdmin, false},
		{StatusOnWay, StatusDelivered, TypeDelivery, ActorDelivery, true},
		{StatusDelivered, StatusReady, TypeDelivery, ActorAdmin, false},
		{StatusDelivered, StatusPending, TypeDelivery, ActorAdmin, true},
		{StatusCancelled, StatusPending, TypeDelivery, ActorDelivery, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to, c.typ, c.actor), "%s -> %s (%s, %s)", c.from, c.to, c.typ, c.actor)
	}
}

func TestTransitionSetsCourier(t *testing.T) {
	o, err := New("o", validDraft(), time.Now())
	require.NoError(t, err)
	o.Status = StatusReady

	require.NoError(t, o.Transition(StatusOnWay, ActorDelivery, "Bobur", time.Now()))
	assert.Equal(t, StatusOnWay, o.Status)
	assert.Equal(t, "Bobur", o.DeliveryPerson)

	err = o.Transition(StatusReady, ActorAdmin, "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestExpiredAt(t *testing.T) {
	now := time.Now()
	o := &Order{Status: StatusPendingPayment, CreatedAt: now.Add(-31 * time.Minute)}
	assert.True(t, o.ExpiredAt(now, 30*time.Minute))

	o.CreatedAt = now.Add(-29 * time.Minute)
	assert.False(t, o.ExpiredAt(now, 30*time.Minute))

	o.CreatedAt = now.Add(-time.Hour)
	o.Status = StatusPending
	assert.False(t, o.ExpiredAt(now, 30*time.Minute))
}

func TestDisplayID(t *testing.T) {
	assert.Equal(t, "AA000042", DisplayID("42"))
	assert.Equal(t, "AA1234567", DisplayID("1234567"))
	assert.Equal(t, "AAF47AC1", DisplayID("f47ac10b-58cc-4372-a567-0e02b2c3d479"))
}

func TestReceipt(t *testing.T) {
	o, err := New("f47ac10b-58cc-4372", validDraft(), time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	r := o.Receipt(time.UTC)
	assert.Contains(t, r, "AJABO BURGER")
	assert.Contains(t, r, "#f47ac10b")
	assert.Contains(t, r, "2 x 25 000 so'm")
	assert.Contains(t, r, "JAMI: 50 000 so'm")
	assert.Contains(t, r, "Naqd pul")
	assert.Contains(t, r, "Yetkazib berish")
	assert.True(t, strings.HasSuffix(r, receiptRule))
}
