package amqprelay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	dominv "github.com/kursant77/ajabo-f69de2d8/internal/domain/inventory"
	domorder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	domoutbox "github.com/kursant77/ajabo-f69de2d8/internal/domain/outbox"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	declared []string
	out      []published
	failWith error
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.out = append(f.out, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error { return nil }

type fakeSubscriber map[string]domoutbox.Handler

func (s fakeSubscriber) Subscribe(name string, h domoutbox.Handler) { s[name] = h }

func TestRelayPublishesOrderEvents(t *testing.T) {
	ch := &fakeChannel{}
	r, err := New(ch, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultExchange + ":topic"}, ch.declared)

	sub := fakeSubscriber{}
	r.Start(sub)
	require.Len(t, sub, 3)

	o := domorder.Order{ID: "o-1", ProductName: "Latte", Quantity: 1, TotalPrice: 25000, Status: domorder.StatusReady}
	ev := domorder.OrderStatusChangedEvent{Order: o, From: domorder.StatusPending, Actor: domorder.ActorAdmin, OccurredAt: time.Now()}
	require.NoError(t, sub[ev.EventName()](context.Background(), ev))

	require.Len(t, ch.out, 1)
	assert.Equal(t, "order.status_changed", ch.out[0].key)
	assert.Equal(t, "application/json", ch.out[0].msg.ContentType)
	assert.Equal(t, "o-1", ch.out[0].msg.CorrelationId)

	var body map[string]any
	require.NoError(t, json.Unmarshal(ch.out[0].msg.Body, &body))
	assert.Equal(t, "pending", body["from"])
	assert.Equal(t, "ready", body["order"].(map[string]any)["status"])
}

func TestRelayDeductionAndFailure(t *testing.T) {
	ch := &fakeChannel{}
	r, err := New(ch, "cafe", nil)
	require.NoError(t, err)

	ev := dominv.NewStockDeductedEvent("o-1", []dominv.Line{{StockItemID: "s-1", Amount: 0.5}}, true)
	require.NoError(t, r.forward(context.Background(), ev))
	assert.Equal(t, "cafe", ch.out[0].exchange)

	ch.failWith = errors.New("channel closed")
	assert.Error(t, r.forward(context.Background(), ev))
}
