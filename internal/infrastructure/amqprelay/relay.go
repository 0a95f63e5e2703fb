// Package amqprelay forwards in-process order events to a RabbitMQ topic exchange.
package amqprelay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	dominv "github.com/kursant77/ajabo-f69de2d8/internal/domain/inventory"
	domorder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	domoutbox "github.com/kursant77/ajabo-f69de2d8/internal/domain/outbox"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability/logctx"
	"github.com/streadway/amqp"
)

const (
	DefaultExchange = "ajabo.orders"
	peer            = "amqp"
)

// Channel is the part of *amqp.Channel the relay needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Relay struct {
	mu       sync.Mutex
	ch       Channel
	conn     *amqp.Connection
	exchange string

	log          observability.Logger
	extCounter   observability.Counter
	extHistogram observability.Histogram
}

// Dial connects to the broker and declares the exchange.
func Dial(url, exchange string, tel observability.Observability) (*Relay, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp: channel: %w", err)
	}
	r, err := New(ch, exchange, tel)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	r.conn = conn
	return r, nil
}

func New(ch Channel, exchange string, tel observability.Observability) (*Relay, error) {
	if tel == nil {
		tel = observability.Nop()
	}
	if exchange == "" {
		exchange = DefaultExchange
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("amqp: declare %s: %w", exchange, err)
	}
	m := tel.Metrics()
	return &Relay{
		ch:           ch,
		exchange:     exchange,
		log:          tel.Logger().With(observability.F("component", "amqp_relay")),
		extCounter:   m.Counter(observability.MExternalRequests),
		extHistogram: m.Histogram(observability.MExternalRequestDuration),
	}, nil
}

// Start subscribes to every event the relay forwards.
func (r *Relay) Start(sub domoutbox.Subscriber) {
	sub.Subscribe(domorder.OrderCreatedEvent{}.EventName(), r.forward)
	sub.Subscribe(domorder.OrderStatusChangedEvent{}.EventName(), r.forward)
	sub.Subscribe(dominv.StockDeductedEvent{}.EventName(), r.forward)
}

func (r *Relay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.ch.Close()
	if r.conn != nil {
		if cerr := r.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (r *Relay) forward(ctx context.Context, e domoutbox.Event) error {
	start := time.Now()
	name := e.EventName()

	body, err := encode(e)
	if err == nil {
		r.mu.Lock()
		err = r.ch.Publish(r.exchange, name, false, false, amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     uuid.NewString(),
			CorrelationId: domoutbox.KeyOf(e),
			Timestamp:     start.UTC(),
			Type:          name,
			Body:          body,
		})
		r.mu.Unlock()
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
		logctx.FromOr(ctx, r.log).Warn("event_relay_failed",
			observability.F("event", name),
			observability.F("error", err.Error()),
		)
	}
	r.extCounter.Add(1,
		observability.L("peer", peer),
		observability.L("endpoint", name),
		observability.L("outcome", outcome),
	)
	r.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peer),
		observability.L("endpoint", name),
	)
	return err
}

type orderMessage struct {
	ID                string    `json:"id"`
	ProductName       string    `json:"product_name"`
	Quantity          int       `json:"quantity"`
	TotalPrice        int64     `json:"total_price"`
	Status            string    `json:"status"`
	OrderType         string    `json:"order_type"`
	PaymentMethod     string    `json:"payment_method"`
	DeliveryPerson    string    `json:"delivery_person,omitempty"`
	WarehouseDeducted bool      `json:"warehouse_deducted"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type lineMessage struct {
	StockItemID string  `json:"stock_item_id"`
	Amount      float64 `json:"amount"`
}

type envelope struct {
	Event      string        `json:"event"`
	OccurredAt time.Time     `json:"occurred_at"`
	Order      *orderMessage `json:"order,omitempty"`
	From       string        `json:"from,omitempty"`
	Actor      string        `json:"actor,omitempty"`
	OrderID    string        `json:"order_id,omitempty"`
	Lines      []lineMessage `json:"lines,omitempty"`
	Fallback   bool          `json:"fallback,omitempty"`
}

func encode(e domoutbox.Event) ([]byte, error) {
	env := envelope{Event: e.EventName()}
	switch ev := e.(type) {
	case domorder.OrderCreatedEvent:
		env.OccurredAt = ev.OccurredAt
		env.Order = toOrderMessage(ev.Order)
	case domorder.OrderStatusChangedEvent:
		env.OccurredAt = ev.OccurredAt
		env.Order = toOrderMessage(ev.Order)
		env.From = string(ev.From)
		env.Actor = string(ev.Actor)
	case dominv.StockDeductedEvent:
		env.OccurredAt = ev.OccurredAt
		env.OrderID = ev.OrderID
		env.Fallback = ev.Fallback
		for _, l := range ev.Lines {
			env.Lines = append(env.Lines, lineMessage{StockItemID: l.StockItemID, Amount: l.Amount})
		}
	default:
		return nil, fmt.Errorf("amqp: unsupported event %T", e)
	}
	return json.Marshal(env)
}

func toOrderMessage(o domorder.Order) *orderMessage {
	return &orderMessage{
		ID:                o.ID,
		ProductName:       o.ProductName,
		Quantity:          o.Quantity,
		TotalPrice:        o.TotalPrice,
		Status:            string(o.Status),
		OrderType:         string(o.OrderType),
		PaymentMethod:     string(o.PaymentMethod),
		DeliveryPerson:    o.DeliveryPerson,
		WarehouseDeducted: o.WarehouseDeducted,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}
