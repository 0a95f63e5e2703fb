package order

import "time"

// OrderCreatedEvent is emitted after a new order is persisted.
type OrderCreatedEvent struct {
	Order      Order
	OccurredAt time.Time
}

func (OrderCreatedEvent) EventName() string { return "order.created" }

func (e OrderCreatedEvent) AggregateID() string { return e.Order.ID }

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		Order:      *o,
		OccurredAt: time.Now().UTC(),
	}
}

// OrderStatusChangedEvent is emitted after a status write succeeds.
type OrderStatusChangedEvent struct {
	Order      Order
	From       Status
	Actor      Actor
	OccurredAt time.Time
}

func (OrderStatusChangedEvent) EventName() string { return "order.status_changed" }

func (e OrderStatusChangedEvent) AggregateID() string { return e.Order.ID }

func NewOrderStatusChangedEvent(o *Order, from Status, actor Actor) OrderStatusChangedEvent {
	return OrderStatusChangedEvent{
		Order:      *o,
		From:       from,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	}
}
