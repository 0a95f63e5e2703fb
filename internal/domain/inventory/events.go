package inventory

import "time"

// StockDeductedEvent is emitted after an order's ingredients were taken from the warehouse.
type StockDeductedEvent struct {
	OrderID    string
	Lines      []Line
	Fallback   bool
	OccurredAt time.Time
}

func (StockDeductedEvent) EventName() string { return "inventory.deducted" }

func (e StockDeductedEvent) AggregateID() string { return e.OrderID }

func NewStockDeductedEvent(orderID string, lines []Line, fallback bool) StockDeductedEvent {
	return StockDeductedEvent{
		OrderID:    orderID,
		Lines:      lines,
		Fallback:   fallback,
		OccurredAt: time.Now().UTC(),
	}
}
