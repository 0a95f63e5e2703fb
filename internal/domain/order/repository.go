package order

import (
	"context"
	"time"
)

// Filter narrows List results. Zero values do not filter. When both TelegramUserID and
// PhoneNumber are set an order matching either is returned. CreatedAfter is inclusive,
// CreatedBefore exclusive.
type Filter struct {
	Statuses       []Status
	TelegramUserID string
	PhoneNumber    string
	CreatedAfter   time.Time
	CreatedBefore  time.Time
	Limit          int
}

type Repository interface {
	Insert(ctx context.Context, order *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	// List returns matching orders, newest first.
	List(ctx context.Context, f Filter) ([]*Order, error)
	// UpdateStatus writes status, delivery person and updated_at only when the stored status
	// still equals from; otherwise it returns ErrConflict.
	UpdateStatus(ctx context.Context, order *Order, from Status) error
}
