package order

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	domoutbox "github.com/kursant77/ajabo-f69de2d8/internal/domain/outbox"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability/logctx"
)

type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Change is one entry of the live order feed.
type Change struct {
	Kind  ChangeKind
	Order domain.Order
}

// Board is the working set of active orders shown to staff. It is fed by order events and
// drops orders once they reach a terminal status.
type Board struct {
	repo  domain.Repository
	sweep *ExpirySweepUseCase
	now   func() time.Time
	log   observability.Logger

	mu     sync.RWMutex
	orders map[string]*domain.Order
	subs   map[int]chan Change
	nextID int
}

const boardComponent = "order_board"

func NewBoard(repo domain.Repository, sweep *ExpirySweepUseCase, tel observability.Observability) *Board {
	logger := observability.NopLogger()
	if tel != nil {
		logger = tel.Logger()
	}
	return &Board{
		repo:   repo,
		sweep:  sweep,
		now:    time.Now,
		log:    logger.With(observability.F("component", boardComponent)),
		orders: make(map[string]*domain.Order),
		subs:   make(map[int]chan Change),
	}
}

// WithClock replaces the time source used for sweeps.
func (b *Board) WithClock(now func() time.Time) *Board {
	b.now = now
	return b
}

// Start registers the board on the event bus.
func (b *Board) Start(sub domoutbox.Subscriber) {
	if sub == nil {
		return
	}
	sub.Subscribe(domain.OrderCreatedEvent{}.EventName(), b.handle)
	sub.Subscribe(domain.OrderStatusChangedEvent{}.EventName(), b.handle)
}

// Load sweeps expired orders and replaces the working set with the store's active orders.
func (b *Board) Load(ctx context.Context) error {
	b.runSweep(ctx)

	active, err := b.repo.List(ctx, domain.Filter{Statuses: []domain.Status{
		domain.StatusPendingPayment, domain.StatusPending, domain.StatusReady, domain.StatusOnWay,
	}})
	if err != nil {
		return wrapRepositoryError(err)
	}

	fresh := make(map[string]*domain.Order, len(active))
	for _, o := range active {
		fresh[o.ID] = o.Clone()
	}
	b.mu.Lock()
	b.orders = fresh
	b.mu.Unlock()

	logctx.FromOr(ctx, b.log).Info("order_board_loaded", observability.F("orders", len(fresh)))
	return nil
}

// Run sweeps on every tick until ctx is done.
func (b *Board) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.runSweep(ctx)
		}
	}
}

// Active returns the working set, newest first.
func (b *Board) Active() []*domain.Order {
	b.mu.RLock()
	out := make([]*domain.Order, 0, len(b.orders))
	for _, o := range b.orders {
		out = append(out, o.Clone())
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Subscribe streams changes until cancel is called. Slow consumers miss changes rather than block.
func (b *Board) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Change, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Apply folds one order snapshot into the working set.
func (b *Board) Apply(o domain.Order) Change {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, known := b.orders[o.ID]
	if known && o.UpdatedAt.Before(current.UpdatedAt) {
		// out-of-order delivery; keep the newer snapshot
		return Change{Kind: ChangeUpdate, Order: *current}
	}

	var c Change
	switch {
	case o.Status.Terminal():
		delete(b.orders, o.ID)
		c = Change{Kind: ChangeDelete, Order: o}
	case known:
		b.orders[o.ID] = o.Clone()
		c = Change{Kind: ChangeUpdate, Order: o}
	default:
		b.orders[o.ID] = o.Clone()
		c = Change{Kind: ChangeInsert, Order: o}
	}

	for _, ch := range b.subs {
		select {
		case ch <- c:
		default:
		}
	}
	return c
}

func (b *Board) handle(_ context.Context, e domoutbox.Event) error {
	switch evt := e.(type) {
	case domain.OrderCreatedEvent:
		b.Apply(evt.Order)
	case domain.OrderStatusChangedEvent:
		b.Apply(evt.Order)
	}
	return nil
}

func (b *Board) runSweep(ctx context.Context) {
	if b.sweep == nil {
		return
	}
	if _, err := b.sweep.Execute(ctx, b.now()); err != nil {
		logctx.FromOr(ctx, b.log).Warn("order_sweep_skipped", observability.F("error", err.Error()))
	}
}
