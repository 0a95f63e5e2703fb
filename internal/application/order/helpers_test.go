package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/domain/catalog"
	domoutbox "github.com/kursant77/ajabo-f69de2d8/internal/domain/outbox"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/settings"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/memory"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("order-%03d", s.n)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Events() []domoutbox.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domoutbox.Event(nil), p.events...)
}

type staticSettings struct{ s *settings.Settings }

func (s staticSettings) Current(context.Context) (*settings.Settings, error) { return s.s.Clone(), nil }

type stubLimiter struct {
	allowed    bool
	retryAfter time.Duration
	err        error
	keys       []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.keys = append(l.keys, key)
	return l.allowed, l.retryAfter, l.err
}

var testMerchants = payment.Merchants{
	ClickServiceID:  "svc",
	ClickMerchantID: "mer",
	PaymeMerchantID: "payme",
}

type fixture struct {
	repo      *memory.OrderRepository
	catalog   *memory.CatalogRepository
	settings  *settings.Settings
	limiter   *stubLimiter
	publisher *recordingPublisher
	create    *CreateOrderUseCase
	now       time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:      memory.NewOrderRepository(),
		catalog:   memory.NewCatalogRepository(),
		settings:  settings.Default(),
		limiter:   &stubLimiter{allowed: true},
		publisher: &recordingPublisher{},
		now:       time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.settings.MinOrderAmount = 30000

	_ = f.catalog.CreateProduct(context.Background(), &catalog.Product{
		ID: "p-burger", Name: "Burger", Price: 25000, IsAvailable: true,
	})
	_ = f.catalog.CreateProduct(context.Background(), &catalog.Product{
		ID: "p-off", Name: "Seasonal", Price: 40000, IsAvailable: false,
	})

	f.create = NewCreateOrderUseCase(CreateOrderDeps{
		Repo:        f.repo,
		Products:    f.catalog,
		Settings:    staticSettings{s: f.settings},
		Resolver:    payment.NewResolver(testMerchants),
		Links:       payment.NewGenerator(testMerchants, "https://cafe.example"),
		Limiter:     f.limiter,
		IDGenerator: &seqIDs{},
		Publisher:   f.publisher,
	}, nil).WithClock(func() time.Time { return f.now })
	return f
}

func cashInput() CreateOrderInput {
	return CreateOrderInput{
		ProductID:     "p-burger",
		Quantity:      2,
		CustomerName:  "Dilnoza",
		PhoneNumber:   "+998 90 123-45-67",
		Address:       "Yunusobod 4",
		OrderType:     "delivery",
		PaymentMethod: "cash",
		ClientID:      "10.0.0.1",
	}
}
