package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/application"
	"github.com/kursant77/ajabo-f69de2d8/internal/application/validation"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/catalog"
	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	domoutbox "github.com/kursant77/ajabo-f69de2d8/internal/domain/outbox"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/profile"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService       = "order-service"
	useCaseOrderCreate = "order.create"
)

// CreateOrderUseCase runs the storefront checkout: throttle, validate, price, persist, redirect.
type CreateOrderUseCase struct {
	repo        domain.Repository
	products    ProductReader
	settings    SettingsReader
	resolver    *payment.Resolver
	links       LinkGenerator
	limiter     RateLimiter
	idGenerator IDGenerator
	publisher   domoutbox.Publisher
	now         func() time.Time

	in application.Instruments
}

type CreateOrderDeps struct {
	Repo        domain.Repository
	Products    ProductReader
	Settings    SettingsReader
	Resolver    *payment.Resolver
	Links       LinkGenerator
	Limiter     RateLimiter
	IDGenerator IDGenerator
	Publisher   domoutbox.Publisher
}

func NewCreateOrderUseCase(deps CreateOrderDeps, tel observability.Observability) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		repo:        deps.Repo,
		products:    deps.Products,
		settings:    deps.Settings,
		resolver:    deps.Resolver,
		links:       deps.Links,
		limiter:     deps.Limiter,
		idGenerator: deps.IDGenerator,
		publisher:   deps.Publisher,
		now:         time.Now,
		in:          application.NewInstruments(tel, orderService),
	}
}

// WithClock replaces the time source.
func (uc *CreateOrderUseCase) WithClock(now func() time.Time) *CreateOrderUseCase {
	uc.now = now
	return uc
}

type CreateOrderInput struct {
	ProductID      string `validate:"required"`
	Quantity       int    `validate:"gte=1"`
	CustomerName   string `validate:"notblank"`
	PhoneNumber    string `validate:"required,uzphone"`
	Address        string
	OrderType      string `validate:"omitempty,oneof=delivery takeaway preorder"`
	PaymentMethod  string `validate:"required,oneof=cash click payme uzum paynet"`
	TelegramUserID string `validate:"omitempty,numeric"`

	// ClientID is the rate-limit identity (session or IP).
	ClientID  string
	UserAgent string
}

type CreateOrderResult struct {
	OrderID    string
	DisplayID  string
	Status     domain.Status
	OrderType  domain.Type
	TotalPrice int64
	PaymentURL string
}

// Execute performs the order creation flow.
func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderInput) (_ *CreateOrderResult, err error) {
	logger := logctx.FromOr(ctx, uc.in.Log).With(observability.F("use_case", useCaseOrderCreate))

	var orderID string
	var publishErr error

	ctx, span := uc.in.Tracer.Start(ctx, application.SpanPrefix+"CreateOrder",
		attribute.String("use_case", useCaseOrderCreate),
		attribute.String("order.product_id", cmd.ProductID),
		attribute.String("order.payment_method", cmd.PaymentMethod),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		fields := []observability.Field{}
		if orderID != "" {
			fields = append(fields, observability.F("order_id", orderID))
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		uc.in.Finish(ctx, logger, span, useCaseOrderCreate, outcome, statusText, start, err, fields...)
	}()

	if uc.limiter != nil && cmd.ClientID != "" {
		allowed, retryAfter, limErr := uc.limiter.Allow(ctx, cmd.ClientID)
		switch {
		case limErr != nil:
			// the limiter backend being down must not block checkout
			logger.Warn("rate_limiter_unavailable", observability.F("error", limErr.Error()))
		case !allowed:
			outcome, statusText = "error", "RATE_LIMITED"
			return nil, &RateLimitError{RetryAfter: retryAfter}
		}
	}

	cmd.CustomerName = strings.TrimSpace(cmd.CustomerName)
	cmd.Address = strings.TrimSpace(cmd.Address)
	cmd.OrderType = strings.TrimSpace(cmd.OrderType)
	if err := validation.Struct(cmd); err != nil {
		outcome, statusText = "error", "VALIDATION_FAILED"
		return nil, err
	}

	cfg, err := uc.settings.Current(ctx)
	if err != nil {
		outcome, statusText = "error", "SETTINGS_UNAVAILABLE"
		return nil, fmt.Errorf("order: load settings: %w", err)
	}

	orderType, err := domain.ParseType(cmd.OrderType)
	if err != nil {
		outcome, statusText = "error", "ORDER_TYPE_INVALID"
		return nil, validation.Wrap(err)
	}
	if orderType == domain.TypeDelivery && !cfg.DeliveryEnabled {
		orderType = domain.TypeTakeaway
	}

	product, err := uc.products.GetProduct(ctx, cmd.ProductID)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		outcome, statusText = "error", "PRODUCT_NOT_FOUND"
		return nil, validation.Wrap(ErrProductMissing)
	case err != nil:
		outcome, statusText = "error", "PRODUCT_LOOKUP_FAILED"
		return nil, fmt.Errorf("order: load product: %w", err)
	case !product.IsAvailable:
		outcome, statusText = "error", "PRODUCT_UNAVAILABLE"
		return nil, validation.Wrap(catalog.ErrUnavailable)
	}

	total := product.Price * int64(cmd.Quantity)
	if minimum := cfg.EffectiveMinOrderAmount(); total < minimum {
		outcome, statusText = "error", "BELOW_MINIMUM"
		return nil, validation.Wrap(fmt.Errorf("%w: %s < %s", ErrBelowMinimum,
			domain.FormatPrice(total), domain.FormatPrice(minimum)))
	}

	method := payment.Method(cmd.PaymentMethod)
	if !uc.resolver.IsEnabled(method, cfg.Payments) {
		outcome, statusText = "error", "PAYMENT_METHOD_UNAVAILABLE"
		return nil, validation.Wrap(fmt.Errorf("%w: %s", ErrMethodUnavailable, method))
	}

	if err := ctx.Err(); err != nil {
		outcome, statusText = "error", "CONTEXT_CANCELED"
		return nil, err
	}

	orderID = uc.idGenerator.NewID()
	now := uc.now()
	entity, derr := domain.New(orderID, domain.Draft{
		ProductName:    product.Name,
		Quantity:       cmd.Quantity,
		TotalPrice:     total,
		CustomerName:   cmd.CustomerName,
		PhoneNumber:    profile.NormalizePhone(cmd.PhoneNumber),
		Address:        cmd.Address,
		OrderType:      orderType,
		PaymentMethod:  method,
		TelegramUserID: cmd.TelegramUserID,
	}, now)
	if derr != nil {
		outcome, statusText = "error", "DOMAIN_CONSTRUCTION_FAILED"
		return nil, validation.Wrap(derr)
	}

	var paymentURL string
	if entity.Status == domain.StatusPendingPayment {
		link, ok := uc.links.Generate(method, payment.Request{
			OrderID:     entity.ID,
			Amount:      float64(entity.TotalPrice),
			ProductName: entity.ProductName,
			PhoneNumber: entity.PhoneNumber,
		}, cmd.UserAgent)
		if ok {
			paymentURL = link
		} else {
			// without a redirect the order cannot be paid online; accept it like cash
			if terr := entity.Transition(domain.StatusPending, domain.ActorSystem, "", now); terr != nil {
				outcome, statusText = "error", "STATE_TRANSITION_FAILED"
				return nil, terr
			}
			span.AddEvent("order.payment_link_unavailable")
		}
	}

	if err := uc.repo.Insert(ctx, entity); err != nil {
		outcome, statusText = "error", "REPO_INSERT_FAILED"
		return nil, wrapRepositoryError(err)
	}

	publishErr = uc.in.Publish(ctx, uc.publisher, domain.NewOrderCreatedEvent(entity))
	if publishErr != nil {
		statusText = "EVENT_PUBLISH_FAILED"
	}

	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.status", string(entity.Status)),
	)
	span.AddEvent("order.created",
		trace.WithAttributes(attribute.String("order.id", orderID)),
	)

	return &CreateOrderResult{
		OrderID:    entity.ID,
		DisplayID:  domain.DisplayID(entity.ID),
		Status:     entity.Status,
		OrderType:  entity.OrderType,
		TotalPrice: entity.TotalPrice,
		PaymentURL: paymentURL,
	}, nil
}
