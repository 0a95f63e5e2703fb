package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/application"
	apporder "github.com/kursant77/ajabo-f69de2d8/internal/application/order"
	domorder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	dompay "github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
)

type PaymentLinkInput struct {
	OrderID   string
	UserAgent string
}

type PaymentLinkResult struct {
	Order *domorder.Order
	URL   string
}

// PaymentLinkUseCase rebuilds the provider redirect for an order still awaiting payment,
// so the failure page can offer a retry.
type PaymentLinkUseCase struct {
	repo  domorder.Repository
	links apporder.LinkGenerator

	in application.Instruments
}

func NewPaymentLinkUseCase(repo domorder.Repository, links apporder.LinkGenerator, tel observability.Observability) *PaymentLinkUseCase {
	return &PaymentLinkUseCase{
		repo:  repo,
		links: links,
		in:    application.NewInstruments(tel, paymentService),
	}
}

func (uc *PaymentLinkUseCase) Execute(ctx context.Context, cmd PaymentLinkInput) (_ *PaymentLinkResult, err error) {
	logger := logctx.FromOr(ctx, uc.in.Log).With(
		observability.F("use_case", useCasePaymentLink),
		observability.F("order_id", cmd.OrderID),
	)
	ctx, span := uc.in.Tracer.Start(ctx, application.SpanPrefix+"PaymentLink",
		attribute.String("use_case", useCasePaymentLink),
		attribute.String("order.id", cmd.OrderID),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	defer func() {
		uc.in.Finish(ctx, logger, span, useCasePaymentLink, outcome, statusText, start, err)
	}()

	o, err := uc.repo.Get(ctx, cmd.OrderID)
	if err != nil {
		outcome, statusText = "error", "ORDER_LOAD_FAILED"
		if errors.Is(err, domorder.ErrNotFound) {
			return nil, apporder.ErrNotFound
		}
		return nil, fmt.Errorf("payment: load order: %w", err)
	}
	if o.Status != domorder.StatusPendingPayment {
		outcome, statusText = "error", "NOT_AWAITING_PAYMENT"
		return nil, fmt.Errorf("%w: status %s", ErrNotAwaitingPayment, o.Status)
	}

	url, ok := uc.links.Generate(o.PaymentMethod, dompay.Request{
		OrderID:     o.ID,
		Amount:      float64(o.TotalPrice),
		ProductName: o.ProductName,
		PhoneNumber: o.PhoneNumber,
	}, cmd.UserAgent)
	if !ok {
		outcome, statusText = "error", "LINK_UNAVAILABLE"
		return nil, fmt.Errorf("%w: %s", ErrLinkUnavailable, o.PaymentMethod)
	}
	return &PaymentLinkResult{Order: o, URL: url}, nil
}
