package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/application"
	apporder "github.com/kursant77/ajabo-f69de2d8/internal/application/order"
	"github.com/kursant77/ajabo-f69de2d8/internal/application/validation"
	domorder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	dompay "github.com/kursant77/ajabo-f69de2d8/internal/domain/payment"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
)

const (
	paymentService        = "payment-service"
	useCasePaymentConfirm = "payment.confirm"
	useCasePaymentLink    = "payment.link"
)

var (
	ErrMismatch           = errors.New("payment: return does not match the order")
	ErrExpired            = errors.New("payment: order was cancelled before payment arrived")
	ErrNotAwaitingPayment = errors.New("payment: order is not awaiting payment")
	ErrLinkUnavailable    = errors.New("payment: method cannot build a payment link")
)

type ConfirmPaymentInput struct {
	OrderID string `validate:"required"`
	Method  string `validate:"required"`
	// Amount is optional; when present it must equal the order total.
	Amount string
}

type ConfirmPaymentResult struct {
	Order *domorder.Order
	// AlreadyConfirmed is set when an earlier return had already moved the order on.
	AlreadyConfirmed bool
}

// ConfirmPaymentUseCase handles the customer's return from the provider's success page.
type ConfirmPaymentUseCase struct {
	repo   domorder.Repository
	status application.UseCase[apporder.UpdateStatusInput, *apporder.UpdateStatusResult]

	in application.Instruments
}

func NewConfirmPaymentUseCase(
	repo domorder.Repository,
	status application.UseCase[apporder.UpdateStatusInput, *apporder.UpdateStatusResult],
	tel observability.Observability,
) *ConfirmPaymentUseCase {
	return &ConfirmPaymentUseCase{
		repo:   repo,
		status: status,
		in:     application.NewInstruments(tel, paymentService),
	}
}

func (uc *ConfirmPaymentUseCase) Execute(ctx context.Context, cmd ConfirmPaymentInput) (_ *ConfirmPaymentResult, err error) {
	logger := logctx.FromOr(ctx, uc.in.Log).With(
		observability.F("use_case", useCasePaymentConfirm),
		observability.F("order_id", cmd.OrderID),
		observability.F("method", cmd.Method),
	)

	ctx, span := uc.in.Tracer.Start(ctx, application.SpanPrefix+"ConfirmPayment",
		attribute.String("use_case", useCasePaymentConfirm),
		attribute.String("order.id", cmd.OrderID),
		attribute.String("payment.method", cmd.Method),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	res := &ConfirmPaymentResult{}

	defer func() {
		uc.in.Finish(ctx, logger, span, useCasePaymentConfirm, outcome, statusText, start, err,
			observability.F("already_confirmed", res.AlreadyConfirmed),
		)
	}()

	if err := validation.Struct(cmd); err != nil {
		outcome, statusText = "error", "VALIDATION_FAILED"
		return nil, err
	}

	o, err := uc.repo.Get(ctx, cmd.OrderID)
	if err != nil {
		outcome, statusText = "error", "ORDER_LOAD_FAILED"
		if errors.Is(err, domorder.ErrNotFound) {
			return nil, apporder.ErrNotFound
		}
		return nil, fmt.Errorf("payment: load order: %w", err)
	}

	if err := matches(o, cmd); err != nil {
		outcome, statusText = "error", "RETURN_MISMATCH"
		return nil, validation.Wrap(err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		switch o.Status {
		case domorder.StatusCancelled:
			outcome, statusText = "error", "ORDER_EXPIRED"
			return nil, ErrExpired
		case domorder.StatusPendingPayment:
		default:
			res.Order, res.AlreadyConfirmed = o, true
			outcome, statusText = "skipped", "ALREADY_CONFIRMED"
			return res, nil
		}

		out, uerr := uc.status.Execute(ctx, apporder.UpdateStatusInput{
			OrderID: o.ID,
			Status:  string(domorder.StatusPending),
			Actor:   domorder.ActorSystem,
		})
		if uerr == nil {
			res.Order = out.Order
			return res, nil
		}
		if !errors.Is(uerr, apporder.ErrConflict) {
			outcome, statusText = "error", "STATUS_UPDATE_FAILED"
			return nil, uerr
		}
		// raced with the sweep or a second return; decide on the fresh row
		if o, err = uc.repo.Get(ctx, cmd.OrderID); err != nil {
			outcome, statusText = "error", "ORDER_RELOAD_FAILED"
			return nil, fmt.Errorf("payment: reload order: %w", err)
		}
	}
	outcome, statusText = "error", "STATUS_CONFLICT"
	return nil, apporder.ErrConflict
}

func matches(o *domorder.Order, cmd ConfirmPaymentInput) error {
	m, err := dompay.ParseMethod(cmd.Method)
	if err != nil {
		return err
	}
	if m != o.PaymentMethod {
		return fmt.Errorf("%w: method %s, order paid with %s", ErrMismatch, m, o.PaymentMethod)
	}
	raw := strings.TrimSpace(cmd.Amount)
	if raw == "" {
		return nil
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.Abs(amount-float64(o.TotalPrice)) >= 0.01 {
		return fmt.Errorf("%w: amount %q, order total %d", ErrMismatch, raw, o.TotalPrice)
	}
	return nil
}
