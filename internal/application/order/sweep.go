package order

import (
	"context"
	"errors"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/application"
	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	domoutbox "github.com/kursant77/ajabo-f69de2d8/internal/domain/outbox"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
)

const (
	useCaseOrderSweep = "order.expiry_sweep"

	// DefaultPaymentTTL is how long an order may wait for online payment.
	DefaultPaymentTTL = 30 * time.Minute
)

// ExpirySweepUseCase cancels orders whose online payment never arrived.
type ExpirySweepUseCase struct {
	repo      domain.Repository
	publisher domoutbox.Publisher
	ttl       time.Duration

	in application.Instruments
}

func NewExpirySweepUseCase(repo domain.Repository, publisher domoutbox.Publisher, ttl time.Duration, tel observability.Observability) *ExpirySweepUseCase {
	if ttl <= 0 {
		ttl = DefaultPaymentTTL
	}
	return &ExpirySweepUseCase{
		repo:      repo,
		publisher: publisher,
		ttl:       ttl,
		in:        application.NewInstruments(tel, orderService),
	}
}

type SweepResult struct {
	Cancelled []string
	Skipped   int
}

// Execute cancels every pending_payment order created more than ttl before now.
func (uc *ExpirySweepUseCase) Execute(ctx context.Context, now time.Time) (_ *SweepResult, err error) {
	logger := logctx.FromOr(ctx, uc.in.Log).With(observability.F("use_case", useCaseOrderSweep))

	ctx, span := uc.in.Tracer.Start(ctx, application.SpanPrefix+"ExpirySweep",
		attribute.String("use_case", useCaseOrderSweep),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	res := &SweepResult{}

	defer func() {
		uc.in.Finish(ctx, logger, span, useCaseOrderSweep, outcome, statusText, start, err,
			observability.F("cancelled", len(res.Cancelled)),
			observability.F("skipped", res.Skipped),
		)
	}()

	candidates, err := uc.repo.List(ctx, domain.Filter{
		Statuses:      []domain.Status{domain.StatusPendingPayment},
		CreatedBefore: now.Add(-uc.ttl),
	})
	if err != nil {
		outcome, statusText = "error", "LIST_FAILED"
		return res, wrapRepositoryError(err)
	}

	for _, o := range candidates {
		if !o.ExpiredAt(now, uc.ttl) {
			continue
		}
		if terr := o.Transition(domain.StatusCancelled, domain.ActorSystem, "", now); terr != nil {
			res.Skipped++
			continue
		}
		if uerr := uc.repo.UpdateStatus(ctx, o, domain.StatusPendingPayment); uerr != nil {
			// paid or cancelled concurrently; the next sweep sees the fresh row
			res.Skipped++
			if !errors.Is(uerr, domain.ErrConflict) {
				logger.Warn("order_sweep_update_failed",
					observability.F("order_id", o.ID),
					observability.F("error", uerr.Error()),
				)
			}
			continue
		}
		res.Cancelled = append(res.Cancelled, o.ID)
		if perr := uc.in.Publish(ctx, uc.publisher, domain.NewOrderStatusChangedEvent(o, domain.StatusPendingPayment, domain.ActorSystem)); perr != nil {
			statusText = "EVENT_PUBLISH_FAILED"
		}
	}

	span.SetAttributes(attribute.Int("order.cancelled", len(res.Cancelled)))
	return res, nil
}
