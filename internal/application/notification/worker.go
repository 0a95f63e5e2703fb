package notification

import (
	"context"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/application"
	domorder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	domoutbox "github.com/kursant77/ajabo-f69de2d8/internal/domain/outbox"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	workerService = "notification_worker"
	effectNotify  = "notification"
)

// Worker notifies customers on order events. Send failures are logged and reported, never retried.
type Worker struct {
	subscriber domoutbox.Subscriber
	useCase    application.UseCase[NotifyInput, *NotifyResult]
	reporter   observability.Reporter

	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter
	durHistogram observability.Histogram
	failures     observability.Counter
}

func NewWorker(
	subscriber domoutbox.Subscriber,
	useCase application.UseCase[NotifyInput, *NotifyResult],
	reporter observability.Reporter,
	tel observability.Observability,
) *Worker {
	if tel == nil {
		tel = observability.Nop()
	}
	if reporter == nil {
		reporter = observability.NopReporter()
	}
	m := tel.Metrics()
	return &Worker{
		subscriber:   subscriber,
		useCase:      useCase,
		reporter:     reporter,
		log:          tel.Logger().With(observability.F("service", workerService)),
		tracer:       tel.Tracer(),
		reqCounter:   m.Counter(observability.MUsecaseRequests),
		durHistogram: m.Histogram(observability.MUsecaseDuration),
		failures:     m.Counter(observability.MSideEffectFailures),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.useCase == nil {
		return
	}
	w.subscriber.Subscribe(domorder.OrderCreatedEvent{}.EventName(), w.handle)
	w.subscriber.Subscribe(domorder.OrderStatusChangedEvent{}.EventName(), w.handle)
}

func (w *Worker) handle(ctx context.Context, e domoutbox.Event) error {
	const useCase = "notification.worker.order_event"

	var in NotifyInput
	switch evt := e.(type) {
	case domorder.OrderCreatedEvent:
		// new orders only carry the id the storefront supplied
		in = NotifyInput{Order: evt.Order}
	case domorder.OrderStatusChangedEvent:
		in = NotifyInput{Order: evt.Order, LookupByPhone: true}
	default:
		w.observe(useCase, "ignored", 0)
		return nil
	}
	if in.Order.Status == domorder.StatusPendingPayment {
		w.observe(useCase, "ignored", 0)
		return nil
	}

	ctx, span := w.tracer.Start(ctx, application.SpanPrefix+"OrderNotify",
		attribute.String("use_case", useCase),
		attribute.String("event", e.EventName()),
		attribute.String("order.id", in.Order.ID),
	)
	start := time.Now()
	outcome := "success"

	logger := logctx.FromOr(ctx, w.log).With(
		observability.F("use_case", useCase),
		observability.F("event", e.EventName()),
		observability.F("order_id", in.Order.ID),
	)
	ctx = logctx.With(ctx, logger)

	res, err := w.useCase.Execute(ctx, in)
	switch {
	case err != nil:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "NOTIFY_FAILED")
		w.failures.Add(1, observability.L("effect", effectNotify))
		logger.Warn("side_effect_failed",
			observability.F("effect", effectNotify),
			observability.F("error", err.Error()),
		)
		w.reporter.Report(ctx, err, map[string]string{
			"effect":   effectNotify,
			"order_id": in.Order.ID,
		})
	case res != nil && !res.Sent:
		outcome = "skipped"
		span.SetStatus(codes.Ok, "SKIPPED")
	default:
		span.SetStatus(codes.Ok, "OK")
	}
	span.End()
	w.observe(useCase, outcome, time.Since(start).Seconds())
	return nil
}

func (w *Worker) observe(useCase, outcome string, latencySeconds float64) {
	w.reqCounter.Add(1,
		observability.L("use_case", useCase),
		observability.L("outcome", outcome),
	)
	if latencySeconds > 0 {
		w.durHistogram.Observe(latencySeconds, observability.L("use_case", useCase))
	}
}
