package inventory

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
	"go.opentelemetry.io/otel/trace"
)

const (
	workerService = "inventory_worker"
	effectDeduct  = "stock_deduction"
)

// Worker deducts stock once an order is accepted. Failures never reach the order flow.
type Worker struct {
	subscriber domoutbox.Subscriber
	useCase    application.UseCase[DeductStockInput, *DeductStockResult]
	reporter   observability.Reporter

	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	failures     observability.Counter   // side_effect_failures_total{effect}
}

func NewWorker(
	subscriber domoutbox.Subscriber,
	useCase application.UseCase[DeductStockInput, *DeductStockResult],
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

// shouldDeduct reports whether the order snapshot has left the payment stage alive.
func shouldDeduct(o domorder.Order) bool {
	if o.WarehouseDeducted {
		return false
	}
	return o.Status != domorder.StatusPendingPayment && o.Status != domorder.StatusCancelled
}

func (w *Worker) handle(ctx context.Context, e domoutbox.Event) error {
	const useCase = "inventory.worker.order_event"

	var o domorder.Order
	switch evt := e.(type) {
	case domorder.OrderCreatedEvent:
		o = evt.Order
	case domorder.OrderStatusChangedEvent:
		o = evt.Order
	default:
		w.count(useCase, "ignored")
		return nil
	}
	if !shouldDeduct(o) {
		w.count(useCase, "ignored")
		return nil
	}

	ctx, span := w.tracer.Start(ctx, application.SpanPrefix+"OrderAccepted",
		attribute.String("use_case", useCase),
		attribute.String("event", e.EventName()),
		attribute.String("order.id", o.ID),
	)
	start := time.Now()
	outcome, status := "success", "OK"

	logger := logctx.FromOr(ctx, w.log).With(
		observability.F("use_case", useCase),
		observability.F("event", e.EventName()),
		observability.F("order_id", o.ID),
	)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		logger = logger.With(
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	ctx = logctx.With(ctx, logger)

	defer func() {
		w.observe(useCase, outcome, time.Since(start).Seconds())
		if outcome == "error" {
			span.SetStatus(codes.Error, status)
		} else {
			span.SetStatus(codes.Ok, status)
		}
		span.End()
	}()

	res, err := w.useCase.Execute(ctx, DeductStockInput{
		OrderID:     o.ID,
		ProductName: o.ProductName,
		Quantity:    o.Quantity,
	})
	if err != nil {
		outcome, status = "error", "DEDUCTION_FAILED"
		span.RecordError(err)
		w.failures.Add(1, observability.L("effect", effectDeduct))
		logger.Warn("side_effect_failed",
			observability.F("effect", effectDeduct),
			observability.F("error", err.Error()),
		)
		w.reporter.Report(ctx, err, map[string]string{
			"effect":   effectDeduct,
			"order_id": o.ID,
		})
		return nil
	}
	if res != nil && !res.Applied {
		outcome = "skipped"
	}
	return nil
}

func (w *Worker) count(useCase, outcome string) {
	if w.reqCounter != nil {
		w.reqCounter.Add(1,
			observability.L("use_case", useCase),
			observability.L("outcome", outcome),
		)
	}
}

func (w *Worker) observe(useCase string, outcome string, latencySeconds float64) {
	w.count(useCase, outcome)
	if w.durHistogram != nil {
		w.durHistogram.Observe(latencySeconds,
			observability.L("use_case", useCase),
		)
	}
}
