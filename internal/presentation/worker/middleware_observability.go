package workerpresentation

import (
	"context"

	"github.com/google/uuid"
	domoutbox "github.com/kursant77/ajabo-f69de2d8/internal/domain/outbox"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability/logctx"
	"go.opentelemetry.io/otel/trace"
)

// WithEventContext injects a request-scoped logger for background/worker executions.
// Dynamic fields only: trace_id/span_id (if valid), event_id (generated if empty),
// plus caller-provided low-cardinality attributes (e.g. "event", "subscriber").
func WithEventContext(
	ctx context.Context,
	base observability.Logger,
	attrs map[string]string,
) context.Context {
	if base == nil {
		base = logctx.FromOr(ctx, observability.NopLogger())
	}
	if attrs == nil {
		attrs = make(map[string]string)
	}

	fields := make([]observability.Field, 0, 6)

	evtID := attrs["event_id"]
	if evtID == "" {
		evtID = uuid.NewString()
	}
	fields = append(fields, observability.F("event_id", evtID))

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}

	for k, v := range attrs {
		if k == "event_id" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}

	return logctx.With(ctx, base.With(fields...))
}

// Subscriber decorates a bus so every handler runs with an event-scoped logger.
type Subscriber struct {
	next domoutbox.Subscriber
	name string
}

// Observe wraps sub; name tags the log lines of the handlers registered through it.
func Observe(sub domoutbox.Subscriber, name string) *Subscriber {
	return &Subscriber{next: sub, name: name}
}

func (s *Subscriber) Subscribe(eventName string, h domoutbox.Handler) {
	if s.next == nil {
		return
	}
	s.next.Subscribe(eventName, func(ctx context.Context, e domoutbox.Event) error {
		attrs := map[string]string{
			"event":      eventName,
			"subscriber": s.name,
			"order_id":   domoutbox.KeyOf(e),
		}
		return h(WithEventContext(ctx, logctx.From(ctx), attrs), e)
	})
}
