package application

import (
	"context"
	"time"

	domoutbox "github.com/kursant77/ajabo-f69de2d8/internal/domain/outbox"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	SpanPrefix     = "UC."
	PublishPeer    = "outbox"
	PublishTimeout = 300 * time.Millisecond
)

// Instruments bundles what a use case reports to. Built once at wiring time.
type Instruments struct {
	Log    observability.Logger
	Tracer observability.Tracer

	ReqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	DurHistogram observability.Histogram // usecase_duration_seconds{use_case}
	ExtCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	ExtHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
	Failures     observability.Counter   // side_effect_failures_total{effect}
}

func NewInstruments(tel observability.Observability, service string) Instruments {
	if tel == nil {
		tel = observability.Nop()
	}
	m := tel.Metrics()
	return Instruments{
		Log:          tel.Logger().With(observability.F("service", service)),
		Tracer:       tel.Tracer(),
		ReqCounter:   m.Counter(observability.MUsecaseRequests),
		DurHistogram: m.Histogram(observability.MUsecaseDuration),
		ExtCounter:   m.Counter(observability.MExternalRequests),
		ExtHistogram: m.Histogram(observability.MExternalRequestDuration),
		Failures:     m.Counter(observability.MSideEffectFailures),
	}
}

// Finish closes the span, records RED metrics and writes the use_case_done line.
func (in Instruments) Finish(
	ctx context.Context,
	logger observability.Logger,
	span trace.Span,
	useCase, outcome, status string,
	start time.Time,
	err error,
	extra ...observability.Field,
) {
	lat := time.Since(start).Seconds()

	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, status)
		} else {
			span.SetStatus(codes.Ok, status)
		}
		span.End()
	}

	if in.ReqCounter != nil {
		in.ReqCounter.Add(1,
			observability.L("use_case", useCase),
			observability.L("outcome", outcome),
		)
	}
	if in.DurHistogram != nil {
		in.DurHistogram.Observe(lat,
			observability.L("use_case", useCase),
		)
	}

	fields := []observability.Field{
		observability.F("outcome", outcome),
		observability.F("status", status),
		observability.F("latency_seconds", lat),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	fields = append(fields, extra...)
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	if logger == nil {
		logger = in.Log
	}
	logger.Info("use_case_done", fields...)
}

// Publish hands an event to the outbox with a short timeout and records it as an external call.
func (in Instruments) Publish(ctx context.Context, publisher domoutbox.Publisher, event domoutbox.Event) error {
	if publisher == nil || event == nil {
		return nil
	}

	pubCtx, cancel := context.WithTimeout(ctx, PublishTimeout)
	start := time.Now()
	err := publisher.Publish(pubCtx, event)
	outcome := "success"
	if err != nil {
		outcome = "error"
	} else if pubCtx.Err() != nil {
		outcome = "canceled"
		err = pubCtx.Err()
	}
	cancel()

	if in.ExtCounter != nil {
		in.ExtCounter.Add(1,
			observability.L("peer", PublishPeer),
			observability.L("endpoint", event.EventName()),
			observability.L("outcome", outcome),
		)
	}
	if in.ExtHistogram != nil {
		in.ExtHistogram.Observe(time.Since(start).Seconds(),
			observability.L("peer", PublishPeer),
			observability.L("endpoint", event.EventName()),
		)
	}
	return err
}

// External records one outbound call to peer.
func (in Instruments) External(peer, endpoint, outcome string, start time.Time) {
	if in.ExtCounter != nil {
		in.ExtCounter.Add(1,
			observability.L("peer", peer),
			observability.L("endpoint", endpoint),
			observability.L("outcome", outcome),
		)
	}
	if in.ExtHistogram != nil {
		in.ExtHistogram.Observe(time.Since(start).Seconds(),
			observability.L("peer", peer),
			observability.L("endpoint", endpoint),
		)
	}
}
