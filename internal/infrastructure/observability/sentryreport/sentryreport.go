// Package sentryreport forwards swallowed side-effect errors to Sentry.
package sentryreport

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	DSN         string
	Environment string
	Release     string
}

type Reporter struct {
	hub *sentry.Hub
}

// New returns observability.NopReporter when no DSN is configured.
func New(opts Options) (observability.Reporter, func(time.Duration), error) {
	if opts.DSN == "" {
		return observability.NopReporter(), func(time.Duration) {}, nil
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
		Release:     opts.Release,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("sentry client: %w", err)
	}
	hub := sentry.NewHub(client, sentry.NewScope())
	flush := func(timeout time.Duration) { client.Flush(timeout) }
	return NewWithHub(hub), flush, nil
}

// NewWithHub wraps a preconfigured hub.
func NewWithHub(hub *sentry.Hub) *Reporter {
	return &Reporter{hub: hub}
}

func (r *Reporter) Report(ctx context.Context, err error, tags map[string]string) {
	if r == nil || r.hub == nil || err == nil {
		return
	}
	hub := r.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			scope.SetTag("trace_id", sc.TraceID().String())
		}
		hub.CaptureException(err)
	})
}
