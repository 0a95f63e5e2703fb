package observability

import (
	"testing"

	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/stretchr/testify/assert"
)

type countingCounter struct{ total float64 }

func (c *countingCounter) Add(d float64, _ ...observability.Label) { c.total += d }
func (c *countingCounter) Bind(...observability.Label) observability.BoundCounter {
	return observability.NopCounter().Bind()
}

func TestProviderFallsBackToNop(t *testing.T) {
	c := &countingCounter{}
	p := New(nil, nil, map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: c,
	}, nil)

	p.Metrics().Counter(observability.MUsecaseRequests).Add(2)
	p.Metrics().Counter(observability.MRateLimited).Add(1)
	p.Metrics().Histogram(observability.MUsecaseDuration).Observe(1)
	p.Logger().Info("ignored")

	assert.Equal(t, 2.0, c.total)
	assert.NotNil(t, p.Tracer())
}

type warnings struct{ msgs []string }

func (w *warnings) With(...observability.Field) observability.Logger { return w }
func (w *warnings) Debug(string, ...observability.Field)             {}
func (w *warnings) Info(string, ...observability.Field)              {}
func (w *warnings) Warn(msg string, _ ...observability.Field)        { w.msgs = append(w.msgs, msg) }
func (w *warnings) Error(string, ...observability.Field)             {}

func TestProviderWarnsOnceAboutUnregisteredMetric(t *testing.T) {
	log := &warnings{}
	p := New(nil, log, map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: &countingCounter{},
	}, nil)

	p.Metrics().Counter(observability.MRateLimited).Add(1)
	p.Metrics().Counter(observability.MRateLimited).Add(1)
	p.Metrics().Counter(observability.MUsecaseRequests).Add(1)
	p.Metrics().Histogram(observability.MUsecaseDuration).Observe(1)

	assert.Equal(t, []string{"metric_not_registered", "metric_not_registered"}, log.msgs)
}
