// Package observability assembles the service's tracer, logger and metric instruments
// behind the ports in internal/observability.
package observability

import (
	"sync"

	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
)

type provider struct {
	tracer  observability.Tracer
	logger  observability.Logger
	metrics observability.Metrics
}

// registeredMetrics serves the instruments wired at startup. A key nobody registered
// gets a nop instrument and one metric_not_registered warning.
type registeredMetrics struct {
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
	log        observability.Logger
	missing    sync.Map
}

func (m *registeredMetrics) Counter(name observability.MetricKey) observability.Counter {
	if c, ok := m.counters[name]; ok && c != nil {
		return c
	}
	m.unregistered("counter", name)
	return observability.NopCounter()
}

func (m *registeredMetrics) Histogram(name observability.MetricKey) observability.Histogram {
	if h, ok := m.histograms[name]; ok && h != nil {
		return h
	}
	m.unregistered("histogram", name)
	return observability.NopHistogram()
}

func (m *registeredMetrics) unregistered(kind string, name observability.MetricKey) {
	if _, seen := m.missing.LoadOrStore(kind+":"+string(name), struct{}{}); seen {
		return
	}
	m.log.Warn("metric_not_registered",
		observability.F("kind", kind),
		observability.F("metric", string(name)),
	)
}

// New returns the Observability handed to every use case, worker and adapter.
// Without any instruments metrics are nop and nothing is warned about.
func New(
	tracer observability.Tracer,
	logger observability.Logger,
	counters map[observability.MetricKey]observability.Counter,
	histograms map[observability.MetricKey]observability.Histogram,
) observability.Observability {
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	var metrics observability.Metrics = observability.NopMetrics()
	if len(counters) > 0 || len(histograms) > 0 {
		m := &registeredMetrics{
			counters:   make(map[observability.MetricKey]observability.Counter, len(counters)),
			histograms: make(map[observability.MetricKey]observability.Histogram, len(histograms)),
			log:        logger.With(observability.F("component", "metrics")),
		}
		for k, v := range counters {
			if v != nil {
				m.counters[k] = v
			}
		}
		for k, v := range histograms {
			if v != nil {
				m.histograms[k] = v
			}
		}
		metrics = m
	}

	return &provider{tracer: tracer, logger: logger, metrics: metrics}
}

func (p *provider) Tracer() observability.Tracer   { return p.tracer }
func (p *provider) Logger() observability.Logger   { return p.logger }
func (p *provider) Metrics() observability.Metrics { return p.metrics }
