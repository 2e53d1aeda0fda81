// Package telemetry exposes Prometheus metrics of card loads and edits.
package telemetry

import (
	"github.com/burenotti/nutrition_counselling/internal/domain"
	"github.com/burenotti/nutrition_counselling/internal/domain/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"time"
)

const namespace = "counselling"

type Metrics struct {
	registry      *prometheus.Registry
	loads         *prometheus.CounterVec
	loadDuration  prometheus.Histogram
	notifications *prometheus.CounterVec
	openSessions  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_loads_total",
			Help:      "Metabolic record loads by outcome.",
		}, []string{"outcome"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "record_load_duration_seconds",
			Help:      "Time spent retrieving and deriving a metabolic record.",
			Buckets:   prometheus.DefBuckets,
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_notifications_total",
			Help:      "Change notifications emitted by edited field.",
		}, []string{"field"}),
		openSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_sessions",
			Help:      "Cards currently open.",
		}),
	}
	m.registry.MustRegister(
		m.loads,
		m.loadDuration,
		m.notifications,
		m.openSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveLoad(outcome string, elapsed time.Duration) {
	m.loads.WithLabelValues(outcome).Inc()
	m.loadDuration.Observe(elapsed.Seconds())
}

// HandleEvent is a message bus handler tracking sessions and edits.
func (m *Metrics) HandleEvent(event domain.Event) error {
	switch e := event.(type) {
	case session.OpenedEvent:
		m.openSessions.Inc()
	case session.ClosedEvent:
		m.openSessions.Dec()
	case session.FieldChangedEvent:
		m.notifications.WithLabelValues(e.Field).Inc()
	case session.NotesSavedEvent:
		m.notifications.WithLabelValues("notes").Inc()
	}
	return nil
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
