package observability

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "apns"

// Metrics owns a private registry; nothing is registered on the global one.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	documents       *prometheus.CounterVec
	documentRecords prometheus.Histogram
	advisorCalls    *prometheus.CounterVec
	advisorLatency  prometheus.Histogram
	studentsSaved   prometheus.Counter
	highRiskActions prometheus.Counter
}

func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "API requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_inflight_requests",
			Help:      "API requests currently being served.",
		}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_documents_total",
			Help:      "Analyzed documents by format and outcome.",
		}, []string{"format", "outcome"}),
		documentRecords: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingestion_document_records",
			Help:      "Tabular rows per analyzed document.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		advisorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisor_calls_total",
			Help:      "External advisor calls by outcome.",
		}, []string{"outcome"}),
		advisorLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "advisor_call_duration_seconds",
			Help:      "External advisor call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		studentsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_students_saved_total",
			Help:      "Student rows upserted from documents.",
		}),
		highRiskActions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_high_risk_actions_total",
			Help:      "Parent alert actions created for high-risk students.",
		}),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.documents,
		m.documentRecords,
		m.advisorCalls,
		m.advisorLatency,
		m.studentsSaved,
		m.highRiskActions,
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RegisterDBStats exports connection pool statistics for db.
func (m *Metrics) RegisterDBStats(db *sql.DB, name string) error {
	if m == nil || db == nil {
		return nil
	}
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// RegisterStoreStatus exports 1 while the relational store is connected.
func (m *Metrics) RegisterStoreStatus(connected func() bool) error {
	if m == nil || connected == nil {
		return nil
	}
	return m.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "store_connected",
		Help:      "1 when the relational store is reachable, 0 in memory fallback.",
	}, func() float64 {
		if connected() {
			return 1
		}
		return 0
	}))
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveDocument records one analyze-document attempt.
func (m *Metrics) ObserveDocument(format, outcome string, records int) {
	if m == nil {
		return
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "unknown"
	}
	m.documents.WithLabelValues(format, outcome).Inc()
	if outcome == "ok" {
		m.documentRecords.Observe(float64(records))
	}
}

// ObserveAdvisor records an advisor call; outcome is used, absent or disabled.
func (m *Metrics) ObserveAdvisor(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.advisorCalls.WithLabelValues(outcome).Inc()
	if outcome != "disabled" {
		m.advisorLatency.Observe(dur.Seconds())
	}
}

func (m *Metrics) AddPersisted(saved, actions int) {
	if m == nil {
		return
	}
	if saved > 0 {
		m.studentsSaved.Add(float64(saved))
	}
	if actions > 0 {
		m.highRiskActions.Add(float64(actions))
	}
}
