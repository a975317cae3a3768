// Package metrics exposes Prometheus instrumentation for the classification
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	classifications *prometheus.CounterVec
	oracleFailures  *prometheus.CounterVec
	cacheHits       prometheus.Counter
	auditAppends    prometheus.Counter
	duration        prometheus.Histogram
}

// New creates and registers all pipeline metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers on a caller-supplied registry so tests stay isolated.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casetrail_classifications_total",
			Help: "Completed classifications by risk level and verdict source.",
		}, []string{"risk_level", "source"}),
		oracleFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casetrail_oracle_failures_total",
			Help: "Oracle failures by kind (transport or validation).",
		}, []string{"kind"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "casetrail_verdict_cache_hits_total",
			Help: "Remote classifications served from the verdict cache.",
		}),
		auditAppends: factory.NewCounter(prometheus.CounterOpts{
			Name: "casetrail_audit_appends_total",
			Help: "Decision records appended to the audit log.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "casetrail_pipeline_duration_seconds",
			Help:    "End-to-end duration of one pipeline invocation.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) ObserveClassification(riskLevel, source string) {
	m.classifications.WithLabelValues(riskLevel, source).Inc()
}

func (m *Metrics) ObserveOracleFailure(kind string) {
	m.oracleFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveCacheHit() {
	m.cacheHits.Inc()
}

func (m *Metrics) ObserveAuditAppend() {
	m.auditAppends.Inc()
}

func (m *Metrics) ObserveDuration(d time.Duration) {
	m.duration.Observe(d.Seconds())
}
