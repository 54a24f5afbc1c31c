package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	DocumentsCreated  prometheus.Counter
	SectionSaves      prometheus.Counter
	Reopened          prometheus.Counter
	Completions       prometheus.Counter
	Signatures        *prometheus.CounterVec
	ReadinessRejected *prometheus.CounterVec
	RenderFailures    prometheus.Counter
	OperationLatency  *prometheus.HistogramVec
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DocumentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "disclosure_documents_created_total",
			Help: "Disclosure documents created",
		}),
		SectionSaves: factory.NewCounter(prometheus.CounterOpts{
			Name: "disclosure_section_saves_total",
			Help: "Section auto-saves accepted",
		}),
		Reopened: factory.NewCounter(prometheus.CounterOpts{
			Name: "disclosure_documents_reopened_total",
			Help: "Completed documents moved back to in_progress by an edit",
		}),
		Completions: factory.NewCounter(prometheus.CounterOpts{
			Name: "disclosure_completions_total",
			Help: "Documents marked completed",
		}),
		Signatures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "disclosure_signatures_total",
			Help: "Signatures applied, by signer role and slot",
		}, []string{"role", "slot"}),
		ReadinessRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "disclosure_readiness_rejected_total",
			Help: "Complete or sign attempts refused, by reason",
		}, []string{"reason"}),
		RenderFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "disclosure_render_failures_total",
			Help: "PDF render calls that failed",
		}),
		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "disclosure_operation_duration_seconds",
			Help:    "Latency of disclosure lifecycle operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncSignature(role, slot string) {
	m.Signatures.WithLabelValues(role, slot).Inc()
}

func (m *Metrics) IncReadinessRejected(reason string) {
	m.ReadinessRejected.WithLabelValues(reason).Inc()
}
