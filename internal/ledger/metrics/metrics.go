package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the ledger side channel. None of these failures reach the
// primary request.
type Metrics struct {
	Tracked             *prometheus.CounterVec
	Dropped             *prometheus.CounterVec
	PersistFailures     prometheus.Counter
	SinkFailures        prometheus.Counter
	CircuitBreakerState prometheus.Gauge
	QueueDepth          prometheus.Gauge
}

// New registers the ledger metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Tracked: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "disclosure_ledger_events_tracked_total",
			Help: "Ledger events persisted, by event type",
		}, []string{"event_type"}),
		Dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "disclosure_ledger_events_dropped_total",
			Help: "Ledger events dropped before persistence, by reason",
		}, []string{"reason"}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "disclosure_ledger_persist_failures_total",
			Help: "Ledger store append failures",
		}),
		SinkFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "disclosure_ledger_sink_failures_total",
			Help: "Ledger events persisted but not mirrored to the sink",
		}),
		CircuitBreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "disclosure_ledger_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "disclosure_ledger_queue_depth",
			Help: "Events waiting in the dispatcher buffer",
		}),
	}
}

func (m *Metrics) IncTracked(eventType string) {
	m.Tracked.WithLabelValues(eventType).Inc()
}

func (m *Metrics) IncDropped(reason string) {
	m.Dropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncPersistFailures() {
	m.PersistFailures.Inc()
}

func (m *Metrics) IncSinkFailures() {
	m.SinkFailures.Inc()
}

// SetCircuitBreakerState sets the circuit breaker state gauge.
func (m *Metrics) SetCircuitBreakerState(open bool) {
	if open {
		m.CircuitBreakerState.Set(1)
	} else {
		m.CircuitBreakerState.Set(0)
	}
}

func (m *Metrics) SetQueueDepth(n int) {
	m.QueueDepth.Set(float64(n))
}
