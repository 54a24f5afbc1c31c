package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions   *prometheus.CounterVec
	StoreErrors prometheus.Counter
	Degraded    prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "disclosure_ratelimit_decisions_total",
			Help: "Rate limit checks, by scope and outcome",
		}, []string{"scope", "outcome"}),
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "disclosure_ratelimit_store_errors_total",
			Help: "Primary rate limit store failures",
		}),
		Degraded: factory.NewCounter(prometheus.CounterOpts{
			Name: "disclosure_ratelimit_degraded_checks_total",
			Help: "Checks answered by the in-memory fallback",
		}),
	}
}

func (m *Metrics) IncDecision(scope string, allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	m.Decisions.WithLabelValues(scope, outcome).Inc()
}
