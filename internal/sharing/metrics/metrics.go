package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SharesCreated      prometheus.Counter
	Views              *prometheus.CounterVec
	FirstViews         prometheus.Counter
	Transitions        *prometheus.CounterVec
	BuyerSignatures    *prometheus.CounterVec
	ExpiredAccess      prometheus.Counter
	NotifyFailures     *prometheus.CounterVec
	ResolutionFailures prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SharesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "disclosure_shares_created_total",
			Help: "Share grants created",
		}),
		Views: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "disclosure_share_views_total",
			Help: "Share views, by access path",
		}, []string{"access_path"}),
		FirstViews: factory.NewCounter(prometheus.CounterOpts{
			Name: "disclosure_share_first_views_total",
			Help: "Share grants viewed for the first time",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "disclosure_share_transitions_total",
			Help: "Share status transitions, by target status",
		}, []string{"status"}),
		BuyerSignatures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "disclosure_buyer_signatures_total",
			Help: "Buyer signatures applied, by slot",
		}, []string{"slot"}),
		ExpiredAccess: factory.NewCounter(prometheus.CounterOpts{
			Name: "disclosure_share_expired_access_total",
			Help: "Accesses refused because the grant expired",
		}),
		NotifyFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "disclosure_share_notify_failures_total",
			Help: "Notifications that could not be delivered, by template",
		}, []string{"template"}),
		ResolutionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "disclosure_share_resolution_failures_total",
			Help: "Share lookups that matched no grant",
		}),
	}
}

func (m *Metrics) IncView(path string, first bool) {
	m.Views.WithLabelValues(path).Inc()
	if first {
		m.FirstViews.Inc()
	}
}

func (m *Metrics) IncTransition(status string) {
	m.Transitions.WithLabelValues(status).Inc()
}

func (m *Metrics) IncBuyerSignature(slot string) {
	m.BuyerSignatures.WithLabelValues(slot).Inc()
}

func (m *Metrics) IncNotifyFailure(template string) {
	m.NotifyFailures.WithLabelValues(template).Inc()
}
