package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	Submissions     *prometheus.CounterVec
	Deferred        prometheus.Counter
	Replays         prometheus.Counter
	AuthDismissed   prometheus.Counter
	IdentityFetches *prometheus.CounterVec
	GatewayLatency  prometheus.Histogram
	InFlight        prometheus.Gauge
	ActiveFlows     prometheus.Gauge
}

// NewMetrics creates new prometheus metrics registered with reg.
// A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_submissions_total",
			Help:      "Booking submissions sent to the upstream API, by outcome",
		}, []string{"outcome"}),
		Deferred: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_deferred_total",
			Help:      "Submissions held back until the visitor authenticates",
		}),
		Replays: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_replays_total",
			Help:      "Deferred submissions replayed after authentication",
		}),
		AuthDismissed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_auth_dismissed_total",
			Help:      "Authentication prompts closed without signing in",
		}),
		IdentityFetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_fetches_total",
			Help:      "Session queries, by result",
		}, []string{"result"}),
		GatewayLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "booking_gateway_seconds",
			Help:      "Time taken by upstream booking creation",
			Buckets:   prometheus.DefBuckets,
		}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_progress",
			Help:      "Operations currently showing a progress indicator",
		}),
		ActiveFlows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "booking_flows_active",
			Help:      "Mounted booking flows",
		}),
	}
}
