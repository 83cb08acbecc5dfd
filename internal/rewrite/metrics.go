package rewrite

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts rewrite activity.
type Metrics struct {
	joins        *prometheus.CounterVec
	passes       prometheus.Counter
	defects      prometheus.Counter
	passDuration prometheus.Histogram
}

// NewMetrics creates rewrite metrics registered on r. A nil registerer
// leaves them unregistered.
func NewMetrics(r prometheus.Registerer) *Metrics {
	return &Metrics{
		joins: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Name: "linjoin_rewrite_joins_total",
			Help: "Join sites classified, by verdict and rejecting rule.",
		}, []string{"verdict", "rule"}),
		passes: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "linjoin_rewrite_passes_total",
			Help: "Completed rewrite passes.",
		}),
		defects: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "linjoin_rewrite_defects_total",
			Help: "Rewrite passes aborted by a malformed plan.",
		}),
		passDuration: promauto.With(r).NewHistogram(prometheus.HistogramOpts{
			Name:    "linjoin_rewrite_pass_duration_seconds",
			Help:    "Time spent in one rewrite pass.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
}

func (m *Metrics) observeJoin(linear bool, rule string) {
	verdict := "materialize"
	if linear {
		verdict = "linear"
	}
	m.joins.WithLabelValues(verdict, rule).Inc()
}
