package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initReductionMetrics() {
	r.ReductionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "qne_reductions_total",
			Help: "Total number of network reductions performed",
		},
		[]string{"status"},
	)

	r.ReductionDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qne_reduction_duration_seconds",
			Help:    "Network reduction duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)

	r.LogicalLinksTotal = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qne_reduction_logical_links",
			Help:    "Number of logical links produced per reduction",
			Buckets: []float64{1, 3, 6, 10, 15, 21, 28},
		},
	)

	r.ZeroFidelityLinks = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "qne_reduction_zero_fidelity_links_total",
			Help: "Logical links whose best path fidelity was too low to use",
		},
	)
}
