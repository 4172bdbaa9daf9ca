package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRoundMetrics() {
	r.RoundsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "qne_rounds_total",
			Help: "Total number of experiment rounds processed",
		},
		[]string{"status"},
	)

	r.RoundDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qne_round_duration_seconds",
			Help:    "End to end round duration in seconds",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	r.RoundsRunning = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "qne_rounds_running",
			Help: "Number of rounds currently executing",
		},
	)
}
