package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPipelineMetrics() {
	r.DecodedInstructionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "qne_decoded_instructions_total",
			Help: "Total number of instructions decoded from simulator logs",
		},
		[]string{"command"},
	)

	r.DroppedRecordsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "qne_dropped_log_records_total",
			Help: "Log records dropped because their tag was not recognized",
		},
	)

	r.CombinedRecordsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "qne_combined_log_records_total",
			Help: "Log records merged into the unified per round timeline",
		},
	)
}
