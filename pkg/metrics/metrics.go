package metrics

import (
	"time"
)

// RecordRound records a finished round with its outcome and duration
func (r *Registry) RecordRound(status string, duration time.Duration) {
	r.RoundsTotal.WithLabelValues(status).Inc()
	r.RoundDuration.Observe(duration.Seconds())
}

// RecordReduction records a network reduction
func (r *Registry) RecordReduction(status string, duration time.Duration, logicalLinks, zeroFidelity int) {
	r.ReductionsTotal.WithLabelValues(status).Inc()
	r.ReductionDuration.Observe(duration.Seconds())

	if status == "success" {
		r.LogicalLinksTotal.Observe(float64(logicalLinks))
		r.ZeroFidelityLinks.Add(float64(zeroFidelity))
	}
}

// RecordDecodedInstruction counts one decoded instruction by command name
func (r *Registry) RecordDecodedInstruction(command string) {
	r.DecodedInstructionsTotal.WithLabelValues(command).Inc()
}

// RecordDroppedRecord counts one unrecognized log record
func (r *Registry) RecordDroppedRecord() {
	r.DroppedRecordsTotal.Inc()
}

// RecordCombinedRecords counts records merged into the round timeline
func (r *Registry) RecordCombinedRecords(n int) {
	r.CombinedRecordsTotal.Add(float64(n))
}
