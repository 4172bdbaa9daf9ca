package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	// Verify all metrics are initialized
	if r.RoundsTotal == nil {
		t.Error("RoundsTotal not initialized")
	}
	if r.RoundDuration == nil {
		t.Error("RoundDuration not initialized")
	}
	if r.ReductionsTotal == nil {
		t.Error("ReductionsTotal not initialized")
	}
	if r.DecodedInstructionsTotal == nil {
		t.Error("DecodedInstructionsTotal not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	// Should return the same instance
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordRound(t *testing.T) {
	r := NewRegistry()

	// Record some rounds
	r.RecordRound("succeeded", 2*time.Second)
	r.RecordRound("succeeded", 3*time.Second)
	r.RecordRound("failed", time.Second)

	counter, err := r.RoundsTotal.GetMetricWithLabelValues("succeeded")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2 {
		t.Errorf("Counter value = %v, want 2", metric.Counter.GetValue())
	}
}

func TestRecordReduction(t *testing.T) {
	r := NewRegistry()

	r.RecordReduction("success", 5*time.Millisecond, 3, 1)
	r.RecordReduction("error", time.Millisecond, 0, 0)

	counter, err := r.ReductionsTotal.GetMetricWithLabelValues("success")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 1 {
		t.Errorf("Counter value = %v, want 1", metric.Counter.GetValue())
	}

	var zeroed dto.Metric
	if err := r.ZeroFidelityLinks.Write(&zeroed); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if zeroed.Counter.GetValue() != 1 {
		t.Errorf("ZeroFidelityLinks = %v, want 1", zeroed.Counter.GetValue())
	}
}

func TestRecordDecodedInstruction(t *testing.T) {
	r := NewRegistry()

	r.RecordDecodedInstruction("apply-gate")
	r.RecordDecodedInstruction("apply-gate")
	r.RecordDecodedInstruction("user-message")

	counter, err := r.DecodedInstructionsTotal.GetMetricWithLabelValues("apply-gate")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2 {
		t.Errorf("Counter value = %v, want 2", metric.Counter.GetValue())
	}
}
