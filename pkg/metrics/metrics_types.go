package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Round Metrics
	RoundsTotal   *prometheus.CounterVec
	RoundDuration prometheus.Histogram
	RoundsRunning prometheus.Gauge

	// Reduction Metrics
	ReductionsTotal   *prometheus.CounterVec
	ReductionDuration prometheus.Histogram
	LogicalLinksTotal prometheus.Histogram
	ZeroFidelityLinks prometheus.Counter

	// Log Pipeline Metrics
	DecodedInstructionsTotal *prometheus.CounterVec
	DroppedRecordsTotal      prometheus.Counter
	CombinedRecordsTotal     prometheus.Counter

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initRoundMetrics()
	r.initReductionMetrics()
	r.initPipelineMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
