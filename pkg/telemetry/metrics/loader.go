package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LoaderMetrics tracks metrics related to rule loading and compilation.
//
// Metrics:
//   - saturn_rules_loaded_total: Total rules compiled and accepted
//   - saturn_rules_rejected_total: Total rules rejected, by reason
//   - saturn_rules_active: Currently registered rules, by table type
//   - saturn_compile_duration_seconds: Rule compilation duration
type LoaderMetrics struct {
	registry *prometheus.Registry

	// Rules compiled and accepted into the registry
	loadedTotal prometheus.Counter

	// Rules rejected, labeled by rejection reason
	rejectedTotal *prometheus.CounterVec

	// Currently registered rules per table type
	activeRules *prometheus.GaugeVec

	// Compilation duration histogram
	compileDuration prometheus.Histogram
}

// NewLoaderMetrics creates and registers loader metrics with the provided
// registry. If registry is nil, a fresh registry is created.
func NewLoaderMetrics(registry *prometheus.Registry) *LoaderMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	lm := &LoaderMetrics{
		registry: registry,

		loadedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "saturn",
				Name:      "rules_loaded_total",
				Help:      "Total number of rules compiled and accepted",
			},
		),

		rejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "saturn",
				Name:      "rules_rejected_total",
				Help:      "Total number of rules rejected",
			},
			[]string{"reason"},
		),

		activeRules: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "saturn",
				Name:      "rules_active",
				Help:      "Number of rules currently registered",
			},
			[]string{"table_type"},
		),

		compileDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "saturn",
				Name:      "compile_duration_seconds",
				Help:      "Duration of rule compilation in seconds",
				// Compiling a single document should be fast (< 10ms)
				Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14), // 10µs to 80ms
			},
		),
	}

	registry.MustRegister(
		lm.loadedTotal,
		lm.rejectedTotal,
		lm.activeRules,
		lm.compileDuration,
	)

	return lm
}

// RecordLoaded records a rule that compiled and passed validation.
func (lm *LoaderMetrics) RecordLoaded(duration time.Duration) {
	lm.loadedTotal.Inc()
	lm.compileDuration.Observe(duration.Seconds())
}

// RecordRejected records a rejected rule.
//
// Reason should be a small closed set of values ("syntax", "structural",
// "reference", "io") to keep cardinality bounded.
func (lm *LoaderMetrics) RecordRejected(reason string) {
	lm.rejectedTotal.WithLabelValues(reason).Inc()
}

// SetActiveRules records the number of registered rules for a table type.
func (lm *LoaderMetrics) SetActiveRules(tableType string, count int) {
	lm.activeRules.WithLabelValues(tableType).Set(float64(count))
}
