package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CalculationMetrics records pricing-engine activity: how many hybrid
// calculations ran, how long they took, and how many approvals went through.
type CalculationMetrics struct {
	duration  *prometheus.HistogramVec
	completed *prometheus.CounterVec
	approvals *prometheus.CounterVec
}

// NewCalculationMetrics registers the pricing metrics on the provided registerer.
func NewCalculationMetrics(reg prometheus.Registerer) *CalculationMetrics {
	if reg == nil {
		return &CalculationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "calculation_duration_seconds",
		Help:    "Duration of hybrid price calculations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"currency"})
	completed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calculation_total",
		Help: "Hybrid price calculations by outcome.",
	}, []string{"outcome"})
	approvals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "master_data_approvals_total",
		Help: "Master-data approval transitions by entity type and outcome.",
	}, []string{"entity_type", "outcome"})
	reg.MustRegister(duration, completed, approvals)
	return &CalculationMetrics{
		duration:  duration,
		completed: completed,
		approvals: approvals,
	}
}

// ObserveCalculation records one finished calculation.
func (m *CalculationMetrics) ObserveCalculation(currency string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(currency)).Observe(duration.Seconds())
}

// IncCalculation counts a calculation outcome ("ok", "degraded", "error").
func (m *CalculationMetrics) IncCalculation(outcome string) {
	if m == nil || m.completed == nil {
		return
	}
	m.completed.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncApproval counts an approval attempt for the given entity type.
func (m *CalculationMetrics) IncApproval(entityType, outcome string) {
	if m == nil || m.approvals == nil {
		return
	}
	m.approvals.WithLabelValues(normalizeLabel(entityType), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
