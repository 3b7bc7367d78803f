package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCalculationMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCalculationMetrics(reg)

	m.IncCalculation("ok")
	m.IncCalculation("ok")
	m.IncCalculation("degraded")
	m.IncApproval("fab_cost", "approved")
	m.ObserveCalculation("THB", 25*time.Millisecond)

	if got := testutil.ToFloat64(m.completed.WithLabelValues("ok")); got != 2 {
		t.Fatalf("expected 2 ok calculations, got %v", got)
	}
	if got := testutil.ToFloat64(m.completed.WithLabelValues("degraded")); got != 1 {
		t.Fatalf("expected 1 degraded calculation, got %v", got)
	}
	if got := testutil.ToFloat64(m.approvals.WithLabelValues("fab_cost", "approved")); got != 1 {
		t.Fatalf("expected 1 approval, got %v", got)
	}
}

func TestNilRegistererIsSafe(t *testing.T) {
	m := NewCalculationMetrics(nil)
	m.IncCalculation("ok")
	m.IncApproval("", "")
	m.ObserveCalculation("", time.Second)

	var nilMetrics *CalculationMetrics
	nilMetrics.IncCalculation("ok")
}
