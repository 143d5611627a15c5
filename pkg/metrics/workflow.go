package metrics

import "github.com/prometheus/client_golang/prometheus"

// WorkflowMetrics counts order-lifecycle operations.
type WorkflowMetrics struct {
	reconciles       *prometheus.CounterVec
	approvalsPending prometheus.Gauge
	approvalsStale   prometheus.Counter
}

// NewWorkflowMetrics registers the workflow counters on the provided registerer.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	reconciles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_reconciles_total",
		Help: "Vehicle ledger reconciles by movement type and outcome.",
	}, []string{"movement_type", "outcome"})
	approvalsPending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "approvals_pending",
		Help: "Approval requests currently awaiting resolution.",
	})
	approvalsStale := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "approvals_stale_total",
		Help: "Approval requests flagged by the reminder job as overdue.",
	})
	reg.MustRegister(reconciles, approvalsPending, approvalsStale)
	return &WorkflowMetrics{
		reconciles:       reconciles,
		approvalsPending: approvalsPending,
		approvalsStale:   approvalsStale,
	}
}

// IncReconcile counts one reconcile attempt.
func (w *WorkflowMetrics) IncReconcile(movementType, outcome string) {
	if w == nil || w.reconciles == nil {
		return
	}
	w.reconciles.WithLabelValues(normalizeLabel(movementType), normalizeLabel(outcome)).Inc()
}

// SetPendingApprovals records the current pending approval count.
func (w *WorkflowMetrics) SetPendingApprovals(n float64) {
	if w == nil || w.approvalsPending == nil {
		return
	}
	w.approvalsPending.Set(n)
}

// IncStaleApprovals counts approvals flagged as overdue.
func (w *WorkflowMetrics) IncStaleApprovals(n int) {
	if w == nil || w.approvalsStale == nil {
		return
	}
	w.approvalsStale.Add(float64(n))
}
