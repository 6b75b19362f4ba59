package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics records courier assignment and delivery outcomes.
type DispatchMetrics struct {
	assignments *prometheus.CounterVec
	decisions   *prometheus.CounterVec
	deliveries  prometheus.Counter
}

// NewDispatchMetrics registers the dispatcher metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_assignments_total",
		Help: "Courier assignments by mode.",
	}, []string{"mode"})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_decisions_total",
		Help: "Courier accept/reject decisions.",
	}, []string{"decision"})
	deliveries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_deliveries_total",
		Help: "Completed deliveries.",
	})
	reg.MustRegister(assignments, decisions, deliveries)
	return &DispatchMetrics{
		assignments: assignments,
		decisions:   decisions,
		deliveries:  deliveries,
	}
}

// IncAssignment counts one assignment in the given mode (bulk, item, reassign).
func (d *DispatchMetrics) IncAssignment(mode string) {
	if d == nil || d.assignments == nil {
		return
	}
	d.assignments.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncDecision counts one courier decision (approved, rejected).
func (d *DispatchMetrics) IncDecision(decision string) {
	if d == nil || d.decisions == nil {
		return
	}
	d.decisions.WithLabelValues(normalizeLabel(decision)).Inc()
}

// IncDelivery counts one completed delivery.
func (d *DispatchMetrics) IncDelivery() {
	if d == nil || d.deliveries == nil {
		return
	}
	d.deliveries.Inc()
}
