package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Reassignment outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeLocked  = "locked"
	OutcomeInvalid = "invalid"
	OutcomeBusy    = "busy"
	OutcomeError   = "error"
)

// AssignmentMetrics tracks the assignment lifecycle endpoints.
type AssignmentMetrics struct {
	reassignments *prometheus.CounterVec
	reassignTime  prometheus.Histogram
	feedback      prometheus.Counter
	masked        *prometheus.CounterVec
}

func NewAssignmentMetrics(reg prometheus.Registerer) *AssignmentMetrics {
	if reg == nil {
		return &AssignmentMetrics{}
	}
	reassignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "assignments",
		Name:      "reassign_total",
		Help:      "Reassignment attempts by outcome.",
	}, []string{"outcome"})
	reassignTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "assignments",
		Name:      "reassign_duration_seconds",
		Help:      "Time spent persisting a reassignment.",
		Buckets:   prometheus.DefBuckets,
	})
	feedback := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "assignments",
		Name:      "feedback_recorded_total",
		Help:      "Feedback entries appended to assignment logs.",
	})
	masked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "candidates",
		Name:      "mobile_rendered_total",
		Help:      "Candidate mobiles rendered in search results by visibility.",
	}, []string{"visibility"})
	reg.MustRegister(reassignments, reassignTime, feedback, masked)
	return &AssignmentMetrics{
		reassignments: reassignments,
		reassignTime:  reassignTime,
		feedback:      feedback,
		masked:        masked,
	}
}

func (m *AssignmentMetrics) IncReassign(outcome string) {
	if m == nil || m.reassignments == nil {
		return
	}
	m.reassignments.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *AssignmentMetrics) ObserveReassign(duration time.Duration) {
	if m == nil || m.reassignTime == nil {
		return
	}
	m.reassignTime.Observe(duration.Seconds())
}

func (m *AssignmentMetrics) IncFeedback() {
	if m == nil || m.feedback == nil {
		return
	}
	m.feedback.Inc()
}

// IncMobileRendered counts one rendered mobile as "masked" or "visible".
func (m *AssignmentMetrics) IncMobileRendered(masked bool) {
	if m == nil || m.masked == nil {
		return
	}
	label := "visible"
	if masked {
		label = "masked"
	}
	m.masked.WithLabelValues(label).Inc()
}
