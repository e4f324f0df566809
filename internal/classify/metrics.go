package classify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records pipeline outcomes and completion latency per stage.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	outcomes *prometheus.CounterVec
	calls    *prometheus.HistogramVec
}

// NewMetrics registers the pipeline collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reviewsense",
			Name:      "classifications_total",
			Help:      "Classification requests by terminal state and label.",
		}, []string{"state", "label"}),
		calls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "reviewsense",
			Name:      "completion_duration_seconds",
			Help:      "Completion call latency by pipeline stage and result.",
			Buckets:   []float64{.1, .25, .5, 1, 2, 4, 8},
		}, []string{"stage", "result"}),
	}
	reg.MustRegister(m.outcomes, m.calls)
	return m
}

func (m *Metrics) observeOutcome(state State, label string) {
	if m == nil {
		return
	}
	switch {
	case state != StateDone:
		label = ""
	case label != LabelPositive && label != LabelNegative:
		label = "other"
	}
	m.outcomes.WithLabelValues(state.String(), label).Inc()
}

func (m *Metrics) observeCall(stage Stage, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.calls.WithLabelValues(string(stage), result).Observe(d.Seconds())
}
