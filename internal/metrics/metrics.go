// Package metrics holds the prometheus collectors of the service
package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type Metrics struct {
	AuthEvents  *prometheus.CounterVec
	SideEffects *prometheus.CounterVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AuthEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_events_total",
				Help: "Total number of credential operations by event and outcome",
			},
			[]string{"event", "outcome"},
		),
		SideEffects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_side_effects_total",
				Help: "Total number of background jobs (mail, uploads) by job and outcome",
			},
			[]string{"job", "outcome"},
		),
	}

	reg.MustRegister(m.AuthEvents, m.SideEffects)

	return m
}

// Event records the outcome of an operation. Safe to call on a nil *Metrics
func (m *Metrics) Event(event string, err error) {
	if m == nil {
		return
	}

	m.AuthEvents.WithLabelValues(event, outcome(err)).Inc()
}

// Job records the outcome of a background job. Safe to call on a nil *Metrics
func (m *Metrics) Job(job string, err error) {
	if m == nil {
		return
	}

	m.SideEffects.WithLabelValues(job, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}

	return OutcomeSuccess
}
