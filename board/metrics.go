package board

import (
	"fmt"

	"github.com/nomis52/activityboard/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	opRefresh = "refresh"
	opSignup  = "signup"
	opRemove  = "remove"

	outcomeSuccess  = "success"
	outcomeError    = "error"
	outcomeDeclined = "declined"
	outcomeBusy     = "busy"
)

// Metrics records board operation outcomes. A nil *Metrics records nothing.
type Metrics struct {
	operations metrics.CounterVec
	activities metrics.Gauge
}

// NewMetrics registers the board metrics with registry. Boards created
// with the same Metrics share its counters.
func NewMetrics(registry metrics.Registry) (*Metrics, error) {
	operations, err := registry.NewCounterVec(prometheus.CounterOpts{
		Name: "board_operations_total",
		Help: "Board operations by operation and outcome.",
	}, []string{"operation", "outcome"})
	if err != nil {
		return nil, fmt.Errorf("creating operations counter: %w", err)
	}

	activities, err := registry.NewGauge(prometheus.GaugeOpts{
		Name: "board_activities",
		Help: "Number of activities returned by the last successful fetch.",
	})
	if err != nil {
		return nil, fmt.Errorf("creating activities gauge: %w", err)
	}

	return &Metrics{
		operations: operations,
		activities: activities,
	}, nil
}

func (m *Metrics) observe(operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.With(prometheus.Labels{
		"operation": operation,
		"outcome":   outcome,
	}).Inc()
}

func (m *Metrics) setActivities(n int) {
	if m == nil {
		return
	}
	m.activities.Set(float64(n))
}
