// Package metrics provides Prometheus collectors for the bank simulator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for the simulator
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// =============================================================================
// DEPARTMENT METRICS
// =============================================================================

// DepartmentAvailable tracks free employees per department.
var DepartmentAvailable = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "bank",
	Subsystem: "department",
	Name:      "available_employees",
	Help:      "Employees currently free to serve a client",
}, []string{"department"})

// DepartmentInService tracks clients currently being served.
var DepartmentInService = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "bank",
	Subsystem: "department",
	Name:      "clients_in_service",
	Help:      "Clients currently being served",
}, []string{"department"})

// DepartmentWaiting tracks clients blocked on a department.
var DepartmentWaiting = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "bank",
	Subsystem: "department",
	Name:      "clients_waiting",
	Help:      "Clients waiting for a free employee",
}, []string{"department"})

// DepartmentVisitsTotal counts admitted visits.
var DepartmentVisitsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bank",
	Subsystem: "department",
	Name:      "visits_total",
	Help:      "Visits admitted by the department",
}, []string{"department"})

// DepartmentWaitSeconds tracks how long clients wait for an employee.
var DepartmentWaitSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "bank",
	Subsystem: "department",
	Name:      "wait_seconds",
	Help:      "Time a client waited before being served",
	Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
}, []string{"department"})

// =============================================================================
// RUN METRICS
// =============================================================================

// ClientsCompletedTotal counts clients that finished all their visits.
var ClientsCompletedTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "bank",
	Name:      "clients_completed_total",
	Help:      "Clients that finished every visit",
})

// RunDurationSeconds tracks the wall time of dispatching all clients.
var RunDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "bank",
	Name:      "run_duration_seconds",
	Help:      "Time taken to serve every client",
	Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
})

// ResetDepartmentGauges clears per-department gauges before a new run.
func ResetDepartmentGauges() {
	DepartmentAvailable.Reset()
	DepartmentInService.Reset()
	DepartmentWaiting.Reset()
}
