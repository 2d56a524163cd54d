package simulation

import (
	"fmt"
	"sync"
	"time"
)

// Event messages written to the event log
func employeesArrivedMessage(department string) string {
	return fmt.Sprintf("Employees of department %s are taking their positions.", department)
}

func employeesLeftMessage(department string) string {
	return fmt.Sprintf("Employees of department %s have left their positions.", department)
}

func arrivalMessage(client, department string) string {
	return fmt.Sprintf("Client %s came to the department %s", client, department)
}

func serviceMessage(client, department string) string {
	return fmt.Sprintf("Client %s is served by the department %s", client, department)
}

func departureMessage(client, department string) string {
	return fmt.Sprintf("Client %s left the department %s", client, department)
}

const (
	bankOpenedMessage = "Bank opened"
	bankClosedMessage = "Bank closed"
)

// TimePoint represents the state of one department at a specific point in time
type TimePoint struct {
	Time       time.Time
	Department string
	InService  int
	Waiting    int
}

// DepartmentStats summarizes a department over a run
type DepartmentStats struct {
	Name          string
	Capacity      int
	Acquisitions  int
	Releases      int
	PeakInService int
	PeakWaiting   int
	TotalWait     time.Duration
	MaxWait       time.Duration
}

// AverageWait returns the mean time a client waited for an employee
func (s DepartmentStats) AverageWait() time.Duration {
	if s.Acquisitions == 0 {
		return 0
	}
	return s.TotalWait / time.Duration(s.Acquisitions)
}

// Timeline collects department state changes in the order they happened
type Timeline struct {
	mu     sync.Mutex
	points []TimePoint
}

func (t *Timeline) record(p TimePoint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.points = append(t.points, p)
}

// Points returns a copy of the recorded time points
func (t *Timeline) Points() []TimePoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TimePoint(nil), t.points...)
}
