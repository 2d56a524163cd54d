package simulation

import (
	"container/heap"
	"sync"
	"time"

	"github.com/sherine-k/bankqueue/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// Department is a service counter with a fixed number of employees. It is the
// capacity gate for its clients: at most Capacity() clients hold a slot at a
// time, and blocked clients are admitted highest priority first, then in
// arrival order.
type Department struct {
	name     string
	capacity int

	mu        sync.Mutex
	cond      *sync.Cond
	available int
	waiters   waitQueue
	nextSeq   uint64
	closed    bool
	stats     DepartmentStats

	now      func() time.Time
	onChange func(TimePoint)
}

// NewDepartment creates a department with all employees free
func NewDepartment(name string, employees int) *Department {
	if employees < 0 {
		employees = 0
	}
	d := &Department{
		name:      name,
		capacity:  employees,
		available: employees,
		now:       time.Now,
		stats:     DepartmentStats{Name: name, Capacity: employees},
	}
	d.cond = sync.NewCond(&d.mu)
	d.publish()
	return d
}

// Name returns the department name
func (d *Department) Name() string {
	return d.name
}

// Capacity returns the total number of employees
func (d *Department) Capacity() int {
	return d.capacity
}

// Available returns the number of free employees
func (d *Department) Available() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.available
}

// Waiting returns the number of clients blocked in Acquire
func (d *Department) Waiting() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.waiters)
}

// Stats returns a snapshot of the department counters
func (d *Department) Stats() DepartmentStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Acquire blocks until an employee is free and no waiter ranks ahead of the
// caller, then takes the employee. A department with no employees never
// admits anyone.
func (d *Department) Acquire(priority int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	since := d.now()
	if d.available == 0 || len(d.waiters) > 0 {
		w := &waiter{priority: priority, seq: d.nextSeq}
		d.nextSeq++
		heap.Push(&d.waiters, w)
		if len(d.waiters) > d.stats.PeakWaiting {
			d.stats.PeakWaiting = len(d.waiters)
		}
		d.changed()

		for d.available == 0 || d.waiters[0] != w {
			d.cond.Wait()
			if d.closed && d.available == 0 {
				logrus.Debugf("department %s: woken after close with no free employee, still waiting", d.name)
			}
		}
		heap.Pop(&d.waiters)
	}
	d.available--

	wait := d.now().Sub(since)
	d.stats.Acquisitions++
	d.stats.TotalWait += wait
	if wait > d.stats.MaxWait {
		d.stats.MaxWait = wait
	}
	if inService := d.capacity - d.available; inService > d.stats.PeakInService {
		d.stats.PeakInService = inService
	}
	metrics.DepartmentVisitsTotal.WithLabelValues(d.name).Inc()
	metrics.DepartmentWaitSeconds.WithLabelValues(d.name).Observe(wait.Seconds())
	d.changed()

	// the next waiter in line may be admissible too
	if d.available > 0 && len(d.waiters) > 0 {
		d.cond.Broadcast()
	}
}

// Release frees the employee taken by a matching Acquire and wakes the waiters.
func (d *Department) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.available >= d.capacity {
		logrus.Warnf("department %s: release without matching acquire ignored", d.name)
		return
	}
	d.available++
	d.stats.Releases++
	d.changed()
	d.cond.Broadcast()
}

// wakeAll marks the department closed and wakes every blocked client. Clients
// re-check capacity and keep waiting when none is free.
func (d *Department) wakeAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	if n := len(d.waiters); n > 0 {
		logrus.Warnf("department %s closing with %d client(s) still waiting", d.name, n)
	}
	d.cond.Broadcast()
}

// changed publishes the current state. Callers hold d.mu.
func (d *Department) changed() {
	d.publish()
	if d.onChange != nil {
		d.onChange(TimePoint{
			Time:       d.now(),
			Department: d.name,
			InService:  d.capacity - d.available,
			Waiting:    len(d.waiters),
		})
	}
}

func (d *Department) publish() {
	metrics.DepartmentAvailable.WithLabelValues(d.name).Set(float64(d.available))
	metrics.DepartmentInService.WithLabelValues(d.name).Set(float64(d.capacity - d.available))
	metrics.DepartmentWaiting.WithLabelValues(d.name).Set(float64(len(d.waiters)))
}

// waiter is a client blocked in Acquire
type waiter struct {
	priority int
	seq      uint64
	index    int
}

// waitQueue implements heap.Interface; the highest priority, earliest
// arrival is at the root.
type waitQueue []*waiter

func (q waitQueue) Len() int { return len(q) }

func (q waitQueue) Less(i, j int) bool {
	if q[i].priority == q[j].priority {
		return q[i].seq < q[j].seq
	}
	return q[i].priority > q[j].priority
}

func (q waitQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *waitQueue) Push(x any) {
	w := x.(*waiter)
	w.index = len(*q)
	*q = append(*q, w)
}

func (q *waitQueue) Pop() any {
	old := *q
	n := len(old)
	w := old[n-1]
	old[n-1] = nil
	w.index = -1
	*q = old[:n-1]
	return w
}
