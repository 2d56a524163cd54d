package simulation

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sherine-k/bankqueue/pkg/config"
	"github.com/sherine-k/bankqueue/pkg/eventlog"
	"github.com/sherine-k/bankqueue/pkg/metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotOpen     = errors.New("bank is not open")
	ErrAlreadyOpen = errors.New("bank is already open")
	ErrClosed      = errors.New("bank is closed")
)

// Clock supplies time to the simulation. Sleep is the service wait of a visit.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Option configures a Bank
type Option func(*Bank)

// WithClock replaces the wall clock used for service waits and wait accounting
func WithClock(c Clock) Option {
	return func(b *Bank) {
		b.clock = c
	}
}

// WithTimeline records every department state change for charting
func WithTimeline() Option {
	return func(b *Bank) {
		b.timeline = &Timeline{}
	}
}

// Bank runs the simulation: it opens the departments, serves every client
// concurrently and closes.
type Bank struct {
	departments []*Department
	byName      map[string]*Department
	clients     []config.Client
	events      *eventlog.Logger
	clock       Clock
	timeline    *Timeline

	mu     sync.Mutex
	open   bool
	closed bool
}

// NewBank creates a bank from a roster. The roster is validated again so a
// client can never be routed to a missing department at dispatch time.
func NewBank(roster *config.Roster, events *eventlog.Logger, opts ...Option) (*Bank, error) {
	if err := config.Validate(roster); err != nil {
		return nil, err
	}

	b := &Bank{
		byName:  make(map[string]*Department, len(roster.Departments)),
		clients: roster.Clients,
		events:  events,
		clock:   realClock{},
	}
	for _, opt := range opts {
		opt(b)
	}

	metrics.ResetDepartmentGauges()
	for _, cfg := range roster.Departments {
		d := NewDepartment(cfg.Name, cfg.Employees)
		d.now = b.clock.Now
		if b.timeline != nil {
			d.onChange = b.timeline.record
		}
		b.departments = append(b.departments, d)
		b.byName[cfg.Name] = d
	}

	return b, nil
}

// Departments returns the departments in configuration order
func (b *Bank) Departments() []*Department {
	return b.departments
}

// Department looks up a department by name
func (b *Bank) Department(name string) (*Department, bool) {
	d, ok := b.byName[name]
	return d, ok
}

// Timeline returns the recorded department states, or nil without WithTimeline
func (b *Bank) Timeline() []TimePoint {
	if b.timeline == nil {
		return nil
	}
	return b.timeline.Points()
}

// Stats returns a snapshot of every department in configuration order
func (b *Bank) Stats() []DepartmentStats {
	stats := make([]DepartmentStats, 0, len(b.departments))
	for _, d := range b.departments {
		stats = append(stats, d.Stats())
	}
	return stats
}

// Run opens the bank, serves every client and closes
func (b *Bank) Run() error {
	if err := b.Open(); err != nil {
		return err
	}
	if err := b.ProcessClients(); err != nil {
		return err
	}
	b.Close()
	return nil
}

// Open announces every department and then the opening. Clients are only
// dispatched once Open has returned.
func (b *Bank) Open() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if b.open {
		return ErrAlreadyOpen
	}
	for _, d := range b.departments {
		b.events.Log(employeesArrivedMessage(d.Name()))
	}
	b.events.Log(bankOpenedMessage)
	b.open = true
	return nil
}

// ProcessClients runs one goroutine per client and returns once every client
// has finished all its visits.
func (b *Bank) ProcessClients() error {
	b.mu.Lock()
	open := b.open
	b.mu.Unlock()
	if !open {
		return ErrNotOpen
	}

	start := b.clock.Now()
	logrus.Infof("dispatching %d client(s) across %d department(s)", len(b.clients), len(b.departments))

	var g errgroup.Group
	for _, c := range b.clients {
		c := c // per-iteration copy (go directive lowered to 1.21 for local toolchain)
		g.Go(func() error {
			return b.serve(c)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	metrics.RunDurationSeconds.Observe(b.clock.Now().Sub(start).Seconds())
	logrus.Infof("all clients served in %s", b.clock.Now().Sub(start))
	return nil
}

// serve walks one client through its departments in order
func (b *Bank) serve(c config.Client) error {
	for _, name := range c.Departments {
		d, ok := b.byName[name]
		if !ok {
			return &config.ReferenceError{Client: c.Name, Department: name}
		}

		logrus.Debugf("client %s waiting for department %s (priority %d)", c.Name, name, c.Priority)
		d.Acquire(c.Priority)

		b.events.Log(arrivalMessage(c.Name, name))
		b.events.Log(serviceMessage(c.Name, name))
		b.clock.Sleep(c.ServiceDuration())
		b.events.Log(departureMessage(c.Name, name))

		d.Release()
	}

	metrics.ClientsCompletedTotal.Inc()
	logrus.Debugf("client %s finished %d visit(s)", c.Name, len(c.Departments))
	return nil
}

// Close marks the bank closed, wakes every blocked client and announces the
// closing. It does not interrupt visits in progress. A closed bank cannot be
// reopened and closing it again is a no-op.
func (b *Bank) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.open = false
	b.closed = true
	b.mu.Unlock()

	for _, d := range b.departments {
		d.wakeAll()
	}
	b.events.Log(bankClosedMessage)
	for _, d := range b.departments {
		b.events.Log(employeesLeftMessage(d.Name()))
	}
}

// String describes the bank's staffing
func (b *Bank) String() string {
	return fmt.Sprintf("bank with %d department(s) and %d client(s)", len(b.departments), len(b.clients))
}
