package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// OpeningHours is a cron schedule of the moments the bank opens its doors
type OpeningHours struct {
	expr     string
	schedule cron.Schedule
}

// ParseOpeningHours parses a standard 5-field cron expression or a
// descriptor such as "@daily" or "@every 1h".
func ParseOpeningHours(expr string) (*OpeningHours, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid opening hours %q: %w", expr, err)
	}
	return &OpeningHours{expr: expr, schedule: schedule}, nil
}

// String returns the cron expression
func (h *OpeningHours) String() string {
	return h.expr
}

// Next returns the first opening strictly after from
func (h *OpeningHours) Next(from time.Time) time.Time {
	return h.schedule.Next(from)
}

// Upcoming returns the next n openings after from
func (h *OpeningHours) Upcoming(from time.Time, n int) []time.Time {
	openings := make([]time.Time, 0, n)
	current := from
	for len(openings) < n {
		next := h.schedule.Next(current)
		if next.IsZero() {
			// schedule never fires again
			break
		}
		openings = append(openings, next)
		current = next
	}
	return openings
}

// WaitUntilOpen blocks until the next opening after from, or until ctx is done
func (h *OpeningHours) WaitUntilOpen(ctx context.Context, from time.Time) (time.Time, error) {
	next := h.Next(from)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("opening hours %q never open", h.expr)
	}

	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	select {
	case <-timer.C:
		return next, nil
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	}
}
