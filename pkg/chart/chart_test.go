package chart_test

import (
	"strings"
	"testing"
	"time"

	"github.com/sherine-k/bankqueue/pkg/chart"
	"github.com/sherine-k/bankqueue/pkg/simulation"
	"github.com/stretchr/testify/assert"
)

func TestGenerateOccupancyChart_Empty(t *testing.T) {
	g := chart.NewGenerator()
	assert.Equal(t, "No data to display", g.GenerateOccupancyChart(nil, nil))
}

func TestGenerateOccupancyChart(t *testing.T) {
	base := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)
	at := func(ms int) time.Time { return base.Add(time.Duration(ms) * time.Millisecond) }

	timeline := []simulation.TimePoint{
		{Time: at(0), Department: "Loans", InService: 0, Waiting: 1},
		{Time: at(0), Department: "Loans", InService: 1, Waiting: 0},
		{Time: at(10), Department: "Loans", InService: 1, Waiting: 2},
		{Time: at(100), Department: "Loans", InService: 0, Waiting: 2},
		{Time: at(100), Department: "Loans", InService: 1, Waiting: 1},
		{Time: at(200), Department: "Loans", InService: 0, Waiting: 1},
		{Time: at(200), Department: "Loans", InService: 1, Waiting: 0},
		{Time: at(300), Department: "Loans", InService: 0, Waiting: 0},
	}
	stats := []simulation.DepartmentStats{
		{Name: "Loans", Capacity: 1},
		{Name: "Cards", Capacity: 2},
	}

	out := chart.NewGenerator().GenerateOccupancyChart(timeline, stats)

	assert.Contains(t, out, "Department Occupancy Over Time")
	assert.Contains(t, out, "Loans (1 employees)")
	assert.Contains(t, out, "Cards (2 employees)")
	assert.Contains(t, out, "Time axis: 300ms")

	lines := strings.Split(out, "\n")
	var loansRows []string
	inLoans := false
	for _, l := range lines {
		if strings.HasPrefix(l, "Loans") {
			inLoans = true
			continue
		}
		if inLoans {
			if strings.HasPrefix(l, "    +") {
				break
			}
			loansRows = append(loansRows, l)
		}
	}

	// two waiting rows, a separator and one employee row
	if assert.Len(t, loansRows, 4) {
		assert.True(t, strings.HasPrefix(loansRows[0], "  2 |"))
		assert.Contains(t, loansRows[0], "*")
		assert.True(t, strings.HasPrefix(loansRows[1], "  1 |"))
		assert.True(t, strings.HasPrefix(loansRows[2], "    -"))
		assert.True(t, strings.HasPrefix(loansRows[3], "  1 |"))
		assert.Contains(t, loansRows[3], "█")
	}

	// Cards never had a client
	assert.NotContains(t, out, "  2 |██")
}

func TestGenerateDepartmentSummary(t *testing.T) {
	g := chart.NewGenerator()

	assert.Contains(t, g.GenerateDepartmentSummary(nil), "No departments!")

	out := g.GenerateDepartmentSummary([]simulation.DepartmentStats{
		{Name: "Loans", Capacity: 1, Acquisitions: 4, PeakInService: 1, PeakWaiting: 3,
			TotalWait: 400 * time.Millisecond, MaxWait: 250 * time.Millisecond},
		{Name: "Cards", Capacity: 2, Acquisitions: 2, PeakInService: 2},
	})

	assert.Contains(t, out, "Department Summary")
	assert.Contains(t, out, "Loans")
	assert.Contains(t, out, "100ms")
	assert.Contains(t, out, "250ms")
	assert.Contains(t, out, "Total Visits: 6")
}

func TestFormatDuration(t *testing.T) {
	tests := map[string]struct {
		in   time.Duration
		want string
	}{
		"Milliseconds": {in: 42 * time.Millisecond, want: "42ms"},
		"Seconds":      {in: 1500 * time.Millisecond, want: "1.5s"},
		"Minutes":      {in: 2*time.Minute + 5*time.Second, want: "2m5s"},
		"Hours":        {in: 3*time.Hour + 20*time.Minute, want: "3h20m"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, chart.FormatDuration(tc.in))
		})
	}
}
