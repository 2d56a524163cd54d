package chart

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sherine-k/bankqueue/pkg/simulation"
)

const (
	chartWidth = 80
)

var titleStyle = lipgloss.NewStyle().Bold(true)

// Generator generates ASCII charts
type Generator struct {
	width int
}

// NewGenerator creates a new chart generator
func NewGenerator() *Generator {
	return &Generator{
		width: chartWidth,
	}
}

// column is the busiest state of a department within one chart column
type column struct {
	inService int
	waiting   int
}

// GenerateOccupancyChart generates one ASCII chart per department showing
// clients in service (up to the employee count) and clients waiting over time
func (g *Generator) GenerateOccupancyChart(timeline []simulation.TimePoint, stats []simulation.DepartmentStats) string {
	if len(timeline) == 0 {
		return "No data to display"
	}

	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(titleStyle.Render("Department Occupancy Over Time"))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n")

	start, end := timeline[0].Time, timeline[0].Time
	for _, p := range timeline {
		if p.Time.Before(start) {
			start = p.Time
		}
		if p.Time.After(end) {
			end = p.Time
		}
	}

	for _, s := range stats {
		columns := g.sample(timeline, s.Name, start, end)
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s (%d employees)\n", s.Name, s.Capacity))
		g.plot(&sb, columns, s.Capacity)
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Time axis: %s over %d columns\n", FormatDuration(end.Sub(start)), g.columns()))
	sb.WriteString("Legend:\n")
	sb.WriteString("    █ - Client in service\n")
	sb.WriteString("    * - Client waiting for an employee\n")
	sb.WriteString("\n")

	return sb.String()
}

func (g *Generator) columns() int {
	return g.width - 6
}

// sample reduces one department's time points to the chart columns, keeping
// the maximum reached inside each column
func (g *Generator) sample(timeline []simulation.TimePoint, department string, start, end time.Time) []column {
	points := make([]simulation.TimePoint, 0)
	for _, p := range timeline {
		if p.Department == department {
			points = append(points, p)
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})

	cols := g.columns()
	total := end.Sub(start)
	out := make([]column, cols)
	var current column
	idx := 0

	for x := 0; x < cols; x++ {
		bucketEnd := end.Add(time.Nanosecond)
		if x < cols-1 && total > 0 {
			bucketEnd = start.Add(time.Duration(float64(total) * float64(x+1) / float64(cols)))
		}

		peak := current
		for idx < len(points) && points[idx].Time.Before(bucketEnd) {
			current = column{inService: points[idx].InService, waiting: points[idx].Waiting}
			peak.inService = max(peak.inService, current.inService)
			peak.waiting = max(peak.waiting, current.waiting)
			idx++
		}
		out[x] = peak
	}
	return out
}

func (g *Generator) plot(sb *strings.Builder, columns []column, capacity int) {
	maxWaiting := 0
	for _, c := range columns {
		maxWaiting = max(maxWaiting, c.waiting)
	}

	// waiting rows
	for row := maxWaiting; row >= 1; row-- {
		sb.WriteString(fmt.Sprintf("%3d |", row))
		for _, c := range columns {
			if c.waiting >= row {
				sb.WriteString("*")
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}

	if maxWaiting > 0 {
		sb.WriteString("    ")
		sb.WriteString(strings.Repeat("-", len(columns)+1))
		sb.WriteString("\n")
	}

	// employee rows
	for row := capacity; row >= 1; row-- {
		sb.WriteString(fmt.Sprintf("%3d |", row))
		for _, c := range columns {
			if c.inService >= row {
				sb.WriteString("█")
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("    +")
	sb.WriteString(strings.Repeat("-", len(columns)))
	sb.WriteString("\n")
}

// GenerateDepartmentSummary generates a summary of every department
func (g *Generator) GenerateDepartmentSummary(stats []simulation.DepartmentStats) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(titleStyle.Render("Department Summary"))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	if len(stats) == 0 {
		sb.WriteString("No departments!\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("%-20s %9s %7s %6s %11s %9s %9s\n",
		"Department", "Employees", "Visits", "Peak", "PeakWaiting", "AvgWait", "MaxWait"))

	totalVisits := 0
	for _, s := range stats {
		totalVisits += s.Acquisitions
		sb.WriteString(fmt.Sprintf("%-20s %9d %7d %6d %11d %9s %9s\n",
			s.Name,
			s.Capacity,
			s.Acquisitions,
			s.PeakInService,
			s.PeakWaiting,
			FormatDuration(s.AverageWait()),
			FormatDuration(s.MaxWait)))
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total Visits: %d\n", totalVisits))
	sb.WriteString("\n")

	return sb.String()
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
