package config

import (
	"time"
)

// Roster represents the entire input for the bank simulator
type Roster struct {
	Departments []Department `yaml:"departments"`
	Clients     []Client     `yaml:"clients"`
}

// Department represents a service counter staffed by a fixed number of employees
type Department struct {
	Name      string `yaml:"name"`
	Employees int    `yaml:"employees"`
}

// Client represents a visitor who goes through departments in order
type Client struct {
	Name string `yaml:"name"`
	// Time is the duration of every visit, in milliseconds
	Time        int      `yaml:"time"`
	Priority    int      `yaml:"priority"`
	Departments []string `yaml:"departments"`
}

// ServiceDuration returns how long the client occupies an employee per visit
func (c Client) ServiceDuration() time.Duration {
	return time.Duration(c.Time) * time.Millisecond
}

// Department looks up a department by name
func (r *Roster) Department(name string) (Department, bool) {
	for _, d := range r.Departments {
		if d.Name == name {
			return d, true
		}
	}
	return Department{}, false
}
