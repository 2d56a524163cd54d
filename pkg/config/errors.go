package config

import (
	"errors"
	"fmt"
)

// ConfigurationError reports malformed or missing input at a given path
// such as "clients[2].time".
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error at %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ReferenceError reports a client routed to a department that does not exist.
type ReferenceError struct {
	Client     string
	Department string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("client %q references unknown department %q", e.Client, e.Department)
}

var (
	ErrSyntax              = errors.New("malformed document")
	ErrNotObject           = errors.New("root is not an object")
	ErrMissingField        = errors.New("missing required field")
	ErrWrongType           = errors.New("wrong type")
	ErrNegativeValue       = errors.New("value must not be negative")
	ErrDuplicateDepartment = errors.New("duplicate department name")
)

func configErr(path string, err error) error {
	return &ConfigurationError{Path: path, Err: err}
}
