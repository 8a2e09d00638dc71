package models

import (
	"fmt"
)

// ConfigurationError means the integration is disabled or has no project
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// ValidationError rejects a request before any extraction happens
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ExtractionFault records a field or line that could not be resolved.
// It is logged and recovered locally, never returned to callers.
type ExtractionFault struct {
	Field  string
	Source string
	Err    error
}

func (e *ExtractionFault) Error() string {
	return fmt.Sprintf("extract %s from %s: %v", e.Field, e.Source, e.Err)
}

func (e *ExtractionFault) Unwrap() error {
	return e.Err
}

// TransportError wraps a failed submission call
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
