package core

import (
	"fmt"

	"github.com/huangsam/chartwire/schema"
)

// RetrievalError reports a failed host retrieval for one data source.
type RetrievalError struct {
	Mode   schema.SourceMode
	Target string // query expression or procedure name
	Err    error
}

// Error implements error.
func (e *RetrievalError) Error() string {
	if e.Mode == schema.ProcedureMode {
		return fmt.Sprintf("error retrieving procedure data %s: %v", e.Target, e.Err)
	}
	return fmt.Sprintf("error retrieving data via query path (%s): %v", e.Target, e.Err)
}

// Unwrap returns the underlying host error.
func (e *RetrievalError) Unwrap() error { return e.Err }

// ConfigurationError carries the validator message for a chart that must not be drawn.
type ConfigurationError struct {
	Message string
}

// Error implements error.
func (e *ConfigurationError) Error() string { return e.Message }
