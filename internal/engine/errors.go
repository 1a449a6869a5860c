package engine

import (
	"errors"
	"fmt"
	"strings"
)

// OrchestrationError represents a failure to fully bind a target function's
// parameters. It is the only hard failure the engine itself produces:
// analysis failures are recovered internally and the target's own errors
// propagate unchanged.
type OrchestrationError struct {
	// Code identifies the error category.
	Code OrchestrationErrorCode

	// Function is the target callable's identity.
	Function string

	// Params names the offending parameter(s).
	Params []string

	// Message is a human-readable description.
	Message string
}

// OrchestrationErrorCode categorizes orchestration errors.
type OrchestrationErrorCode string

const (
	// ErrCodeUnresolvedParameter indicates a required parameter could not
	// be resolved by matching, context lookup, or defaults.
	ErrCodeUnresolvedParameter OrchestrationErrorCode = "UNRESOLVED_PARAMETER"

	// ErrCodeTypeMismatch indicates a name-matched value violates the
	// parameter's declared type.
	ErrCodeTypeMismatch OrchestrationErrorCode = "TYPE_MISMATCH"
)

// Error implements the error interface.
func (e *OrchestrationError) Error() string {
	if len(e.Params) > 0 {
		return fmt.Sprintf("%s: %s (function=%s, params=%s)",
			e.Code, e.Message, e.Function, strings.Join(e.Params, ","))
	}
	return fmt.Sprintf("%s: %s (function=%s)", e.Code, e.Message, e.Function)
}

// IsUnresolvedParameterError returns true if the error is an unresolved
// required parameter failure. Uses errors.As to handle wrapped errors.
func IsUnresolvedParameterError(err error) bool {
	var oe *OrchestrationError
	if errors.As(err, &oe) {
		return oe.Code == ErrCodeUnresolvedParameter
	}
	return false
}

// IsTypeMismatchError returns true if the error is a declared-type
// violation on a name-matched binding.
func IsTypeMismatchError(err error) bool {
	var oe *OrchestrationError
	if errors.As(err, &oe) {
		return oe.Code == ErrCodeTypeMismatch
	}
	return false
}

// NewUnresolvedError creates an OrchestrationError for required parameters
// that no source could supply.
func NewUnresolvedError(function string, params []string) *OrchestrationError {
	return &OrchestrationError{
		Code:     ErrCodeUnresolvedParameter,
		Function: function,
		Params:   params,
		Message:  "required parameter(s) could not be resolved",
	}
}

// NewTypeMismatchError creates an OrchestrationError for a name-matched
// value whose runtime kind violates the declared parameter type.
func NewTypeMismatchError(function, param string, declared, got string) *OrchestrationError {
	return &OrchestrationError{
		Code:     ErrCodeTypeMismatch,
		Function: function,
		Params:   []string{param},
		Message:  fmt.Sprintf("value of kind %s does not satisfy declared type %s", got, declared),
	}
}
