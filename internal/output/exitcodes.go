// Package output provides structured output and error handling for the joinery CLI.
package output

import (
	"errors"
	"fmt"
)

// Exit codes reported by every command:
// 0 = run completed and verification passed
// 1 = run failed (bad input, transport failure, or merge conflict)
// 2 = run completed but verification produced findings
const (
	ExitSuccess  = 0
	ExitFailure  = 1
	ExitFindings = 2
)

// Kind classifies a failure so callers can tell a flaky network apart
// from a corrupted orchestration file without parsing messages.
type Kind string

const (
	// KindUser marks bad arguments or invalid catalog/project input.
	KindUser Kind = "user"
	// KindTransport marks catalog origin fetch failures.
	KindTransport Kind = "transport"
	// KindConflict marks an orchestration file the merger refuses to touch.
	KindConflict Kind = "conflict"
	// KindFindings marks a completed run whose verification raised findings.
	KindFindings Kind = "findings"
)

// ExitError is an error that carries an exit code and failure kind for the CLI.
type ExitError struct {
	Code    int
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As support.
func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewUserError creates an error for user-caused issues (exit code 1).
// Use for: bad arguments, unknown skills, malformed manifests.
func NewUserError(message string) *ExitError {
	return &ExitError{
		Code:    ExitFailure,
		Kind:    KindUser,
		Message: message,
	}
}

// NewTransportError creates an error for catalog fetch failures (exit code 1).
// The cause is preserved for errors.Is/errors.As inspection.
func NewTransportError(message string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitFailure,
		Kind:    KindTransport,
		Message: message,
		Cause:   cause,
	}
}

// NewConflictError creates an error for orchestration files that cannot be
// merged safely (exit code 1). The target file is left untouched when the
// merger raises this.
func NewConflictError(message string) *ExitError {
	return &ExitError{
		Code:    ExitFailure,
		Kind:    KindConflict,
		Message: message,
	}
}

// NewFindingsError creates the error returned when a run completes but
// verification raises findings (exit code 2).
func NewFindingsError(count int) *ExitError {
	noun := "findings"
	if count == 1 {
		noun = "finding"
	}
	return &ExitError{
		Code:    ExitFindings,
		Kind:    KindFindings,
		Message: fmt.Sprintf("completed with %d %s", count, noun),
	}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil, ExitFailure for non-ExitError errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	// Untyped errors are plain failures
	return ExitFailure
}
