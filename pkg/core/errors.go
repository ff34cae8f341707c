package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Errors reported by driver implementations at the session boundary.
var (
	ErrNotFound = errors.New("element not found")
	ErrStale    = errors.New("stale element reference")
	ErrNoDialog = errors.New("no dialog present")
)

// ExecutionError represents a structured error with category and details
type ExecutionError struct {
	Category ErrorCategory
	Code     string        // Machine-readable code: step_timeout, checkpoint_failed, etc.
	Message  string        // Human-readable message
	Step     string        // Failing step or checkpoint name
	Elapsed  time.Duration // Time spent waiting before the failure
	Address  string        // Last known browser address
	Details  map[string]interface{}
	Cause    error // Underlying error
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Step != "" {
		fmt.Fprintf(&b, ": %s", e.Step)
	}
	if e.Elapsed > 0 {
		fmt.Fprintf(&b, " after %s", e.Elapsed.Round(time.Millisecond))
	}
	if e.Address != "" {
		fmt.Fprintf(&b, " (address: %s)", e.Address)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is matches any ExecutionError with the same code, so copies made by the
// With* helpers still compare equal to the predefined errors.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	return ok && t.Code != "" && t.Code == e.Code
}

func (e *ExecutionError) clone() *ExecutionError {
	c := *e
	return &c
}

// WithCause returns a copy of the error with the given cause
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithMessage returns a copy of the error with a custom message
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	c := e.clone()
	c.Message = msg
	return c
}

// At returns a copy of the error located at a step, with the time spent
// waiting and the last known address.
func (e *ExecutionError) At(step string, elapsed time.Duration, address string) *ExecutionError {
	c := e.clone()
	c.Step = step
	c.Elapsed = elapsed
	c.Address = address
	return c
}

// WithDetails returns a copy of the error with additional details
func (e *ExecutionError) WithDetails(details map[string]interface{}) *ExecutionError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	c := e.clone()
	c.Details = merged
	return c
}

// Predefined errors
var (
	ErrLaunch = &ExecutionError{
		Category: ErrCategoryLaunch,
		Code:     "launch_failed",
		Message:  "browser session could not be started",
	}
	ErrStepTimeout = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "step_timeout",
		Message:  "required step timed out",
	}
	ErrAssertionFailed = &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "checkpoint_failed",
		Message:  "checkpoint failed",
	}
	ErrActionFailed = &ExecutionError{
		Category: ErrCategoryAction,
		Code:     "action_failed",
		Message:  "action failed",
	}
	ErrStaleElement = &ExecutionError{
		Category: ErrCategoryAction,
		Code:     "stale_element",
		Message:  "element went stale before the action ran",
	}
	ErrCancelled = &ExecutionError{
		Category: ErrCategoryCancelled,
		Code:     "cancelled",
		Message:  "run cancelled",
	}
	ErrInvalidScenario = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_scenario",
		Message:  "invalid scenario",
	}
	ErrMissingCredential = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "missing_credential",
		Message:  "credential not configured",
	}
)

// NewExecutionError creates a new ExecutionError with the given parameters
func NewExecutionError(category ErrorCategory, code, message string) *ExecutionError {
	return &ExecutionError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// IsCategory reports whether err wraps an ExecutionError of category c.
func IsCategory(err error, c ErrorCategory) bool {
	var e *ExecutionError
	return errors.As(err, &e) && e.Category == c
}

// CategoryOf returns the category of the outermost ExecutionError in err.
func CategoryOf(err error) ErrorCategory {
	var e *ExecutionError
	if errors.As(err, &e) {
		return e.Category
	}
	if err != nil {
		return ErrCategoryAction
	}
	return ErrCategoryNone
}
