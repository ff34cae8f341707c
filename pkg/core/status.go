package core

// StepStatus represents the execution status of a step or checkpoint
type StepStatus int

const (
	StatusPending StepStatus = iota // Not yet started
	StatusRunning                   // Currently executing
	StatusPassed                    // Completed successfully
	StatusFailed                    // Required step or checkpoint not satisfied
	StatusErrored                   // Unexpected error (driver, stale element, cancellation)
	StatusSkipped                   // Optional step whose condition never held
)

// String returns the string representation of StepStatus
func (s StepStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusErrored:
		return "errored"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in reports.
func (s StepStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsTerminal returns true if the status is a final state
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusErrored, StatusSkipped:
		return true
	default:
		return false
	}
}

// IsSuccess returns true if the status does not fail the scenario (passed or skipped)
func (s StepStatus) IsSuccess() bool {
	return s == StatusPassed || s == StatusSkipped
}

// Outcome is the overall result of one scenario run.
type Outcome string

// Outcomes
const (
	OutcomePassed Outcome = "passed"
	OutcomeFailed Outcome = "failed"
)

// LogLevel tags entries of the user-facing log stream.
type LogLevel string

// Log levels
const (
	LevelPass LogLevel = "PASS"
	LevelInfo LogLevel = "INFO"
	LevelFail LogLevel = "FAIL"
)

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone      ErrorCategory = iota // No error
	ErrCategoryLaunch                         // Driver or browser failed to start
	ErrCategoryTimeout                        // Required step condition never held
	ErrCategoryAssertion                      // Checkpoint not satisfied
	ErrCategoryAction                         // Action failed on a resolved element, or driver error while polling
	ErrCategoryCancelled                      // Run cancelled from outside
	ErrCategoryConfig                         // Invalid scenario or missing configuration
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryLaunch:
		return "launch"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryAssertion:
		return "assertion"
	case ErrCategoryAction:
		return "action"
	case ErrCategoryCancelled:
		return "cancelled"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}

// MarshalText renders the category by name in reports.
func (c ErrorCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
