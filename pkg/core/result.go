package core

import (
	"time"
)

// LogEntry is one line of the user-facing log stream
type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   LogLevel  `json:"level"`
	Step    string    `json:"step,omitempty"`
	Message string    `json:"message"`
}

// StepResult captures the outcome of executing a single step or checkpoint
type StepResult struct {
	// Identity
	Index    int    `json:"index"`          // 0-based position after flow expansion
	Name     string `json:"name"`           // Step or checkpoint name
	Kind     string `json:"kind"`           // step or checkpoint
	Flow     string `json:"flow,omitempty"` // Flow the step was expanded from
	Optional bool   `json:"optional,omitempty"`

	// Status
	Status   StepStatus    `json:"status"`
	Category ErrorCategory `json:"errorCategory,omitempty"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`
	Waited    time.Duration `json:"waited,omitempty"` // Time spent in the waiter

	// Output
	Message string `json:"message,omitempty"`
	Address string `json:"address,omitempty"` // Address read by a readAddress action
	Error   string `json:"error,omitempty"`
}

// RunResult is the outcome of one scenario run. It is produced once per
// run and not modified afterwards.
type RunResult struct {
	// Identity
	ScenarioName string   `json:"scenario"`
	RunID        string   `json:"runId"`
	Tags         []string `json:"tags,omitempty"`
	SourcePath   string   `json:"sourcePath,omitempty"`

	Outcome Outcome `json:"outcome"`

	// Failure details, set when Outcome is failed
	Reason            string        `json:"reason,omitempty"`
	Category          ErrorCategory `json:"errorCategory,omitempty"`
	FailingStep       string        `json:"failingStep,omitempty"`
	FailedCheckpoint  string        `json:"failedCheckpoint,omitempty"`
	LastCompletedStep string        `json:"lastCompletedStep,omitempty"`
	Elapsed           time.Duration `json:"elapsed,omitempty"` // Wait time of the failing step
	LastAddress       string        `json:"lastAddress,omitempty"`
	Err               error         `json:"-"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	Steps       []StepResult `json:"steps"`
	Log         []LogEntry   `json:"log"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Passed returns true if the scenario passed
func (r *RunResult) Passed() bool {
	return r.Outcome == OutcomePassed
}

// Entries returns the log entries at the given level
func (r *RunResult) Entries(level LogLevel) []LogEntry {
	var out []LogEntry
	for _, e := range r.Log {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// StepCounts summarizes step statuses
type StepCounts struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Counts calculates step counts from the Steps slice
func (r *RunResult) Counts() StepCounts {
	c := StepCounts{Total: len(r.Steps)}
	for _, s := range r.Steps {
		switch s.Status {
		case StatusPassed:
			c.Passed++
		case StatusFailed, StatusErrored:
			c.Failed++
		case StatusSkipped:
			c.Skipped++
		}
	}
	return c
}

// SuiteResult captures the outcome of running several scenarios in sequence
type SuiteResult struct {
	// Identity
	Name  string `json:"name"`
	RunID string `json:"runId"` // Unique execution ID

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	Scenarios []RunResult `json:"scenarios"`

	// Summary
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// ComputeSummary calculates scenario counts from the Scenarios slice
func (s *SuiteResult) ComputeSummary() {
	s.Total = len(s.Scenarios)
	s.Passed = 0
	s.Failed = 0

	for i := range s.Scenarios {
		if s.Scenarios[i].Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
	}
}

// Success returns true if every scenario passed
func (s *SuiteResult) Success() bool {
	for i := range s.Scenarios {
		if !s.Scenarios[i].Passed() {
			return false
		}
	}
	return len(s.Scenarios) > 0
}

// FirstFailure returns the first failed scenario, or nil
func (s *SuiteResult) FirstFailure() *RunResult {
	for i := range s.Scenarios {
		if !s.Scenarios[i].Passed() {
			return &s.Scenarios[i]
		}
	}
	return nil
}
