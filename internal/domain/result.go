package domain

import "time"

// Status is the terminal state of a descriptor.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusIgnored Status = "ignored"
)

// Outcome represents the result of executing one descriptor
type Outcome struct {
	Descriptor Descriptor
	Status     Status
	Error      error         // Setup or body failure, nil on success
	Output     string        // Output captured from the body
	Duration   time.Duration // Time taken including context acquisition
}

// Failed reports whether the outcome is a failure.
func (o Outcome) Failed() bool {
	return o.Status == StatusFailed
}

// ClassError is a class-level initialization failure; the class produced no descriptors.
type ClassError struct {
	Class   string `json:"class"`
	Source  string `json:"source,omitempty"`
	Message string `json:"message"`
}

// TestResultsMeta contains metadata about a test run
type TestResultsMeta struct {
	RunID           string  `json:"run_id"`
	TotalExecutions int     `json:"total_executions"`
	Passed          int     `json:"passed"`
	Failed          int     `json:"failed"`
	Ignored         int     `json:"ignored"`
	NotRun          int     `json:"not_run"`
	ClassErrors     int     `json:"class_errors"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Timestamp       string  `json:"timestamp"`
}

// ExecutionRecord is the persisted form of an Outcome.
type ExecutionRecord struct {
	Class       string  `json:"class"`
	Method      string  `json:"method"`
	Variant     int     `json:"variant"`
	DisplayName string  `json:"display_name"`
	Sequence    int     `json:"sequence"`
	Status      Status  `json:"status"`
	Seconds     float64 `json:"seconds"`
}

// TestResultsOutput is the complete output structure for test results
type TestResultsOutput struct {
	Meta        TestResultsMeta   `json:"meta"`
	Executions  []ExecutionRecord `json:"executions"`
	ClassErrors []ClassError      `json:"class_errors,omitempty"`
	Details     []TestFailure     `json:"details"`
}

// Success reports whether every non-ignored execution passed and no class failed to initialize.
func (o *TestResultsOutput) Success() bool {
	return o.Meta.Failed == 0 && o.Meta.ClassErrors == 0
}
