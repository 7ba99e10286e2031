package storage

import (
	"time"

	"github.com/acarl005/stripansi"
	"github.com/google/uuid"

	"vmx/internal/config"
	"vmx/internal/domain"
)

// Storage persists and loads test run results (e.g. for the failures viewer).
type Storage interface {
	Save(run Run) error
	Load() (*domain.TestResultsOutput, error)
	// SaveOutput writes the full output (e.g. after partial re-run updates).
	SaveOutput(output *domain.TestResultsOutput) error
}

// Run is everything a finished run reports
type Run struct {
	ID          string
	Planned     int
	Outcomes    []domain.Outcome
	ClassErrors []domain.ClassError
	Duration    time.Duration
	Workers     int
	Finished    time.Time
}

// NewRunID returns a fresh run identifier
func NewRunID() string {
	return uuid.NewString()
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

// BuildOutput converts a run into its persisted form. Captured output is
// stripped of terminal escape codes.
func BuildOutput(run Run) *domain.TestResultsOutput {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.Finished.IsZero() {
		run.Finished = time.Now()
	}

	output := &domain.TestResultsOutput{
		Meta: domain.TestResultsMeta{
			RunID:           run.ID,
			TotalExecutions: run.Planned,
			ClassErrors:     len(run.ClassErrors),
			Duration:        run.Duration.String(),
			DurationSeconds: run.Duration.Seconds(),
			Workers:         run.Workers,
			Timestamp:       run.Finished.Format(time.RFC3339),
		},
		Executions:  make([]domain.ExecutionRecord, 0, len(run.Outcomes)),
		ClassErrors: run.ClassErrors,
		Details:     []domain.TestFailure{},
	}

	for _, o := range run.Outcomes {
		switch o.Status {
		case domain.StatusPassed:
			output.Meta.Passed++
		case domain.StatusFailed:
			output.Meta.Failed++
		case domain.StatusIgnored:
			output.Meta.Ignored++
		}

		output.Executions = append(output.Executions, domain.ExecutionRecord{
			Class:       o.Descriptor.Class,
			Method:      o.Descriptor.Method.Name,
			Variant:     int(o.Descriptor.Variant),
			DisplayName: o.Descriptor.DisplayName,
			Sequence:    o.Descriptor.Sequence,
			Status:      o.Status,
			Seconds:     o.Duration.Seconds(),
		})

		if o.Failed() {
			failure := domain.TestFailure{
				Class:       o.Descriptor.Class,
				Method:      o.Descriptor.Method.Name,
				DisplayName: o.Descriptor.DisplayName,
				Variant:     int(o.Descriptor.Variant),
				Source:      o.Descriptor.Source,
				Output:      stripansi.Strip(o.Output),
			}
			if o.Error != nil {
				failure.Message = stripansi.Strip(o.Error.Error())
			}
			output.Details = append(output.Details, failure)
		}
	}

	if notRun := run.Planned - len(run.Outcomes); notRun > 0 {
		output.Meta.NotRun = notRun
	}
	return output
}

// Merge replaces the executions and failures of old whose descriptor was
// rerun in update, keeping the rest. Meta counts are recomputed.
func Merge(old, update *domain.TestResultsOutput) *domain.TestResultsOutput {
	// descriptors are matched by display name since a rerun plans only a subset
	type key struct {
		class string
		name  string
	}
	rerun := make(map[key]domain.ExecutionRecord, len(update.Executions))
	for _, e := range update.Executions {
		rerun[key{e.Class, e.DisplayName}] = e
	}

	merged := *update
	merged.Executions = make([]domain.ExecutionRecord, 0, len(old.Executions))
	merged.Details = []domain.TestFailure{}
	for _, e := range old.Executions {
		k := key{e.Class, e.DisplayName}
		if replacement, ok := rerun[k]; ok {
			replacement.Sequence = e.Sequence
			e = replacement
			delete(rerun, k)
		}
		merged.Executions = append(merged.Executions, e)
	}
	// records that were not part of the previous run keep their update order
	for _, e := range update.Executions {
		if _, ok := rerun[key{e.Class, e.DisplayName}]; ok {
			merged.Executions = append(merged.Executions, e)
		}
	}

	rerunNames := make(map[key]bool, len(update.Executions))
	for _, e := range update.Executions {
		rerunNames[key{e.Class, e.DisplayName}] = true
	}
	for _, f := range old.Details {
		if !rerunNames[key{f.Class, f.DisplayName}] {
			merged.Details = append(merged.Details, f)
		}
	}
	merged.Details = append(merged.Details, update.Details...)
	merged.ClassErrors = old.ClassErrors

	merged.Meta.Passed, merged.Meta.Failed, merged.Meta.Ignored = 0, 0, 0
	for _, e := range merged.Executions {
		switch e.Status {
		case domain.StatusPassed:
			merged.Meta.Passed++
		case domain.StatusFailed:
			merged.Meta.Failed++
		case domain.StatusIgnored:
			merged.Meta.Ignored++
		}
	}
	merged.Meta.TotalExecutions = old.Meta.TotalExecutions
	merged.Meta.NotRun = 0
	if notRun := merged.Meta.TotalExecutions - len(merged.Executions); notRun > 0 {
		merged.Meta.NotRun = notRun
	}
	merged.Meta.ClassErrors = len(merged.ClassErrors)
	return &merged
}
