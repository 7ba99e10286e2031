package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vmx/internal/bootstrap"
	"vmx/internal/config"
	"vmx/internal/discovery"
	"vmx/internal/domain"
	"vmx/internal/execution"
	"vmx/internal/metrics"
	"vmx/internal/storage"
	"vmx/internal/ui"
)

// ErrTestsFailed is returned when a run finished with failures or class errors
var ErrTestsFailed = errors.New("test run failed")

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	storage   storage.Storage
	formatter *ui.Formatter
	viewer    ui.Viewer
	progress  io.Writer
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config, st storage.Storage, formatter *ui.Formatter, viewer ui.Viewer) *RunCommand {
	return &RunCommand{
		config:    cfg,
		storage:   st,
		formatter: formatter,
		viewer:    viewer,
		progress:  os.Stderr,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	parent := context.Background()
	if cmd != nil && cmd.Context() != nil {
		parent = cmd.Context()
	}
	ctx, stop := signalContext(parent)
	defer stop()

	output, err := rc.run(ctx)
	if output == nil {
		return err
	}

	// Print stats
	rc.formatter.PrintMetaStats(output)
	if err != nil {
		return err
	}

	if output.Success() {
		return nil
	}
	if rc.config.Flags.OpenFailures && rc.viewer != nil && len(output.Details) > 0 {
		if err := rc.viewer.View(output); err != nil {
			return err
		}
	}
	return ErrTestsFailed
}

// run executes the plan and persists the results. It returns nil output when
// there was nothing to run.
func (rc *RunCommand) run(ctx context.Context) (*domain.TestResultsOutput, error) {
	cfg := rc.config

	// Discover tests
	classes, err := discover(cfg)
	if err != nil {
		return nil, err
	}

	var previous *domain.TestResultsOutput
	if cfg.Flags.OnlyFailed {
		previous = loadPrevious(rc.storage)
		if previous == nil {
			return nil, fmt.Errorf("no previous results at %s to select failed tests from", cfg.GetOutputPath())
		}
		classes = discovery.NewFilter().FilterByFailures(classes, failedMethods(previous))
	}

	descriptors, classErrors, err := buildPlan(cfg, classes)
	if err != nil {
		return nil, err
	}
	if len(descriptors) == 0 && len(classErrors) == 0 {
		color.Yellow("No tests to execute")
		return nil, nil
	}

	bootstrapper, cleanup, err := rc.bootstrapper(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	// Create listeners
	progress := ui.NewProgressListener(len(descriptors), rc.progress)
	listeners := execution.Listeners{progress}
	var metricsListener *metrics.Listener
	if cfg.MetricsFile != "" {
		metricsListener = metrics.NewListener()
		listeners = append(listeners, metricsListener)
	}

	dispatcher := execution.NewDispatcher(bootstrapper,
		execution.WithWorkers(cfg.Processors),
		execution.WithFailFast(cfg.FailFast),
		execution.WithCommandRunner(execution.NewCommandRunner(cfg.ProjectPath)),
	)

	start := time.Now()
	outcomes, runErr := dispatcher.Run(ctx, descriptors, listeners)
	progress.Finish()

	if cfg.Flags.RerunFailures && runErr == nil {
		outcomes, runErr = rerunFailures(ctx, dispatcher, outcomes)
	}

	run := storage.Run{
		ID:          storage.NewRunID(),
		Planned:     len(descriptors),
		Outcomes:    outcomes,
		ClassErrors: classErrors,
		Duration:    time.Since(start),
		Workers:     dispatcher.Workers(),
	}

	// Save results
	output := storage.BuildOutput(run)
	if previous != nil {
		output = storage.Merge(previous, output)
	}
	if err := rc.storage.SaveOutput(output); err != nil {
		return nil, fmt.Errorf("failed to save test results: %w", err)
	}

	if cfg.JUnitFile != "" {
		if err := storage.NewJUnitWriter(cfg.JUnitFile).Write(run); err != nil {
			return nil, err
		}
	}
	if metricsListener != nil {
		metricsListener.RecordClassErrors(len(classErrors))
		metricsListener.RecordRun(run.ID, output.Success())
		if err := metricsListener.WriteFile(cfg.MetricsFile); err != nil {
			return nil, err
		}
	}

	return output, runErr
}

// bootstrapper builds the context bootstrapper and a cleanup releasing its resources
func (rc *RunCommand) bootstrapper(ctx context.Context) (execution.Bootstrapper, func(), error) {
	cfg := rc.config
	env := bootstrap.NewEnvBootstrapper("", nil)
	closeEnv := func() {
		if err := env.Close(); err != nil {
			log.WithError(err).Warn("failed to release leaked contexts")
		}
	}
	if !cfg.Database.Enabled {
		return env, closeEnv, nil
	}

	dsn := cfg.GetDatabaseDSN()
	if dsn == "" {
		dsn = bootstrap.DSNFromEnv()
	}
	db, err := bootstrap.OpenDatabase(ctx, dsn)
	if err != nil {
		closeEnv()
		return nil, nil, err
	}
	cleanup := func() {
		closeEnv()
		db.Close()
	}
	return bootstrap.NewDatabaseBootstrapper(env, db, cfg.Database.Prefix, cfg.Database.Setup), cleanup, nil
}

// descriptorKey identifies a descriptor within one plan
type descriptorKey struct {
	class    string
	name     string
	sequence int
}

func keyOf(d domain.Descriptor) descriptorKey {
	return descriptorKey{class: d.Class, name: d.DisplayName, sequence: d.Sequence}
}

// rerunFailures runs every failed descriptor once more and keeps the new
// outcome. Descriptors the rerun never started keep their first outcome.
func rerunFailures(ctx context.Context, executor execution.Executor, outcomes []domain.Outcome) ([]domain.Outcome, error) {
	var failed []domain.Descriptor
	index := make(map[descriptorKey]int)
	for i, o := range outcomes {
		if o.Failed() {
			index[keyOf(o.Descriptor)] = i
			failed = append(failed, o.Descriptor)
		}
	}
	if len(failed) == 0 {
		return outcomes, nil
	}

	color.Yellow("Rerunning %d failed execution(s)", len(failed))
	rerun, err := executor.Run(ctx, failed, nil)
	for _, o := range rerun {
		if i, ok := index[keyOf(o.Descriptor)]; ok {
			outcomes[i] = o
		}
	}
	return outcomes, err
}
