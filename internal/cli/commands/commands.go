package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vmx/internal/cli"
	"vmx/internal/config"
	"vmx/internal/logging"
	"vmx/internal/storage"
	"vmx/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	Plan     *PlanCommand
	List     *ListCommand
	Failures *FailuresCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	// Initialize dependencies
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(cfg, os.Stdout)
	errorViewer := ui.NewErrorViewer(cfg, jsonStorage)

	return &Commands{
		Run:      NewRunCommand(cfg, jsonStorage, formatter, errorViewer),
		Plan:     NewPlanCommand(cfg, formatter),
		List:     NewListCommand(cfg, formatter, jsonStorage),
		Failures: NewFailuresCommand(cfg, jsonStorage, errorViewer),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	// Shared by every command
	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&flags.ProjectPath, "project", "", "Project directory holding vmx.yaml, .env and the results file")
	persistent.StringVarP(&flags.SuitePath, "suite-path", "t", "", "Path to the folder where suite discovery should start")
	persistent.StringVarP(&flags.Filter, "filter", "f", "", "Filter by class or Class.method pattern (supports wildcards, e.g., 'User*' or '*.testLogin')")
	persistent.StringVar(&flags.EnabledVariants, "enabled-variants", "", "Comma separated variants to run, narrowing the supported catalog (e.g., '21,23')")
	persistent.BoolVar(&flags.StrictEmpty, "strict-empty", false, "Treat a method whose variant set resolves to nothing as a class error")
	persistent.StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	load := func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(flags.ToConfigFlags())
		if err != nil {
			return err
		}
		*cfg = *loaded
		return logging.Configure(cfg.LogLevel)
	}

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Run every test method once per resolved variant",
		Long:    "Discover suites, expand each method into one execution per variant and run them against fresh contexts",
		RunE:    c.Run.Execute,
		PreRunE: load,
	}
	runCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, "Number of descriptors to run at once (default from config, 1 keeps runs sequential)")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on first test failure")
	runCmd.Flags().StringVar(&flags.Shard, "shard", "", "Run one shard of the plan, written as index/total (e.g., '2/4')")
	runCmd.Flags().StringVar(&flags.JUnitFile, "junit", "", "Write a JUnit XML report to this file")
	runCmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")
	runCmd.Flags().BoolVar(&flags.Database, "database", false, "Give every execution its own MySQL database")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only methods that failed in the last run")
	runCmd.Flags().BoolVar(&flags.RerunFailures, "rerun-failures", false, "After running all tests, rerun only failed ones once and save that result")
	runCmd.Flags().BoolVar(&flags.OpenFailures, "open-failures", false, "Open the failures viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// Plan command
	planCmd := &cobra.Command{
		Use:     "plan",
		Short:   "Show the execution plan",
		Long:    "Expand discovered methods into per-variant executions and print them without running anything",
		RunE:    c.Plan.Execute,
		PreRunE: load,
	}
	planCmd.Flags().StringVar(&flags.Shard, "shard", "", "Show one shard of the plan, written as index/total (e.g., '2/4')")
	rootCmd.AddCommand(planCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List discovered tests",
		Long:    "Scan and list all suite classes with the variants each method resolves to",
		RunE:    c.List.Execute,
		PreRunE: load,
	}
	rootCmd.AddCommand(listCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:     "failures",
		Short:   "View test failures interactively",
		Long:    "Display test failures from the last test run in an interactive viewer",
		RunE:    c.Failures.Execute,
		PreRunE: load,
	}
	rootCmd.AddCommand(failuresCmd)
}

// signalContext is cancelled on interrupt so a run stops handing out contexts
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
