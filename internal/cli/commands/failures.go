package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vmx/internal/config"
	"vmx/internal/storage"
	"vmx/internal/ui"
)

// FailuresCommand opens the stored failures of the last run in the interactive viewer
type FailuresCommand struct {
	config  *config.Config
	storage storage.Storage
	viewer  ui.Viewer
}

// NewFailuresCommand creates a new FailuresCommand
func NewFailuresCommand(cfg *config.Config, st storage.Storage, viewer ui.Viewer) *FailuresCommand {
	return &FailuresCommand{
		config:  cfg,
		storage: st,
		viewer:  viewer,
	}
}

// Execute runs the command
func (fc *FailuresCommand) Execute(cmd *cobra.Command, args []string) error {
	results, err := fc.storage.Load()
	if err != nil {
		return fmt.Errorf("failed to load test results from %s: %w", fc.config.GetOutputPath(), err)
	}

	if len(results.Details) == 0 {
		color.Green("No failures in the last run")
		return nil
	}

	return fc.viewer.View(results)
}
