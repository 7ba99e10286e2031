package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vmx/internal/config"
	"vmx/internal/ui"
)

// PlanCommand prints the descriptors a run would execute without executing them
type PlanCommand struct {
	config    *config.Config
	formatter *ui.Formatter
}

// NewPlanCommand creates a new PlanCommand
func NewPlanCommand(cfg *config.Config, formatter *ui.Formatter) *PlanCommand {
	return &PlanCommand{
		config:    cfg,
		formatter: formatter,
	}
}

// Execute runs the command
func (pc *PlanCommand) Execute(cmd *cobra.Command, args []string) error {
	classes, err := discover(pc.config)
	if err != nil {
		return err
	}

	descriptors, classErrors, err := buildPlan(pc.config, classes)
	if err != nil {
		return err
	}
	if len(descriptors) == 0 && len(classErrors) == 0 {
		color.Yellow("No tests to execute")
		return nil
	}

	pc.formatter.PrintPlan(descriptors, classErrors)
	return nil
}
