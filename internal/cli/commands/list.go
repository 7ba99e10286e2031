package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vmx/internal/config"
	"vmx/internal/storage"
	"vmx/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	formatter *ui.Formatter
	storage   storage.Storage
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, formatter *ui.Formatter, st storage.Storage) *ListCommand {
	return &ListCommand{
		config:    cfg,
		formatter: formatter,
		storage:   st,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	classes, err := discover(lc.config)
	if err != nil {
		return err
	}
	if len(classes) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	builder, err := newBuilder(lc.config)
	if err != nil {
		return err
	}

	listings := make([]ui.ClassListing, 0, len(classes))
	for _, class := range classes {
		variants, err := builder.Resolve(class)
		listings = append(listings, ui.ClassListing{
			Class:    class,
			Variants: variants,
			Err:      err,
		})
	}

	// Mark methods that failed in the last stored run
	failed := failedMethods(loadPrevious(lc.storage))

	lc.formatter.PrintClassList(listings, failed)
	return nil
}
