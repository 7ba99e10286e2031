package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vmx/internal/cli"
	"vmx/internal/cli/commands"
	"vmx/internal/config"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "vmx",
		Short: "Multi-variant test runner",
		Long: `Runs every test method once per platform variant it supports.
Variant sets come from class and method configuration, narrowed by the enabled variants override.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, commands.ErrTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
