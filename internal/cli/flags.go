package cli

import "vmx/internal/config"

// Flags holds command-line flags
type Flags struct {
	ProjectPath     string
	Processors      int
	Filter          string
	SuitePath       string
	EnabledVariants string
	FailFast        bool
	StrictEmpty     bool
	Shard           string
	JUnitFile       string
	MetricsFile     string
	Database        bool
	OnlyFailed      bool
	RerunFailures   bool
	OpenFailures    bool
	LogLevel        string
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ProjectPath:     f.ProjectPath,
		Processors:      f.Processors,
		Filter:          f.Filter,
		SuitePath:       f.SuitePath,
		EnabledVariants: f.EnabledVariants,
		FailFast:        f.FailFast,
		StrictEmpty:     f.StrictEmpty,
		Shard:           f.Shard,
		JUnitFile:       f.JUnitFile,
		MetricsFile:     f.MetricsFile,
		Database:        f.Database,
		OnlyFailed:      f.OnlyFailed,
		RerunFailures:   f.RerunFailures,
		OpenFailures:    f.OpenFailures,
		LogLevel:        f.LogLevel,
	}
}
