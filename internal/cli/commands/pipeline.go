package commands

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"vmx/internal/config"
	"vmx/internal/discovery"
	"vmx/internal/domain"
	"vmx/internal/execution"
	"vmx/internal/plan"
	"vmx/internal/storage"
)

// discover scans the suite path, parses every suite file and applies the name filter
func discover(cfg *config.Config) ([]domain.TestClass, error) {
	scanner := discovery.NewScanner(cfg.PathsToIgnore)
	files, err := scanner.Scan(cfg.GetSuitePath())
	if err != nil {
		return nil, err
	}
	log.WithField("files", len(files)).Debug("suite files found")

	classes, err := discovery.NewParser().ParseFiles(files)
	if err != nil {
		return nil, err
	}
	return discovery.NewFilter().FilterByName(classes, cfg.Flags.Filter), nil
}

// newBuilder creates a plan builder from the configured catalog and override
func newBuilder(cfg *config.Config) (*plan.Builder, error) {
	supported, err := cfg.Supported()
	if err != nil {
		return nil, err
	}
	enabled, err := cfg.Enabled()
	if err != nil {
		return nil, err
	}
	if enabled != nil {
		log.WithField("enabled", cfg.EnabledVariants).Info("variants narrowed by override")
	}
	return plan.NewBuilder(supported, enabled, plan.WithStrictEmpty(cfg.StrictEmpty)), nil
}

// buildPlan expands classes into descriptors and keeps only the configured shard
func buildPlan(cfg *config.Config, classes []domain.TestClass) ([]domain.Descriptor, []domain.ClassError, error) {
	builder, err := newBuilder(cfg)
	if err != nil {
		return nil, nil, err
	}
	descriptors, failures := builder.BuildAll(classes)

	classErrors := make([]domain.ClassError, 0, len(failures))
	for _, failure := range failures {
		log.WithFields(log.Fields{"class": failure.Class, "source": failure.Source}).Warn(failure.Err)
		classErrors = append(classErrors, domain.ClassError{
			Class:   failure.Class,
			Source:  failure.Source,
			Message: failure.Err.Error(),
		})
	}

	index, total, err := config.ParseShard(cfg.Flags.Shard)
	if err != nil {
		return nil, nil, err
	}
	if total > 1 {
		descriptors = execution.Shard(execution.NewRoundRobinScheduler(), descriptors, index, total)
		log.WithFields(log.Fields{"shard": fmt.Sprintf("%d/%d", index+1, total), "descriptors": len(descriptors)}).Info("running shard")
	}
	return descriptors, classErrors, nil
}

// failedMethods returns the "Class.method" names that failed in a stored run
func failedMethods(results *domain.TestResultsOutput) map[string]bool {
	failed := make(map[string]bool)
	if results == nil {
		return failed
	}
	for _, failure := range results.Details {
		if failure.Resolved {
			continue
		}
		failed[discovery.QualifiedName(failure.Class, failure.Method)] = true
	}
	return failed
}

// loadPrevious returns the last stored run, or nil when there is none
func loadPrevious(st storage.Storage) *domain.TestResultsOutput {
	results, err := st.Load()
	if err != nil {
		log.WithError(err).Debug("no previous results")
		return nil
	}
	return results
}
