package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/jstemmer/go-junit-report/v2/junit"

	"vmx/internal/domain"
)

// JUnitWriter writes a run as JUnit XML, one testsuite per class
type JUnitWriter struct {
	path string
}

// NewJUnitWriter creates a new JUnitWriter for path
func NewJUnitWriter(path string) *JUnitWriter {
	return &JUnitWriter{path: path}
}

// Write renders run to the writer's file.
func (w *JUnitWriter) Write(run Run) error {
	suites := BuildJUnit(run)

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("create junit dir: %w", err)
	}
	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create junit report: %w", err)
	}
	defer f.Close()

	if err := suites.WriteXML(f); err != nil {
		return fmt.Errorf("write junit report: %w", err)
	}
	return f.Close()
}

// BuildJUnit groups outcomes by class, keeping first-seen class order.
// Class initialization errors become suites holding a single errored case.
func BuildJUnit(run Run) junit.Testsuites {
	if run.Finished.IsZero() {
		run.Finished = time.Now()
	}

	var order []string
	byClass := make(map[string]*junit.Testsuite)
	durations := make(map[string]time.Duration)
	suiteFor := func(class, source string) *junit.Testsuite {
		if s, ok := byClass[class]; ok {
			return s
		}
		s := &junit.Testsuite{Name: class, ID: len(order), File: source}
		s.SetTimestamp(run.Finished)
		byClass[class] = s
		order = append(order, class)
		return s
	}

	for _, o := range run.Outcomes {
		suite := suiteFor(o.Descriptor.Class, o.Descriptor.Source)
		durations[o.Descriptor.Class] += o.Duration

		tc := junit.Testcase{
			Name:      o.Descriptor.DisplayName,
			Classname: o.Descriptor.Class,
			Time:      formatSeconds(o.Duration),
			Status:    string(o.Status),
		}
		switch o.Status {
		case domain.StatusFailed:
			message := "failed"
			if o.Error != nil {
				message = stripansi.Strip(o.Error.Error())
			}
			tc.Failure = &junit.Result{Message: message, Data: stripansi.Strip(o.Output)}
		case domain.StatusIgnored:
			reason := o.Descriptor.Method.Skip
			if reason == "" {
				reason = "skipped"
			}
			tc.Skipped = &junit.Result{Message: reason}
		}
		if out := strings.TrimSpace(stripansi.Strip(o.Output)); out != "" && o.Status != domain.StatusFailed {
			tc.SystemOut = &junit.Output{Data: out}
		}
		suite.AddTestcase(tc)
	}

	for _, ce := range run.ClassErrors {
		suite := suiteFor(ce.Class, ce.Source)
		suite.AddTestcase(junit.Testcase{
			Name:      "initializationError",
			Classname: ce.Class,
			Error:     &junit.Result{Message: ce.Message, Type: "InitializationError"},
		})
	}

	suites := junit.Testsuites{Name: "vmx", Time: formatSeconds(run.Duration)}
	for _, class := range order {
		suite := byClass[class]
		suite.Time = formatSeconds(durations[class])
		suites.AddSuite(*suite)
	}
	return suites
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
