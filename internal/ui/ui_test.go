package ui

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmx/internal/config"
	"vmx/internal/domain"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func descriptor(class, method string, v domain.Variant, seq int) domain.Descriptor {
	return domain.Descriptor{
		Class:       class,
		Method:      domain.TestMethod{Name: method},
		Variant:     v,
		DisplayName: method + "[" + v.String() + "]",
		Sequence:    seq,
	}
}

func TestProgressListener_Counts(t *testing.T) {
	p := NewProgressListener(4, io.Discard)

	a := descriptor("A", "test", 16, 0)
	b := descriptor("A", "test", 17, 1)
	c := descriptor("A", "test", 18, 2)

	p.Started(a)
	p.Finished(a)
	p.Started(b)
	p.Failed(b, errors.New("boom"))
	p.Finished(b)
	p.Started(c)
	p.Ignored(c)
	p.Finish()

	passed, failed, ignored := p.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, ignored)
}

func TestFormatter_PrintMetaStats(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.New()
	cfg.ProjectPath = "/project"
	f := NewFormatter(cfg, &buf)

	t.Run("success", func(t *testing.T) {
		buf.Reset()
		f.PrintMetaStats(&domain.TestResultsOutput{
			Meta: domain.TestResultsMeta{RunID: "run-1", TotalExecutions: 3, Passed: 3, Workers: 1},
		})
		assert.Contains(t, buf.String(), "Test Execution Statistics")
		assert.Contains(t, buf.String(), "run-1")
		assert.Contains(t, buf.String(), "✓ All tests passed!")
	})

	t.Run("failures are grouped by suite and class", func(t *testing.T) {
		buf.Reset()
		f.PrintMetaStats(&domain.TestResultsOutput{
			Meta: domain.TestResultsMeta{TotalExecutions: 3, Passed: 1, Failed: 2, ClassErrors: 1},
			Details: []domain.TestFailure{
				{Class: "PaymentTest", DisplayName: "testCharge[16]", Source: "/project/suites/payment.vmx.yaml"},
				{Class: "PaymentTest", DisplayName: "testCharge", Source: "/project/suites/payment.vmx.yaml"},
			},
			ClassErrors: []domain.ClassError{{Class: "LegacyTest", Source: "/project/suites/legacy.vmx.yaml", Message: "two constructors"}},
		})
		out := buf.String()
		assert.Contains(t, out, "✗ 2 execution(s) failed")
		assert.Contains(t, out, "✗ 1 class(es) failed to initialize")
		assert.Contains(t, out, "├── suites/legacy.vmx.yaml")
		assert.Contains(t, out, "└── suites/payment.vmx.yaml")
		assert.Contains(t, out, "    └── PaymentTest")
		assert.Contains(t, out, "        ├── testCharge[16]")
		assert.Contains(t, out, "        └── testCharge")
		assert.Contains(t, out, "initialization: two constructors")
	})
}

func TestFormatter_PrintPlan(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(config.New(), &buf)

	skipped := descriptor("UserTest", "testDelete", 23, 0)
	skipped.Method.Skip = "flaky"
	f.PrintPlan([]domain.Descriptor{
		descriptor("PaymentTest", "testCharge", 16, 0),
		descriptor("PaymentTest", "testCharge", 17, 1),
		skipped,
	}, []domain.ClassError{{Class: "LegacyTest", Message: "two constructors"}})

	// table styles may change the case of titles and footers
	out := strings.ToLower(buf.String())
	assert.Contains(t, out, "execution plan")
	assert.Contains(t, out, "testcharge[17]")
	assert.Contains(t, out, "skip: flaky")
	assert.Contains(t, out, "error: two constructors")
	assert.Contains(t, out, "1 class error(s)")
}

func TestFormatter_PrintClassList(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(config.New(), &buf)

	listings := []ClassListing{
		{
			Class: domain.TestClass{Name: "PaymentTest", Methods: []domain.TestMethod{
				{Name: "testCharge"},
				{Name: "testRefund", Skip: "sandbox down"},
			}},
			Variants: [][]domain.Variant{{16, 17}, {}},
		},
		{
			Class: domain.TestClass{Name: "LegacyTest", Methods: []domain.TestMethod{{Name: "testOld"}}},
			Err:   errors.New("test class should have exactly one public constructor"),
		},
	}
	f.PrintClassList(listings, map[string]bool{"PaymentTest.testCharge": true})

	out := buf.String()
	assert.Contains(t, out, "Found 2 class(es)")
	assert.Contains(t, out, "├── PaymentTest")
	assert.Contains(t, out, "│   ├── testCharge [16, 17] [F]")
	assert.Contains(t, out, "│   └── testRefund [none] (skip: sandbox down)")
	assert.Contains(t, out, "└── LegacyTest")
	assert.Contains(t, out, "    └── test class should have exactly one public constructor")
}

func TestErrorViewer_Formatting(t *testing.T) {
	ev := NewErrorViewer(config.New(), nil)
	failure := domain.TestFailure{
		Class:       "PaymentTest",
		DisplayName: "testCharge[16]",
		Variant:     16,
		Source:      "suites/payment.vmx.yaml",
		Message:     "exit status 1",
		Output:      "--- FAIL [expected]\n",
	}

	details := ev.formatFailureDetails(failure)
	assert.Contains(t, details, "PaymentTest.testCharge[16]")
	assert.Contains(t, details, "Variant: 16")
	assert.Contains(t, details, "exit status 1")
	assert.Contains(t, details, "--- FAIL [expected[]")

	stats := ev.formatFailureStats(domain.TestFailure{}, 3)
	assert.Contains(t, stats, "Unknown suite")
	assert.Contains(t, stats, "Test 3")
}

func TestFailureBrowser(t *testing.T) {
	results := &domain.TestResultsOutput{Details: []domain.TestFailure{
		{Class: "PaymentTest", DisplayName: "testCharge[16]", Variant: 16},
		{Class: "PaymentTest", DisplayName: "testCharge[21]", Variant: 21},
		{Class: "LoginTest", DisplayName: "testLogin[16]", Variant: 16, Resolved: true},
	}}
	var saved []*domain.TestResultsOutput
	browser := newFailureBrowser(results, func(out *domain.TestResultsOutput) error {
		saved = append(saved, out)
		return nil
	})

	assert.Contains(t, browser.header(), "3 failure(s), 2 unresolved (v16: 1, v21: 1)")
	assert.Contains(t, browser.itemText(0), "1.[white] PaymentTest.testCharge[16[]")
	assert.Contains(t, browser.itemText(2), "✓ 3.")

	require.NoError(t, browser.toggle(0))
	assert.True(t, results.Details[0].Resolved)
	assert.Contains(t, browser.header(), "1 unresolved (v21: 1)")
	require.Len(t, saved, 1)

	require.NoError(t, browser.toggle(2))
	assert.False(t, results.Details[2].Resolved, "toggling twice reopens a failure")
	require.NoError(t, browser.toggle(9))
	assert.Len(t, saved, 2, "out of range index is ignored")
}

func TestFailureBrowser_SaveError(t *testing.T) {
	results := &domain.TestResultsOutput{Details: []domain.TestFailure{{Class: "A", DisplayName: "a"}}}
	browser := newFailureBrowser(results, func(*domain.TestResultsOutput) error {
		return errors.New("disk full")
	})
	assert.EqualError(t, browser.toggle(0), "disk full")
	assert.True(t, results.Details[0].Resolved)
}
