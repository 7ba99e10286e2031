package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"vmx/internal/config"
	"vmx/internal/domain"
)

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to out (stdout when nil)
func NewFormatter(cfg *config.Config, out io.Writer) *Formatter {
	if out == nil {
		out = os.Stdout
	}
	return &Formatter{
		config: cfg,
		out:    out,
	}
}

// PrintMetaStats displays the statistics of a stored run
func (f *Formatter) PrintMetaStats(output *domain.TestResultsOutput) {
	meta := output.Meta

	// Print header
	fmt.Fprint(f.out, "\n")
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                    Test Execution Statistics                  ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)

	rows := []struct {
		label string
		value string
		c     *color.Color
	}{
		{"Planned Executions", fmt.Sprint(meta.TotalExecutions), white},
		{"Passed", fmt.Sprint(meta.Passed), green},
		{"Failed", fmt.Sprint(meta.Failed), red},
		{"Ignored", fmt.Sprint(meta.Ignored), yellow},
		{"Not Run", fmt.Sprint(meta.NotRun), yellow},
		{"Class Errors", fmt.Sprint(meta.ClassErrors), red},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), white},
		{"Workers", fmt.Sprint(meta.Workers), white},
		{"Run ID", meta.RunID, white},
		{"Timestamp", meta.Timestamp, white},
	}

	// Print table
	fmt.Fprintln(f.out, "┌─────────────────────────────────┬──────────────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-31s │ ", row.label)
		row.c.Fprintf(f.out, "%-36s", row.value)
		fmt.Fprintln(f.out, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, "├─────────────────────────────────┼──────────────────────────────────────┤")
		}
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴──────────────────────────────────────┘")

	// Print summary line
	fmt.Fprintln(f.out)
	if output.Success() {
		green.Fprintln(f.out, "✓ All tests passed!")
		return
	}
	if meta.Failed > 0 {
		red.Fprintf(f.out, "✗ %d execution(s) failed\n", meta.Failed)
	}
	if meta.ClassErrors > 0 {
		red.Fprintf(f.out, "✗ %d class(es) failed to initialize\n", meta.ClassErrors)
	}
	fmt.Fprintln(f.out)
	f.printFailedTestsTree(output.Details, output.ClassErrors)
}

// printFailedTestsTree prints failures grouped by suite file and class
func (f *Formatter) printFailedTestsTree(failures []domain.TestFailure, classErrors []domain.ClassError) {
	bySource := make(map[string]map[string][]string)
	add := func(source, class, line string) {
		source = f.relPath(source)
		if bySource[source] == nil {
			bySource[source] = make(map[string][]string)
		}
		bySource[source][class] = append(bySource[source][class], line)
	}
	for _, failure := range failures {
		add(failure.Source, failure.Class, failure.DisplayName)
	}
	for _, ce := range classErrors {
		add(ce.Source, ce.Class, "initialization: "+ce.Message)
	}

	sources := sortedKeys(bySource)
	for i, source := range sources {
		lastSource := i == len(sources)-1
		name := source
		if name == "" {
			name = "(no suite file)"
		}
		yellow.Fprintln(f.out, branch(lastSource)+name)

		classes := sortedKeys(bySource[source])
		for j, class := range classes {
			lastClass := j == len(classes)-1
			cyan.Fprintln(f.out, indent(lastSource)+branch(lastClass)+class)
			lines := bySource[source][class]
			for k, line := range lines {
				red.Fprintln(f.out, indent(lastSource)+indent(lastClass)+branch(k == len(lines)-1)+line)
			}
		}
	}
}

// PrintPlan prints every descriptor of a plan as a table
func (f *Formatter) PrintPlan(descriptors []domain.Descriptor, classErrors []domain.ClassError) {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle("Execution plan")

	t.AppendHeader(table.Row{"Class", "Method", "Variant", "Name", "Seq", "Note"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Class", AutoMerge: true},
		{Name: "Method", AutoMerge: true},
		{Name: "Variant", Align: text.AlignRight},
		{Name: "Seq", Align: text.AlignRight},
		{Name: "Note", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, d := range descriptors {
		note := ""
		if d.Method.Skip != "" {
			note = "skip: " + d.Method.Skip
		}
		t.AppendRow(table.Row{d.Class, d.Method.Name, d.Variant.String(), d.DisplayName, d.Sequence, note})
	}
	if len(classErrors) > 0 {
		t.AppendSeparator()
		for _, ce := range classErrors {
			t.AppendRow(table.Row{ce.Class, "-", "-", "-", "-", "error: " + ce.Message})
		}
	}

	t.AppendFooter(table.Row{"TOTAL", "", "", len(descriptors), "", fmt.Sprintf("%d class error(s)", len(classErrors))})
	if len(classErrors) > 0 {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	} else {
		t.SetStyle(table.StyleDefault)
	}
	t.Render()
}

// ClassListing is one class of the list command with the variants resolved for each method
type ClassListing struct {
	Class    domain.TestClass
	Variants [][]domain.Variant
	Err      error
}

// PrintClassList prints discovered classes as a tree.
// failed is optional; methods in it ("Class.method") are marked with [F] in red (from last run).
func (f *Formatter) PrintClassList(listings []ClassListing, failed map[string]bool) {
	green.Fprintf(f.out, "Found %d class(es):\n\n", len(listings))

	for i, listing := range listings {
		lastClass := i == len(listings)-1
		class := listing.Class

		source := ""
		if class.Source != "" {
			source = " " + color.New(color.Faint).Sprint("("+f.relPath(class.Source)+")")
		}
		cyan.Fprintf(f.out, "%s%s%s\n", branch(lastClass), class.Name, source)

		if listing.Err != nil {
			red.Fprintf(f.out, "%s%s\n", indent(lastClass)+branch(true), listing.Err)
			continue
		}
		if len(class.Methods) == 0 {
			red.Fprintf(f.out, "%s(no test methods found)\n", indent(lastClass)+branch(true))
			continue
		}

		for j, method := range class.Methods {
			prefix := indent(lastClass) + branch(j == len(class.Methods)-1)

			var variants []domain.Variant
			if j < len(listing.Variants) {
				variants = listing.Variants[j]
			}
			marker := ""
			if failed[class.Name+"."+method.Name] {
				marker = " " + color.RedString("[F]")
			}
			skip := ""
			if method.Skip != "" {
				skip = " " + color.YellowString("(skip: %s)", method.Skip)
			}
			fmt.Fprintf(f.out, "%s%s %s%s%s\n", prefix, yellow.Sprint(method.Name), formatVariants(variants), skip, marker)
		}
	}
}

func formatVariants(variants []domain.Variant) string {
	if len(variants) == 0 {
		return color.New(color.Faint).Sprint("[none]")
	}
	parts := make([]string, len(variants))
	for i, v := range variants {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (f *Formatter) relPath(path string) string {
	if path == "" || f.config == nil {
		return path
	}
	if rel, err := filepath.Rel(f.config.ProjectPath, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}

func branch(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func indent(last bool) string {
	if last {
		return "    "
	}
	return "│   "
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
