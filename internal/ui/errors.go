package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	log "github.com/sirupsen/logrus"

	"vmx/internal/config"
	"vmx/internal/domain"
	"vmx/internal/storage"
)

const maxOutputLines = 200

// ErrorViewer displays test failures in an interactive TUI
type ErrorViewer struct {
	config  *config.Config
	storage storage.Storage
}

// NewErrorViewer creates a new ErrorViewer
func NewErrorViewer(cfg *config.Config, st storage.Storage) *ErrorViewer {
	return &ErrorViewer{
		config:  cfg,
		storage: st,
	}
}

// failureBrowser is the state behind the viewer: stored failures and which
// of them the user marked resolved.
type failureBrowser struct {
	results *domain.TestResultsOutput
	save    func(*domain.TestResultsOutput) error
}

func newFailureBrowser(results *domain.TestResultsOutput, save func(*domain.TestResultsOutput) error) *failureBrowser {
	return &failureBrowser{results: results, save: save}
}

func (b *failureBrowser) len() int {
	return len(b.results.Details)
}

func (b *failureBrowser) itemText(i int) string {
	failure := b.results.Details[i]
	title := tview.Escape(failureTitle(failure, i+1))
	if failure.Resolved {
		return fmt.Sprintf("[gray]✓ %d. %s[white]", i+1, title)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s", i+1, title)
}

// toggle flips the resolved flag of one failure and persists the results
func (b *failureBrowser) toggle(i int) error {
	if i < 0 || i >= b.len() {
		return nil
	}
	b.results.Details[i].Resolved = !b.results.Details[i].Resolved
	if b.save == nil {
		return nil
	}
	return b.save(b.results)
}

// header summarises open failures per variant, e.g. "v16: 2, v21: 1"
func (b *failureBrowser) header() string {
	perVariant := make(map[int]int)
	open := 0
	for _, failure := range b.results.Details {
		if failure.Resolved {
			continue
		}
		open++
		perVariant[failure.Variant]++
	}

	variants := make([]int, 0, len(perVariant))
	for v := range perVariant {
		variants = append(variants, v)
	}
	sort.Ints(variants)
	parts := make([]string, 0, len(variants))
	for _, v := range variants {
		parts = append(parts, fmt.Sprintf("v%d: %d", v, perVariant[v]))
	}

	text := fmt.Sprintf(" %d failure(s), %d unresolved", b.len(), open)
	if len(parts) > 0 {
		text += " (" + strings.Join(parts, ", ") + ")"
	}
	return text + " | [yellow]R[white] resolve, → details, ← back, Ctrl+C exit "
}

// View displays test failures in an interactive TUI
func (ev *ErrorViewer) View(results *domain.TestResultsOutput) error {
	if len(results.Details) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}
	browser := newFailureBrowser(results, ev.storage.SaveOutput)

	app := tview.NewApplication()
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)
	for i := 0; i < browser.len(); i++ {
		list.AddItem(browser.itemText(i), "", 0, nil)
	}

	headerView := tview.NewTextView().SetTextAlign(tview.AlignCenter).SetDynamicColors(true)
	statsView := tview.NewTextView().SetDynamicColors(true)
	detailsView := tview.NewTextView().SetDynamicColors(true).SetWrap(true).SetWordWrap(true)

	show := func(index int) {
		headerView.SetText(browser.header())
		if index < 0 || index >= browser.len() {
			return
		}
		failure := results.Details[index]
		statsView.SetText(ev.formatFailureStats(failure, index+1))
		detailsView.SetText(ev.formatFailureDetails(failure)).ScrollToBeginning()
	}
	list.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		show(index)
	})

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEnter || event.Key() == tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case event.Key() == tcell.KeyRune && (event.Rune() == 'r' || event.Rune() == 'R'):
			index := list.GetCurrentItem()
			if err := browser.toggle(index); err != nil {
				log.WithError(err).Warn("failed to save resolved status")
			}
			list.SetItemText(index, browser.itemText(index), "")
			show(index)
			return nil
		}
		return event
	})
	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyLeft || event.Key() == tcell.KeyEsc {
			app.SetFocus(list)
			return nil
		}
		return event
	})

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(statsView, 2, 0, false).
		AddItem(detailsView, 0, 1, false)
	body := tview.NewFlex().
		AddItem(list, 0, 1, true).
		AddItem(right, 0, 2, false)
	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(headerView, 2, 0, false).
		AddItem(body, 0, 1, true)

	show(0)
	if err := app.SetRoot(layout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func failureTitle(failure domain.TestFailure, number int) string {
	if failure.DisplayName == "" {
		return fmt.Sprintf("Test %d", number)
	}
	return failure.Class + "." + failure.DisplayName
}

// formatFailureDetails renders one failure with tview color tags
func (ev *ErrorViewer) formatFailureDetails(failure domain.TestFailure) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "[red]✗ Test: %s[white]\n\n", tview.Escape(failureTitle(failure, 0)))
	if failure.Source != "" {
		fmt.Fprintf(&builder, "[cyan]Suite: %s[white]\n", tview.Escape(failure.Source))
	}
	fmt.Fprintf(&builder, "[cyan]Variant: %d[white]\n\n", failure.Variant)

	if failure.Message != "" {
		fmt.Fprintf(&builder, "[yellow]Message:[white]\n%s\n\n", tview.Escape(failure.Message))
	}

	// Captured output, last lines only
	if failure.Output != "" {
		lines := strings.Split(strings.TrimRight(failure.Output, "\n"), "\n")
		fmt.Fprintf(&builder, "[yellow]Output:[white]\n")
		if len(lines) > maxOutputLines {
			fmt.Fprintf(&builder, "  [gray]... %d earlier lines[white]\n", len(lines)-maxOutputLines)
			lines = lines[len(lines)-maxOutputLines:]
		}
		for _, line := range lines {
			fmt.Fprintf(&builder, "  %s\n", tview.Escape(line))
		}
	}

	return builder.String()
}

func (ev *ErrorViewer) formatFailureStats(failure domain.TestFailure, number int) string {
	path := failure.Source
	if path == "" {
		path = "Unknown suite"
	}
	return fmt.Sprintf("[cyan]suite:[white] [yellow]%s[white]::[yellow]%s[white]\n",
		tview.Escape(path), tview.Escape(failureTitle(failure, number)))
}
