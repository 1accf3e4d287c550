package reporter

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// TUI styles
var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	runStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")) // cyan
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const barWidth = 30

type tickMsg time.Time

// DoneMsg tells the TUI the organize run has finished.
type DoneMsg struct{}

// TUIModel is the Bubbletea model for the live organize display.
type TUIModel struct {
	root      string
	dryRun    bool
	snapshot  func() ProgressSnapshot
	cancelRun func() // called on 'q' to cancel the run context

	progress ProgressSnapshot
	frame    int
	width    int
	height   int
	done     bool
}

// NewTUIModel creates a new TUI model polling snapshot for counters.
func NewTUIModel(root string, dryRun bool, snapshot func() ProgressSnapshot, cancelRun func()) TUIModel {
	return TUIModel{
		root:      root,
		dryRun:    dryRun,
		snapshot:  snapshot,
		cancelRun: cancelRun,
	}
}

// Init implements tea.Model.
func (m TUIModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancelRun != nil {
				m.cancelRun()
			}
			m.done = true
			return m, tea.Quit
		}

	case tickMsg:
		m.progress = m.snapshot()
		m.frame++
		return m, tickCmd()

	case DoneMsg:
		m.progress = m.snapshot()
		m.done = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View implements tea.Model.
func (m TUIModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	p := m.progress
	var b strings.Builder

	header := "dirsort " + m.root
	if m.dryRun {
		header += "  (dry run)"
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	b.WriteString(m.progressLine(p))
	b.WriteString("\n\n")

	lines := 0
	for _, tag := range SortedTags(p.Counts) {
		b.WriteString(doneStyle.Render(fmt.Sprintf("  ✓ [.%s] %d", tag, p.Counts[tag])))
		b.WriteString("\n")
		lines++
	}
	if p.Skipped > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ─ skipped %d", p.Skipped)))
		b.WriteString("\n")
		lines++
	}
	for _, e := range p.Errors {
		b.WriteString(failedStyle.Render("  ✗ " + truncate(e, 80)))
		b.WriteString("\n")
		lines++
	}

	// pad to fill screen: header + progress + blank + lines + help
	for i := 3 + lines; i < m.height-1; i++ {
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("  q: quit"))
	return b.String()
}

func (m TUIModel) progressLine(p ProgressSnapshot) string {
	filled := 0
	if p.Total > 0 {
		filled = p.Processed * barWidth / p.Total
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	icon := spinnerChars[m.frame%len(spinnerChars)]
	if m.done || p.Done {
		icon = "✓"
	}

	parts := []string{
		runStyle.Render(fmt.Sprintf("%s %s %d/%d", icon, bar, p.Processed, p.Total)),
		doneStyle.Render(fmt.Sprintf("%d moved", p.Moved)),
	}
	if p.Failed > 0 {
		parts = append(parts, failedStyle.Render(fmt.Sprintf("%d failed", p.Failed)))
	}
	return "  " + strings.Join(parts, "  ")
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
