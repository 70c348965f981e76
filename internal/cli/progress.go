package cli

import (
	"fmt"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/lfmonteiro/statusdeck/internal/service"
)

const pollInterval = 200 * time.Millisecond

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// tickMsg triggers refreshing the task snapshot.
type tickMsg time.Time

// progressModel is the bubbletea model for batch processing progress.
type progressModel struct {
	task     *service.Task
	view     service.TaskView
	dryRun   bool
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
}

func newProgressModel(task *service.Task, dryRun bool) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		task:     task,
		view:     task.View(),
		dryRun:   dryRun,
		progress: prog,
		theme:    defaultTheme,
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.progress.Init(),
	)
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		m.view = m.task.View()

		switch m.view.Status {
		case service.TaskStatusCompleted, service.TaskStatusFailed:
			m.done = true
			return m, tea.Quit
		}

		return m, tickCmd()

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m progressModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	var pct float64
	if m.view.Total > 0 {
		pct = float64(m.view.Progress) / float64(m.view.Total)
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.view.Status))
	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d files", m.view.Progress, m.view.Total)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to continue without display")

	return fmt.Sprintf("%s %s %s\n%s\n", status, progressBar, counts, hint)
}

// finalView renders the completion message.
func (m progressModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render("\nProcessing continues, final summary follows.\n")
	}

	if m.view.Status == service.TaskStatusFailed {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Processing failed: %s\n", m.view.Error))
	}

	r := m.view.Result
	if r == nil {
		return m.theme.completedStyle().Render("✓ Completed\n")
	}

	var output string
	output += m.theme.completedStyle().Render("✓ Completed") + "\n\n"
	output += fmt.Sprintf("  Files processed: %d\n", r.FilesProcessed)
	output += fmt.Sprintf("  Files skipped:   %d\n", r.FilesSkipped)
	if m.dryRun {
		output += "  Dry run, nothing saved.\n"
	} else {
		output += fmt.Sprintf("  Reports saved:   %d\n", r.ReportsSaved)
	}
	if len(r.Errors) > 0 {
		output += m.theme.errorStyle().Render(fmt.Sprintf("\nFailures (%d):\n", len(r.Errors)))
		for _, e := range r.Errors {
			output += fmt.Sprintf("  • %s\n", e)
		}
	}
	return output
}

// tickCmd returns a command that sends a tick after the poll interval.
func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// runBatchProgress runs the interactive progress UI until the task reaches
// a terminal state or the user quits the display. It reports whether the
// user quit early, in which case the caller prints the plain summary once
// the batch finishes.
func runBatchProgress(task *service.Task, dryRun bool) (quit bool, err error) {
	model := newProgressModel(task, dryRun)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(progressModel); ok {
		return m.quitting, nil
	}
	return false, nil
}
