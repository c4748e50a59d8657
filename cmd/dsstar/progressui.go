// Live progress view for the `run` subcommand, adapted from the teacher's
// cmd/nerd/ui.CampaignPageModel: a bubbletea Model wrapping a bubbles
// progress bar and viewport, fed through tea.Program.Send (see runWithUI)
// instead of a tea.Cmd poller, since the orchestrator runs on its own
// goroutine and reports through progress.Emitter.
package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/orchestrator"
	dsprogress "github.com/MohamedAKonsowa/geappliances-ai-tool-prototype/internal/progress"
)

var (
	phaseStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	headerStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
)

// progressEventMsg wraps one progress.Event for delivery into the bubbletea
// Update loop (tea.Program.Send is the only goroutine-safe way in).
type progressEventMsg dsprogress.Event

// runDoneMsg signals the background orchestrator.Run call has returned.
type runDoneMsg struct {
	result *orchestrator.RunResult
	err    error
}

type progressModel struct {
	bar      progress.Model
	vp       viewport.Model
	lines    []string
	maxIters int
	width    int
	height   int
	done     bool
	final    *runDoneMsg
}

func newProgressModel(maxIters int) progressModel {
	bar := progress.New(progress.WithDefaultGradient())
	vp := viewport.New(80, 16)
	return progressModel{bar: bar, vp: vp, maxIters: maxIters}
}

func (m progressModel) Init() tea.Cmd { return nil }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.bar.Width = msg.Width - 4
		m.vp.Width = msg.Width
		m.vp.Height = msg.Height - 6
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}

	case progressEventMsg:
		m.lines = append(m.lines, formatEvent(dsprogress.Event(msg)))
		m.vp.SetContent(strings.Join(m.lines, "\n"))
		m.vp.GotoBottom()
		if msg.Iteration > 0 && m.maxIters > 0 {
			cmd := m.bar.SetPercent(float64(msg.Iteration) / float64(m.maxIters))
			return m, cmd
		}
		return m, nil

	case runDoneMsg:
		m.done = true
		m.final = &msg
		return m, tea.Quit

	case progress.FrameMsg:
		newModel, cmd := m.bar.Update(msg)
		m.bar = newModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("DS-Star — synthesizing"))
	b.WriteString("\n")
	b.WriteString(m.bar.View())
	b.WriteString("\n\n")
	b.WriteString(m.vp.View())
	if m.done {
		b.WriteString("\n\nrun finished\n")
	}
	return b.String()
}

func formatEvent(ev dsprogress.Event) string {
	switch ev.Type {
	case dsprogress.TypeStart:
		return phaseStyle.Render(fmt.Sprintf("run %s started (max %d iterations)", ev.RunID, ev.MaxIters))
	case dsprogress.TypeSuccess:
		suffix := ""
		if ev.Fallback {
			suffix = " (fallback)"
		}
		return okStyle.Render(fmt.Sprintf("iteration %d: success%s", ev.Iteration, suffix))
	case dsprogress.TypeComplete:
		return phaseStyle.Render("run complete")
	case dsprogress.TypeError:
		return failStyle.Render("error: " + ev.Error)
	case dsprogress.TypeIter:
		style := okStyle
		switch ev.Status {
		case dsprogress.StatusRejected, dsprogress.StatusFailed, dsprogress.StatusSecurityFailed:
			style = failStyle
		case dsprogress.StatusAdvisoryIssues, dsprogress.StatusWorking:
			style = warnStyle
		}
		line := fmt.Sprintf("iter %d  %-14s %s", ev.Iteration, ev.Phase, ev.Status)
		if len(ev.Issues) > 0 {
			line += "\n      issues: " + strings.Join(ev.Issues, "; ")
		}
		if len(ev.Violations) > 0 {
			line += "\n      violations: " + strings.Join(ev.Violations, ", ")
		}
		if len(ev.Errors) > 0 {
			line += "\n      errors: " + strings.Join(ev.Errors, "; ")
		}
		return style.Render(line)
	default:
		return fmt.Sprintf("%s", ev.Type)
	}
}
