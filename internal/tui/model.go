// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

// Package tui renders the wizard as a bubbletea program: a step list pane,
// a log pane for the selected step, a status bar and a help legend.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/monadic/stepwise/internal/runner"
	"github.com/monadic/stepwise/internal/step"
	"github.com/monadic/stepwise/internal/view"
	"github.com/monadic/stepwise/internal/wizard"
)

// chrome is the number of terminal rows not available to log lines:
// header, pane borders, log title, scroll indicator, status bar and help.
const chrome = 10

// Wizard styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			MarginBottom(1)

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	paneActiveStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	checkboxOn = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	checkboxOff = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	helpStyle = lipgloss.NewStyle().
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))
)

// runnerEventMsg carries one runner event into the update loop.
type runnerEventMsg runner.Event

// Model is the bubbletea model for the wizard.
type Model struct {
	ctl     *wizard.Controller
	title   string
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int
	height  int
}

// New creates a model that drives ctl.
func New(ctl *wizard.Controller, title string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))

	return Model{
		ctl:     ctl,
		title:   title,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: s,
		width:   80,
		height:  24,
	}
}

// Controller returns the controller the model drives.
func (m Model) Controller() *wizard.Controller { return m.ctl }

// Init starts the spinner and the runner event pump
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForEvent(m.ctl),
	)
}

// waitForEvent blocks for the next runner event; it is re-issued after
// every event so the pump keeps running for the whole session.
func waitForEvent(ctl *wizard.Controller) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-ctl.Events():
			return runnerEventMsg(ev)
		case <-ctl.Done():
			return nil
		}
	}
}

// Update handles input, resize, spinner and runner events
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		prompting := m.ctl.Prompting()
		if prompting {
			if i, ok := appIndex(msg); ok {
				m.ctl.ToggleApp(i)
				return m, nil
			}
		}
		cmd := m.keys.command(msg, prompting)
		m.ctl.Dispatch(cmd)
		if cmd == wizard.CmdQuit {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ctl.SetHeight(m.logHeight())
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case runnerEventMsg:
		m.ctl.HandleEvent(runner.Event(msg))
		return m, waitForEvent(m.ctl)
	}
	return m, nil
}

func (m Model) logHeight() int {
	return max(m.height-chrome, 3)
}

// View renders the UI
func (m Model) View() string {
	if m.ctl.Quitting() {
		return ""
	}
	vm := view.Build(m.ctl.State())

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.renderPanes(vm))
	b.WriteString("\n")
	b.WriteString(statusBarStyle.Render(vm.StatusBar))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(legend(vm.Help))))
	return b.String()
}

// renderPanes renders the step list and the log side by side
func (m Model) renderPanes(vm view.Model) string {
	leftWidth := max(m.width/3-2, 24)
	rightWidth := max(m.width-leftWidth-6, 30)
	paneHeight := m.logHeight() + 2

	right := m.renderLog(vm.Log)
	rightStyle := paneStyle
	if vm.Prompt != nil {
		right = m.renderPrompt(vm.Prompt)
		rightStyle = paneActiveStyle
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		paneActiveStyle.Width(leftWidth).Height(paneHeight).Render(m.renderSteps(vm.Items)),
		rightStyle.Width(rightWidth).Height(paneHeight).Render(right),
	)
}

func (m Model) renderSteps(items []view.Item) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("Steps"))
	b.WriteString("\n")
	for _, it := range items {
		badge := it.Badge
		switch it.Status {
		case step.Running:
			badge = "[" + m.spinner.View() + "]"
		case step.Success:
			badge = successStyle.Render(badge)
		case step.Failed:
			badge = errorStyle.Render(badge)
		case step.Skipped:
			badge = dimStyle.Render(badge)
		}

		name := it.Name
		prefix := "  "
		if it.Selected {
			prefix = "> "
			name = selectedStyle.Render(name)
		}
		b.WriteString(prefix + badge + " " + name + "\n")
	}
	return b.String()
}

func (m Model) renderLog(w view.LogWindow) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render(w.Title))
	b.WriteString("\n")
	if w.Total == 0 {
		b.WriteString(dimStyle.Render("No output yet. Press enter to run this step."))
		b.WriteString("\n")
	}
	for _, line := range w.Lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	var more []string
	if w.MoreAbove {
		more = append(more, fmt.Sprintf("↑ %d more", w.Offset))
	}
	if w.MoreBelow {
		more = append(more, fmt.Sprintf("↓ %d more", w.Total-w.Offset-len(w.Lines)))
	}
	if len(more) > 0 {
		b.WriteString(dimStyle.Render(strings.Join(more, "  ")))
	}
	return b.String()
}

func (m Model) renderPrompt(p *view.PromptView) string {
	var b strings.Builder
	b.WriteString(selectedStyle.Render(p.Title))
	b.WriteString("\n\n")
	for _, opt := range p.Options {
		prefix := "  "
		if opt.Cursor {
			prefix = "> "
		}
		label := opt.Label()
		if opt.Checked {
			label = checkboxOn.Render(label)
		} else {
			label = checkboxOff.Render(label)
		}
		b.WriteString(prefix + label + "\n")
		if opt.Cursor {
			b.WriteString("    " + dimStyle.Render("$ "+opt.Install) + "\n")
		}
	}
	return b.String()
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, ctl *wizard.Controller, title string, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctl, title), opts...)
	_, err := p.Run()
	return err
}
