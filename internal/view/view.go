// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

// Package view derives render-ready data from wizard state. Build is a pure
// function; renderers only style what it returns.
package view

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/monadic/stepwise/internal/step"
)

// State is the input to Build: a snapshot of everything the controller owns.
type State struct {
	Steps    []step.Snapshot
	Selected int
	Scroll   int
	Height   int // visible log lines; <= 0 shows the whole log
	Prompt   *Prompt
}

// Prompt is a pending app selection.
type Prompt struct {
	Step   string
	Apps   []step.AppChoice
	Cursor int
}

// Model is the render model for one frame.
type Model struct {
	Items     []Item
	Log       LogWindow
	Prompt    *PromptView
	StatusBar string
	Help      []HelpEntry
}

// Item is one row in the step list.
type Item struct {
	Name     string
	Status   step.Status
	Badge    string
	Selected bool
}

// LogWindow is the visible slice of the selected step's log.
type LogWindow struct {
	Title     string
	Lines     []string
	Offset    int
	Total     int
	MoreAbove bool
	MoreBelow bool
}

// PromptView is the checklist shown while a selection is pending.
type PromptView struct {
	Title   string
	Options []Option
}

// Option is one app in the checklist.
type Option struct {
	Index   int
	Name    string
	Version string
	Install string
	Checked bool
	Cursor  bool
}

// Label renders the option as a single checklist row.
func (o Option) Label() string {
	mark := "[ ]"
	if o.Checked {
		mark = "[x]"
	}
	label := fmt.Sprintf("%s %d. %s", mark, o.Index+1, o.Name)
	if o.Version != "" {
		label += " (" + o.Version + ")"
	}
	return label
}

// Badge returns the list marker for a status.
func Badge(s step.Status) string {
	switch s {
	case step.Running:
		return "[>]"
	case step.Skipped:
		return "[-]"
	case step.Success:
		return "[✓]"
	case step.Failed:
		return "[✗]"
	default:
		return "[ ]"
	}
}

var titleCase = cases.Title(language.English)

// StatusLabel returns the display form of a status, e.g. "Running".
func StatusLabel(s step.Status) string {
	return titleCase.String(s.String())
}

// Build projects st into a render model.
func Build(st State) Model {
	m := Model{
		Items: make([]Item, len(st.Steps)),
		Help:  Legend(st.Prompt != nil),
	}
	for i, s := range st.Steps {
		m.Items[i] = Item{
			Name:     s.Name,
			Status:   s.Status,
			Badge:    Badge(s.Status),
			Selected: i == st.Selected,
		}
	}

	if st.Selected < 0 || st.Selected >= len(st.Steps) {
		m.StatusBar = fmt.Sprintf("Step 0/%d", len(st.Steps))
		return m
	}
	cur := st.Steps[st.Selected]
	m.Log = window(cur, st.Scroll, st.Height)
	m.StatusBar = fmt.Sprintf("Step %d/%d | Status: %s", st.Selected+1, len(st.Steps), StatusLabel(cur.Status))
	if st.Prompt != nil {
		m.Prompt = promptView(st.Prompt)
		m.StatusBar += " | Awaiting selection"
	}
	return m
}

// MaxScroll is the largest valid scroll offset for a log of total lines.
func MaxScroll(total, height int) int {
	if height <= 0 || total <= height {
		return 0
	}
	return total - height
}

func window(s step.Snapshot, scroll, height int) LogWindow {
	total := len(s.Log)
	offset := min(max(scroll, 0), MaxScroll(total, height))
	end := total
	if height > 0 {
		end = min(offset+height, total)
	}
	return LogWindow{
		Title:     fmt.Sprintf("%s [%s]", s.Name, StatusLabel(s.Status)),
		Lines:     s.Log[offset:end],
		Offset:    offset,
		Total:     total,
		MoreAbove: offset > 0,
		MoreBelow: end < total,
	}
}

func promptView(p *Prompt) *PromptView {
	pv := &PromptView{
		Title:   fmt.Sprintf("Select apps to install for %q", p.Step),
		Options: make([]Option, len(p.Apps)),
	}
	for i, app := range p.Apps {
		pv.Options[i] = Option{
			Index:   i,
			Name:    app.Name,
			Version: app.Version,
			Install: app.Install,
			Checked: app.Selected,
			Cursor:  i == p.Cursor,
		}
	}
	return pv
}
