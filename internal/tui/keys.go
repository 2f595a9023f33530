// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/monadic/stepwise/internal/view"
	"github.com/monadic/stepwise/internal/wizard"
)

// keyMap holds the bindings for both modes. Prompt bindings are only
// consulted while an app selection is pending.
type keyMap struct {
	Run      key.Binding
	Next     key.Binding
	Prev     key.Binding
	Skip     key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Quit     key.Binding

	Toggle  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Run:      key.NewBinding(key.WithKeys("enter"), withHelp(view.HelpRun)),
		Next:     key.NewBinding(key.WithKeys("n", "right"), withHelp(view.HelpNext)),
		Prev:     key.NewBinding(key.WithKeys("p", "left"), withHelp(view.HelpPrev)),
		Skip:     key.NewBinding(key.WithKeys("s"), withHelp(view.HelpSkip)),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), withHelp(view.HelpQuit)),
		Toggle:   key.NewBinding(key.WithKeys(" ", "x"), withHelp(view.HelpToggle)),
		Confirm:  key.NewBinding(key.WithKeys("enter"), withHelp(view.HelpConfirm)),
		Cancel:   key.NewBinding(key.WithKeys("esc"), withHelp(view.HelpCancel)),
	}
}

func withHelp(e view.HelpEntry) key.BindingOpt {
	return key.WithHelp(e.Key, e.Desc)
}

// command decodes a key into a controller command for the current mode.
func (k keyMap) command(msg tea.KeyMsg, prompting bool) wizard.Command {
	if key.Matches(msg, k.Quit) {
		return wizard.CmdQuit
	}
	if prompting {
		switch {
		case key.Matches(msg, k.Up):
			return wizard.CmdCursorUp
		case key.Matches(msg, k.Down):
			return wizard.CmdCursorDown
		case key.Matches(msg, k.Toggle):
			return wizard.CmdToggle
		case key.Matches(msg, k.Confirm):
			return wizard.CmdConfirm
		case key.Matches(msg, k.Cancel):
			return wizard.CmdCancel
		}
		return wizard.CmdNone
	}

	switch {
	case key.Matches(msg, k.Run):
		return wizard.CmdRun
	case key.Matches(msg, k.Next):
		return wizard.CmdNext
	case key.Matches(msg, k.Prev):
		return wizard.CmdPrev
	case key.Matches(msg, k.Skip):
		return wizard.CmdSkip
	case key.Matches(msg, k.Up):
		return wizard.CmdScrollUp
	case key.Matches(msg, k.Down):
		return wizard.CmdScrollDown
	case key.Matches(msg, k.PageUp):
		return wizard.CmdPageUp
	case key.Matches(msg, k.PageDown):
		return wizard.CmdPageDown
	}
	return wizard.CmdNone
}

// appIndex returns the zero-based app index for keys 1-9.
func appIndex(msg tea.KeyMsg) (int, bool) {
	s := msg.String()
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '1'), true
}

// legend adapts the view's help legend to bubbles/help.
type legend []view.HelpEntry

func (l legend) ShortHelp() []key.Binding {
	bindings := make([]key.Binding, len(l))
	for i, e := range l {
		bindings[i] = key.NewBinding(key.WithKeys(e.Key), withHelp(e))
	}
	return bindings
}

func (l legend) FullHelp() [][]key.Binding {
	return [][]key.Binding{l.ShortHelp()}
}
