// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

package wizard

// Command is a discrete user intent decoded from terminal input.
type Command int

const (
	CmdNone Command = iota
	CmdRun
	CmdSkip
	CmdNext
	CmdPrev
	CmdScrollUp
	CmdScrollDown
	CmdPageUp
	CmdPageDown
	CmdQuit

	// Only meaningful while a selection is pending.
	CmdCursorUp
	CmdCursorDown
	CmdToggle
	CmdConfirm
	CmdCancel
)

var commandNames = map[Command]string{
	CmdNone:       "none",
	CmdRun:        "run",
	CmdSkip:       "skip",
	CmdNext:       "next",
	CmdPrev:       "prev",
	CmdScrollUp:   "scroll-up",
	CmdScrollDown: "scroll-down",
	CmdPageUp:     "page-up",
	CmdPageDown:   "page-down",
	CmdQuit:       "quit",
	CmdCursorUp:   "cursor-up",
	CmdCursorDown: "cursor-down",
	CmdToggle:     "toggle",
	CmdConfirm:    "confirm",
	CmdCancel:     "cancel",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Dispatch applies cmd. Selection commands are ignored when no selection
// is pending.
func (c *Controller) Dispatch(cmd Command) {
	switch cmd {
	case CmdRun:
		c.Run()
	case CmdSkip:
		c.Skip()
	case CmdNext:
		c.Next()
	case CmdPrev:
		c.Prev()
	case CmdScrollUp:
		c.ScrollUp()
	case CmdScrollDown:
		c.ScrollDown()
	case CmdPageUp:
		c.PageUp()
	case CmdPageDown:
		c.PageDown()
	case CmdQuit:
		c.Quit()
	case CmdCursorUp:
		c.MoveCursor(-1)
	case CmdCursorDown:
		c.MoveCursor(1)
	case CmdToggle:
		c.ToggleCursor()
	case CmdConfirm:
		c.ConfirmSelection()
	case CmdCancel:
		c.CancelSelection()
	}
}
