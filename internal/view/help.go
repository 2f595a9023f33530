// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

package view

// HelpEntry is one key and its description in the legend.
type HelpEntry struct {
	Key  string
	Desc string
}

// Legend entries for the step list.
var (
	HelpRun    = HelpEntry{Key: "enter", Desc: "run"}
	HelpNext   = HelpEntry{Key: "n/→", Desc: "next"}
	HelpPrev   = HelpEntry{Key: "p/←", Desc: "prev"}
	HelpSkip   = HelpEntry{Key: "s", Desc: "skip"}
	HelpScroll = HelpEntry{Key: "↑/↓", Desc: "scroll"}
	HelpPage   = HelpEntry{Key: "pgup/pgdn", Desc: "page"}
	HelpQuit   = HelpEntry{Key: "q", Desc: "quit"}
)

// Legend entries while an app selection is pending.
var (
	HelpMove    = HelpEntry{Key: "↑/↓", Desc: "move"}
	HelpToggle  = HelpEntry{Key: "space/1-9", Desc: "toggle"}
	HelpConfirm = HelpEntry{Key: "enter", Desc: "confirm"}
	HelpCancel  = HelpEntry{Key: "esc", Desc: "cancel"}
)

// Legend returns the static help legend for the current mode.
func Legend(prompting bool) []HelpEntry {
	if prompting {
		return []HelpEntry{HelpMove, HelpToggle, HelpConfirm, HelpCancel, HelpQuit}
	}
	return []HelpEntry{HelpRun, HelpNext, HelpPrev, HelpSkip, HelpScroll, HelpPage, HelpQuit}
}
