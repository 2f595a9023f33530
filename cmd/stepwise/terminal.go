// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"os"
	"os/exec"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// isInteractive reports whether stdin and stdout are both terminals.
func isInteractive() bool {
	return isTerminal(os.Stdout.Fd()) && isTerminal(os.Stdin.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// configureColor picks the color profile for lipgloss output.
func configureColor(noColor bool) {
	if noColor || os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stdout.Fd()) {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.ColorProfile())
}

// confirmSudo asks whether to refresh sudo credentials before the UI takes
// over the terminal.
func confirmSudo(ctx context.Context) (bool, error) {
	ok := true
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Refresh sudo credentials now?").
				Description("Some steps use sudo. Entering your password here avoids a hidden prompt inside the wizard.").
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).RunWithContext(ctx)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// warmSudo runs "sudo -v" attached to the terminal.
func warmSudo(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "sudo", "-v")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
