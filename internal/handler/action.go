// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

package handler

import (
	"fmt"

	"github.com/monadic/stepwise/internal/step"
)

// Action is one concrete operation in a step's plan. The set of
// implementations is closed: RunCommand, AppendToFile, SetGitConfig and
// PromptSelection.
type Action interface {
	// Describe returns the header line logged before the action runs.
	Describe() string
	isAction()
}

// RunCommand runs a command string through the shell.
type RunCommand struct {
	Command string `json:"command"`
}

// AppendToFile appends Text to the file at Path.
type AppendToFile struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// SetGitConfig sets a global git configuration key.
type SetGitConfig struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PromptSelection suspends the run until the user picks from Apps.
type PromptSelection struct {
	Apps []step.AppChoice `json:"apps"`
}

func (a RunCommand) Describe() string      { return "--- run: " + a.Command + " ---" }
func (a AppendToFile) Describe() string    { return "--- append to " + a.Path + " ---" }
func (a SetGitConfig) Describe() string    { return fmt.Sprintf("--- git config %s ---", a.Key) }
func (a PromptSelection) Describe() string { return fmt.Sprintf("--- select apps (%d available) ---", len(a.Apps)) }

func (RunCommand) isAction()      {}
func (AppendToFile) isAction()    {}
func (SetGitConfig) isAction()    {}
func (PromptSelection) isAction() {}

// InstallPlan expands a confirmed selection into one RunCommand per
// selected app, in list order.
func InstallPlan(selected []step.AppChoice) []Action {
	plan := make([]Action, 0, len(selected))
	for _, app := range selected {
		plan = append(plan, RunCommand{Command: app.Install})
	}
	return plan
}
