// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

package handler

import (
	"fmt"

	"github.com/monadic/stepwise/internal/step"
)

// DefaultEditor is used for core.editor when a git_config step sets none.
const DefaultEditor = "vim"

// gitDefaults are the opinionated settings every git_config step applies.
var gitDefaults = []SetGitConfig{
	{Key: "init.defaultBranch", Value: "main"},
	{Key: "pull.rebase", Value: "false"},
	{Key: "core.autocrlf", Value: "input"},
	{Key: "color.ui", Value: "auto"},
	{Key: "core.editor", Value: DefaultEditor},
}

// ScriptHandler plans script steps
type ScriptHandler struct{}

func (ScriptHandler) Kind() step.Kind { return step.KindScript }

func (ScriptHandler) Plan(st *step.Step) ([]Action, error) {
	p, ok := st.Params.(step.ScriptParams)
	if !ok {
		return nil, paramsMismatch(st)
	}
	return []Action{RunCommand{Command: p.Script}}, nil
}

// AppendTextHandler plans add_text steps
type AppendTextHandler struct{}

func (AppendTextHandler) Kind() step.Kind { return step.KindAppendText }

func (AppendTextHandler) Plan(st *step.Step) ([]Action, error) {
	p, ok := st.Params.(step.AppendTextParams)
	if !ok {
		return nil, paramsMismatch(st)
	}
	return []Action{AppendToFile{Path: p.File, Text: p.Content}}, nil
}

// GitConfigHandler plans git_config steps: the fixed defaults, the optional
// identity, and an editor override when one is configured.
type GitConfigHandler struct{}

func (GitConfigHandler) Kind() step.Kind { return step.KindGitConfig }

func (GitConfigHandler) Plan(st *step.Step) ([]Action, error) {
	p, ok := st.Params.(step.GitConfigParams)
	if !ok {
		return nil, paramsMismatch(st)
	}

	plan := make([]Action, 0, len(gitDefaults)+3)
	for _, d := range gitDefaults {
		plan = append(plan, d)
	}
	if p.UserName != "" {
		plan = append(plan, SetGitConfig{Key: "user.name", Value: p.UserName})
	}
	if p.UserEmail != "" {
		plan = append(plan, SetGitConfig{Key: "user.email", Value: p.UserEmail})
	}
	if p.DefaultEditor != "" {
		plan = append(plan, SetGitConfig{Key: "core.editor", Value: p.DefaultEditor})
	}
	return plan, nil
}

// AppSelectionHandler plans app_selection steps. The install commands are
// produced later by InstallPlan once the selection is confirmed.
type AppSelectionHandler struct{}

func (AppSelectionHandler) Kind() step.Kind { return step.KindAppSelection }

func (AppSelectionHandler) Plan(st *step.Step) ([]Action, error) {
	p, ok := st.Params.(step.AppSelectionParams)
	if !ok {
		return nil, paramsMismatch(st)
	}
	apps := make([]step.AppChoice, len(p.Apps))
	for i, app := range p.Apps {
		app.Selected = false
		apps[i] = app
	}
	return []Action{PromptSelection{Apps: apps}}, nil
}

func paramsMismatch(st *step.Step) error {
	return fmt.Errorf("step %q: kind %s has params of type %T", st.Name, st.Kind, st.Params)
}
