// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

package step

// Params is the kind-specific payload of a step. The set of implementations
// is closed; handlers switch on the concrete type.
type Params interface {
	Kind() Kind
	isParams()
}

// ScriptParams runs a single shell command.
type ScriptParams struct {
	Script string `json:"script"`
}

// AppendTextParams appends Content to File.
type AppendTextParams struct {
	File    string `json:"file"`
	Content string `json:"content"`
}

// GitConfigParams configures global git settings.
type GitConfigParams struct {
	DefaultEditor string `json:"default_editor,omitempty"`
	UserName      string `json:"user_name,omitempty"`
	UserEmail     string `json:"user_email,omitempty"`
}

// AppSelectionParams offers a checklist of installable apps.
type AppSelectionParams struct {
	Apps []AppChoice `json:"apps"`
}

// AppChoice is one installable app. Selected is per-run state and is reset
// each time the step is entered.
type AppChoice struct {
	Name     string `json:"name"`
	Version  string `json:"version,omitempty"`
	Install  string `json:"install"`
	Selected bool   `json:"-"`
}

func (ScriptParams) Kind() Kind       { return KindScript }
func (AppendTextParams) Kind() Kind   { return KindAppendText }
func (GitConfigParams) Kind() Kind    { return KindGitConfig }
func (AppSelectionParams) Kind() Kind { return KindAppSelection }

func (ScriptParams) isParams()       {}
func (AppendTextParams) isParams()   {}
func (GitConfigParams) isParams()    {}
func (AppSelectionParams) isParams() {}
