// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

package handler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monadic/stepwise/internal/clierr"
	"github.com/monadic/stepwise/internal/step"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(ScriptHandler{})
	reg.Register(AppendTextHandler{})

	assert.Equal(t, []step.Kind{step.KindAppendText, step.KindScript}, reg.Kinds())

	h, ok := reg.Get(step.KindScript)
	require.True(t, ok)
	assert.Equal(t, step.KindScript, h.Kind())

	_, ok = reg.Get(step.KindGitConfig)
	assert.False(t, ok)

	_, err := reg.Plan(step.New("git", step.GitConfigParams{}))
	assert.Error(t, err)
}

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	assert.Len(t, reg.Kinds(), len(step.Kinds))
	for _, k := range step.Kinds {
		_, ok := reg.Get(k)
		assert.True(t, ok, "missing handler for %s", k)
	}
}

func TestPlanScript(t *testing.T) {
	plan, err := DefaultRegistry().Plan(step.New("s", step.ScriptParams{Script: "echo hi"}))
	require.NoError(t, err)
	assert.Equal(t, []Action{RunCommand{Command: "echo hi"}}, plan)
}

func TestPlanAppendText(t *testing.T) {
	plan, err := DefaultRegistry().Plan(step.New("a", step.AppendTextParams{File: "~/.bashrc", Content: "alias ll='ls -l'"}))
	require.NoError(t, err)
	assert.Equal(t, []Action{AppendToFile{Path: "~/.bashrc", Text: "alias ll='ls -l'"}}, plan)
}

func TestPlanGitConfig(t *testing.T) {
	tests := []struct {
		name   string
		params step.GitConfigParams
		extra  []Action
	}{
		{
			name:   "defaults only",
			params: step.GitConfigParams{},
		},
		{
			name:   "editor override",
			params: step.GitConfigParams{DefaultEditor: "nano"},
			extra:  []Action{SetGitConfig{Key: "core.editor", Value: "nano"}},
		},
		{
			name:   "identity and editor",
			params: step.GitConfigParams{DefaultEditor: "code --wait", UserName: "Ada", UserEmail: "ada@example.com"},
			extra: []Action{
				SetGitConfig{Key: "user.name", Value: "Ada"},
				SetGitConfig{Key: "user.email", Value: "ada@example.com"},
				SetGitConfig{Key: "core.editor", Value: "code --wait"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := DefaultRegistry().Plan(step.New("g", tt.params))
			require.NoError(t, err)
			require.Len(t, plan, len(gitDefaults)+len(tt.extra))
			for i, d := range gitDefaults {
				assert.Equal(t, d, plan[i])
			}
			assert.Equal(t, tt.extra, nilIfEmpty(plan[len(gitDefaults):]))
		})
	}
}

func nilIfEmpty(a []Action) []Action {
	if len(a) == 0 {
		return nil
	}
	return a
}

func TestPlanAppSelectionResetsSelection(t *testing.T) {
	params := step.AppSelectionParams{Apps: []step.AppChoice{
		{Name: "htop", Version: "3", Install: "apt-get install -y htop", Selected: true},
		{Name: "jq", Version: "1.7", Install: "apt-get install -y jq"},
	}}
	plan, err := DefaultRegistry().Plan(step.New("apps", params))
	require.NoError(t, err)
	require.Len(t, plan, 1)

	prompt, ok := plan[0].(PromptSelection)
	require.True(t, ok)
	require.Len(t, prompt.Apps, 2)
	assert.False(t, prompt.Apps[0].Selected)
	assert.Equal(t, "htop", prompt.Apps[0].Name)
	// The step's own params are left untouched.
	assert.True(t, params.Apps[0].Selected)
}

func TestPlanParamsMismatch(t *testing.T) {
	st := &step.Step{Name: "broken", Kind: step.KindScript, Params: step.GitConfigParams{}}
	_, err := DefaultRegistry().Plan(st)
	assert.ErrorContains(t, err, "broken")
}

func TestInstallPlan(t *testing.T) {
	assert.Empty(t, InstallPlan(nil))

	plan := InstallPlan([]step.AppChoice{
		{Name: "a", Install: "install a"},
		{Name: "b", Install: "install b"},
	})
	assert.Equal(t, []Action{RunCommand{Command: "install a"}, RunCommand{Command: "install b"}}, plan)
}

func TestAppendText(t *testing.T) {
	tests := []struct {
		name     string
		original *string
		content  string
		want     string
	}{
		{name: "new file", original: nil, content: "C", want: "C"},
		{name: "empty file", original: ptr(""), content: "C", want: "C"},
		{name: "missing trailing newline", original: ptr("X"), content: "C", want: "X\nC"},
		{name: "trailing newline present", original: ptr("X\n"), content: "C\n", want: "X\nC\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "target")
			if tt.original != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.original), 0644))
			}
			_, err := AppendText(path, tt.content)
			require.NoError(t, err)

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestAppendTextRepeatsWithoutDedup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rc")
	require.NoError(t, os.WriteFile(path, []byte("X"), 0644))

	_, err := AppendText(path, "C")
	require.NoError(t, err)
	_, err = AppendText(path, "C")
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "X\nC\nC", string(got))
}

func TestAppendTextIOError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "file")
	_, err := AppendText(path, "C")
	require.Error(t, err)
	assert.True(t, clierr.IsIO(err))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".bashrc"), ExpandHome("~/.bashrc"))
	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, "/etc/hosts", ExpandHome("/etc/hosts"))
	assert.Equal(t, "~user/x", ExpandHome("~user/x"))
}

func ptr(s string) *string { return &s }
