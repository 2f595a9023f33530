// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monadic/stepwise/internal/clierr"
	"github.com/monadic/stepwise/internal/step"
)

const fullDoc = `
shell: /bin/bash
steps:
  - name: Update apt
    type: script
    pre_script: echo checking
    script: sudo apt-get update
    post_script: echo done
    workdir: /tmp
    env:
      DEBIAN_FRONTEND: noninteractive
  - name: Shell alias
    type: add_text
    params:
      file: ~/.bashrc
      content: alias ll='ls -alF'
  - name: Git
    type: git_config
    params:
      default_editor: nano
      user_name: Ada
      user_email: ada@example.com
  - name: Tools
    type: app_selection
    params:
      apps:
        - name: htop
          version: "3.3"
          install: sudo apt-get install -y htop
        - name: jq
          install: sudo apt-get install -y jq
`

func TestParseFullDocument(t *testing.T) {
	doc, err := Parse("steps.yaml", []byte(fullDoc))
	require.NoError(t, err)

	assert.Equal(t, "/bin/bash", doc.Shell)
	require.Len(t, doc.Steps, 4)

	s := doc.Steps[0]
	assert.Equal(t, "Update apt", s.Name)
	assert.Equal(t, step.KindScript, s.Kind)
	assert.Equal(t, step.ScriptParams{Script: "sudo apt-get update"}, s.Params)
	assert.Equal(t, "echo checking", s.PreScript)
	assert.Equal(t, "echo done", s.PostScript)
	assert.Equal(t, "/tmp", s.Dir)
	assert.Equal(t, map[string]string{"DEBIAN_FRONTEND": "noninteractive"}, s.Env)
	assert.Equal(t, step.Pending, s.Status())

	assert.Equal(t, step.AppendTextParams{File: "~/.bashrc", Content: "alias ll='ls -alF'"}, doc.Steps[1].Params)
	assert.Equal(t, step.GitConfigParams{DefaultEditor: "nano", UserName: "Ada", UserEmail: "ada@example.com"}, doc.Steps[2].Params)
	assert.Equal(t, step.AppSelectionParams{Apps: []step.AppChoice{
		{Name: "htop", Version: "3.3", Install: "sudo apt-get install -y htop"},
		{Name: "jq", Install: "sudo apt-get install -y jq"},
	}}, doc.Steps[3].Params)

	assert.Equal(t, map[step.Kind]int{
		step.KindScript:       1,
		step.KindAppendText:   1,
		step.KindGitConfig:    1,
		step.KindAppSelection: 1,
	}, doc.CountByKind())
	assert.True(t, doc.UsesSudo())
}

func TestParseGitConfigWithoutParams(t *testing.T) {
	doc, err := Parse("x.yaml", []byte("steps:\n  - name: Git\n    type: git_config\n"))
	require.NoError(t, err)
	assert.Equal(t, step.GitConfigParams{}, doc.Steps[0].Params)
	assert.False(t, doc.UsesSudo())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "empty document",
			doc:  "",
			want: []string{"x.yaml: document is empty"},
		},
		{
			name: "no steps",
			doc:  "steps: []\n",
			want: []string{"x.yaml: steps: at least one step is required"},
		},
		{
			name: "malformed yaml",
			doc:  "steps: [\n",
			want: []string{"x.yaml: parse YAML"},
		},
		{
			name: "unknown top-level field",
			doc:  "stepz: []\n",
			want: []string{"field stepz not found"},
		},
		{
			name: "empty name",
			doc:  "steps:\n  - name: '  '\n    type: script\n    script: ls\n",
			want: []string{"x.yaml: step #1: name: must not be empty"},
		},
		{
			name: "missing type",
			doc:  "steps:\n  - name: a\n    script: ls\n",
			want: []string{`step #1 "a": type: must be one of script, add_text, git_config, app_selection`},
		},
		{
			name: "unknown type",
			doc:  "steps:\n  - name: a\n    type: reboot\n",
			want: []string{`step #1 "a": type: unknown type "reboot"`},
		},
		{
			name: "script without script",
			doc:  "steps:\n  - name: a\n    type: script\n",
			want: []string{`step #1 "a": script: required for type script`},
		},
		{
			name: "add_text without file and content",
			doc:  "steps:\n  - name: a\n    type: add_text\n    params: {file: ''}\n",
			want: []string{
				`step #1 "a": params.file: must not be empty`,
				`step #1 "a": params.content: must not be empty`,
			},
		},
		{
			name: "app_selection without apps",
			doc:  "steps:\n  - name: a\n    type: app_selection\n    params: {apps: []}\n",
			want: []string{`step #1 "a": params.apps: at least one app is required`},
		},
		{
			name: "app without name or install",
			doc:  "steps:\n  - name: a\n    type: app_selection\n    params:\n      apps:\n        - name: htop\n          install: ''\n        - install: x\n",
			want: []string{
				`params.apps[0].install: app "htop" has an empty install command`,
				`params.apps[1].name: must not be empty`,
			},
		},
		{
			name: "params of the wrong shape",
			doc:  "steps:\n  - name: a\n    type: add_text\n    params: [1, 2]\n",
			want: []string{`step #1 "a": params: decode`},
		},
		{
			name: "unknown git_config param",
			doc:  "steps:\n  - name: a\n    type: git_config\n    params:\n      default_edtor: vim\n",
			want: []string{`step #1 "a": params.default_edtor: unknown field (line 5)`},
		},
		{
			name: "unknown add_text param",
			doc:  "steps:\n  - name: a\n    type: add_text\n    params: {file: f, content: c, mode: '0644'}\n",
			want: []string{`step #1 "a": params.mode: unknown field (line 4)`},
		},
		{
			name: "unknown app field",
			doc:  "steps:\n  - name: a\n    type: app_selection\n    params:\n      apps:\n        - name: htop\n          instal: x\n          install: y\n",
			want: []string{`params.apps[0].instal: unknown field (line 7)`},
		},
		{
			name: "errors from several steps",
			doc:  "steps:\n  - name: a\n    type: script\n  - name: ''\n    type: git_config\n",
			want: []string{`step #1 "a": script`, `step #2: name`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse("x.yaml", []byte(tt.doc))
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.True(t, clierr.IsConfiguration(err), "want ConfigurationError, got %T", err)
			assert.Equal(t, clierr.ExitConfiguration, clierr.ExitCode(err))
			for _, w := range tt.want {
				assert.Contains(t, err.Error(), w)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steps.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullDoc), 0644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
	assert.Len(t, doc.Steps, 4)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, clierr.IsConfiguration(err))
	assert.Contains(t, err.Error(), "read document")
}

func TestLoadExampleDocument(t *testing.T) {
	doc, err := Load(filepath.Join("..", "..", "examples", "steps.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Steps)
}

func TestMentionsSudo(t *testing.T) {
	assert.True(t, mentionsSudo("sudo apt-get update"))
	assert.True(t, mentionsSudo("echo hi && sudo ls"))
	assert.True(t, mentionsSudo("(sudo true)"))
	assert.False(t, mentionsSudo("echo pseudo"))
	assert.False(t, mentionsSudo("sudoers"))
}
