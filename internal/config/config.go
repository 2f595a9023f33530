// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

// Package config loads and validates the steps document.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/monadic/stepwise/internal/clierr"
	"github.com/monadic/stepwise/internal/step"
)

// DefaultPath is read when no document is named on the command line.
const DefaultPath = "steps.yaml"

// file is the on-disk layout.
type file struct {
	Shell string    `yaml:"shell"`
	Steps []rawStep `yaml:"steps"`
}

type rawStep struct {
	Name       string            `yaml:"name"`
	Type       string            `yaml:"type"`
	PreScript  string            `yaml:"pre_script"`
	Script     string            `yaml:"script"`
	PostScript string            `yaml:"post_script"`
	Workdir    string            `yaml:"workdir"`
	Env        map[string]string `yaml:"env"`
	Params     yaml.Node         `yaml:"params"`
}

type appendTextParams struct {
	File    string `yaml:"file"`
	Content string `yaml:"content"`
}

type gitConfigParams struct {
	DefaultEditor string `yaml:"default_editor"`
	UserName      string `yaml:"user_name"`
	UserEmail     string `yaml:"user_email"`
}

type appSelectionParams struct {
	Apps []appChoice `yaml:"apps"`
}

type appChoice struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Install string `yaml:"install"`
}

// Document is a validated steps document.
type Document struct {
	Path  string
	Shell string
	Steps []*step.Step
}

// Load reads and validates the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &clierr.ConfigurationError{Path: path, Msg: "read document", Err: err}
	}
	return Parse(path, data)
}

// Parse validates data. Every problem found is reported; the result is a
// *clierr.ConfigurationError or a join of several.
func Parse(path string, data []byte) (*Document, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &clierr.ConfigurationError{Path: path, Msg: "document is empty"}
		}
		return nil, &clierr.ConfigurationError{Path: path, Msg: "parse YAML", Err: err}
	}

	if len(f.Steps) == 0 {
		return nil, &clierr.ConfigurationError{Path: path, Field: "steps", Msg: "at least one step is required"}
	}

	doc := &Document{Path: path, Shell: f.Shell, Steps: make([]*step.Step, 0, len(f.Steps))}
	var errs []error
	for i, raw := range f.Steps {
		st, stepErrs := buildStep(path, i, raw)
		if len(stepErrs) > 0 {
			errs = append(errs, stepErrs...)
			continue
		}
		doc.Steps = append(doc.Steps, st)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return doc, nil
}

func locator(i int, name string) string {
	if strings.TrimSpace(name) == "" {
		return fmt.Sprintf("#%d", i+1)
	}
	return fmt.Sprintf("#%d %q", i+1, name)
}

func buildStep(path string, i int, raw rawStep) (*step.Step, []error) {
	loc := locator(i, raw.Name)
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &clierr.ConfigurationError{Path: path, Step: loc, Field: field, Msg: fmt.Sprintf(format, args...)})
	}

	// decode fills out from the params block and reports unknown keys.
	decode := func(out any) bool {
		if err := decodeParams(raw.Params, out); err != nil {
			errs = append(errs, &clierr.ConfigurationError{Path: path, Step: loc, Field: "params", Msg: "decode", Err: err})
			return false
		}
		for _, u := range unknownFields(&raw.Params, reflect.TypeOf(out).Elem(), "params.") {
			fail(u.path, "unknown field (line %d)", u.line)
		}
		return true
	}

	if strings.TrimSpace(raw.Name) == "" {
		fail("name", "must not be empty")
	}

	var params step.Params
	switch step.Kind(raw.Type) {
	case step.KindScript:
		if strings.TrimSpace(raw.Script) == "" {
			fail("script", "required for type %s", step.KindScript)
		}
		params = step.ScriptParams{Script: raw.Script}

	case step.KindAppendText:
		var p appendTextParams
		if !decode(&p) {
			break
		}
		if strings.TrimSpace(p.File) == "" {
			fail("params.file", "must not be empty")
		}
		if p.Content == "" {
			fail("params.content", "must not be empty")
		}
		params = step.AppendTextParams{File: p.File, Content: p.Content}

	case step.KindGitConfig:
		var p gitConfigParams
		if !decode(&p) {
			break
		}
		params = step.GitConfigParams{DefaultEditor: p.DefaultEditor, UserName: p.UserName, UserEmail: p.UserEmail}

	case step.KindAppSelection:
		var p appSelectionParams
		if !decode(&p) {
			break
		}
		if len(p.Apps) == 0 {
			fail("params.apps", "at least one app is required")
		}
		apps := make([]step.AppChoice, len(p.Apps))
		for j, app := range p.Apps {
			if strings.TrimSpace(app.Name) == "" {
				fail(fmt.Sprintf("params.apps[%d].name", j), "must not be empty")
			}
			if strings.TrimSpace(app.Install) == "" {
				fail(fmt.Sprintf("params.apps[%d].install", j), "app %q has an empty install command", app.Name)
			}
			apps[j] = step.AppChoice{Name: app.Name, Version: app.Version, Install: app.Install}
		}
		params = step.AppSelectionParams{Apps: apps}

	case "":
		fail("type", "must be one of %s", kindList())
	default:
		fail("type", "unknown type %q, must be one of %s", raw.Type, kindList())
	}

	if len(errs) > 0 {
		return nil, errs
	}
	st := step.New(raw.Name, params)
	st.PreScript = raw.PreScript
	st.PostScript = raw.PostScript
	st.Dir = raw.Workdir
	st.Env = raw.Env
	return st, nil
}

// decodeParams decodes node into out. An absent params block leaves out at
// its zero value.
func decodeParams(node yaml.Node, out any) error {
	if node.Kind == 0 {
		return nil
	}
	return node.Decode(out)
}

type unknownField struct {
	path string
	line int
}

// unknownFields walks a mapping node and reports keys that have no matching
// yaml tag on t, descending into slices of structs.
func unknownFields(node *yaml.Node, t reflect.Type, prefix string) []unknownField {
	if node == nil || node.Kind != yaml.MappingNode || t.Kind() != reflect.Struct {
		return nil
	}
	fields := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if name, _, _ := strings.Cut(f.Tag.Get("yaml"), ","); name != "" {
			fields[name] = f.Type
		}
	}

	var out []unknownField
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		ft, ok := fields[key.Value]
		if !ok {
			out = append(out, unknownField{path: prefix + key.Value, line: key.Line})
			continue
		}
		if ft.Kind() == reflect.Slice && val.Kind == yaml.SequenceNode {
			for j, item := range val.Content {
				out = append(out, unknownFields(item, ft.Elem(), fmt.Sprintf("%s%s[%d].", prefix, key.Value, j))...)
			}
		}
	}
	return out
}

func kindList() string {
	names := make([]string, len(step.Kinds))
	for i, k := range step.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// CountByKind tallies steps per kind.
func (d *Document) CountByKind() map[step.Kind]int {
	counts := make(map[step.Kind]int, len(step.Kinds))
	for _, st := range d.Steps {
		counts[st.Kind]++
	}
	return counts
}

// UsesSudo reports whether any command in the document invokes sudo.
func (d *Document) UsesSudo() bool {
	for _, st := range d.Steps {
		for _, cmd := range commands(st) {
			if mentionsSudo(cmd) {
				return true
			}
		}
	}
	return false
}

func commands(st *step.Step) []string {
	out := []string{st.PreScript, st.PostScript}
	switch p := st.Params.(type) {
	case step.ScriptParams:
		out = append(out, p.Script)
	case step.AppSelectionParams:
		for _, app := range p.Apps {
			out = append(out, app.Install)
		}
	}
	return out
}

func mentionsSudo(cmd string) bool {
	for _, field := range strings.FieldsFunc(cmd, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == ';' || r == '&' || r == '|' || r == '(' || r == ')'
	}) {
		if field == "sudo" {
			return true
		}
	}
	return false
}
