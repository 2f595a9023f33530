// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

// Package runner drives a single step from Running to Success or Failed:
// pre_script, the handler's action plan, then post_script.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/monadic/stepwise/internal/clierr"
	"github.com/monadic/stepwise/internal/handler"
	"github.com/monadic/stepwise/internal/metrics"
	"github.com/monadic/stepwise/internal/runlog"
	"github.com/monadic/stepwise/internal/shell"
	"github.com/monadic/stepwise/internal/step"
)

// EventKind classifies runner events.
type EventKind int

const (
	EventLog EventKind = iota
	EventStatus
	EventSelect
	EventFinished
)

// Event reports progress of a run to its observer.
type Event struct {
	Kind      EventKind
	Step      *step.Step
	Line      string            // EventLog
	Status    step.Status       // EventStatus, EventFinished
	Selection *SelectionRequest // EventSelect
}

// Observer receives events on the runner's goroutine. It must not block for
// long; EventSelect is answered asynchronously through the request.
type Observer func(Event)

// ErrNoPrompt is returned when a plan needs a selection but the run has no
// observer to ask.
var ErrNoPrompt = errors.New("no interactive prompt available")

// Runner executes steps. The zero value is not usable; call New.
type Runner struct {
	Exec       shell.Executor
	Handlers   *handler.Registry
	Log        logr.Logger
	Metrics    *metrics.Recorder
	Transcript *runlog.Logger
}

// New returns a runner using exec and the default handlers.
func New(exec shell.Executor) *Runner {
	return &Runner{
		Exec:     exec,
		Handlers: handler.DefaultRegistry(),
		Log:      logr.Discard(),
	}
}

// Run executes st and blocks until it reaches a terminal status, including
// any time spent waiting for a selection. The only error is step.ErrRunning
// when st is already running; step failures are reported via the status.
func (r *Runner) Run(ctx context.Context, st *step.Step, observe Observer) (step.Status, error) {
	if err := st.Begin(); err != nil {
		return st.Status(), err
	}
	start := time.Now()
	run := &stepRun{Runner: r, ctx: ctx, st: st, observe: observe}
	run.emit(Event{Kind: EventStatus, Step: st, Status: step.Running})
	run.log(fmt.Sprintf("== Running step: %s ==", st.Name))

	status := run.execute()
	if status == step.Success {
		run.log("== Step succeeded ==")
	} else {
		run.log("== Step failed ==")
	}
	if err := st.Finish(status); err != nil {
		// Begin succeeded on this goroutine, so this is a programming error.
		r.Log.Error(err, "finish step", "step", st.Name)
	}

	duration := time.Since(start)
	r.Metrics.ObserveRun(st.Name, status.String(), duration)
	r.Transcript.LogStep(st.Name, status.String(), duration, st.Log())
	r.Log.Info("step finished", "step", st.Name, "status", status.String(), "duration", duration)

	run.emit(Event{Kind: EventStatus, Step: st, Status: status})
	run.emit(Event{Kind: EventFinished, Step: st, Status: status})
	return status, nil
}

// stepRun is the state of one in-flight run.
type stepRun struct {
	*Runner
	ctx     context.Context
	st      *step.Step
	observe Observer
}

func (s *stepRun) emit(ev Event) {
	if s.observe != nil {
		s.observe(ev)
	}
}

func (s *stepRun) log(line string) {
	s.st.Append(line)
	s.emit(Event{Kind: EventLog, Step: s.st, Line: line})
}

func (s *stepRun) execute() step.Status {
	if s.st.PreScript != "" {
		s.log("--- pre_script ---")
		if err := s.command(s.st.PreScript); err != nil {
			s.log("pre_script failed; main action and post_script were not run")
			return step.Failed
		}
	}

	plan, err := s.Handlers.Plan(s.st)
	if err != nil {
		s.log(fmt.Sprintf("[error] %v", err))
		return step.Failed
	}
	if err := s.actions(plan); err != nil {
		return step.Failed
	}

	if s.st.PostScript != "" {
		s.log("--- post_script ---")
		if err := s.command(s.st.PostScript); err != nil {
			s.log("post_script failed")
			return step.Failed
		}
	}
	return step.Success
}

// actions runs plan in order and stops at the first failure.
func (s *stepRun) actions(plan []handler.Action) error {
	for _, a := range plan {
		s.log(a.Describe())
		var err error
		switch a := a.(type) {
		case handler.RunCommand:
			err = s.command(a.Command)
		case handler.AppendToFile:
			err = s.appendToFile(a)
		case handler.SetGitConfig:
			err = s.gitConfig(a)
		case handler.PromptSelection:
			err = s.selectApps(a)
		default:
			err = fmt.Errorf("unsupported action %T", a)
			s.log(fmt.Sprintf("[error] %v", err))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// command runs script through the executor, streaming each output line into
// the log, and returns an error for launch failures and non-zero exits.
func (s *stepRun) command(script string) error {
	s.log("$ " + script)
	res, err := s.Exec.Execute(s.ctx, shell.Command{Script: script, Dir: s.st.Dir, Env: s.st.Env}, s.log)
	if err != nil {
		if clierr.IsLaunch(err) {
			s.Metrics.ObserveCommand(metrics.CommandLaunchError)
		} else {
			s.Metrics.ObserveCommand(metrics.CommandFailure)
		}
		s.log(fmt.Sprintf("[error] %v", err))
		return err
	}
	s.log(fmt.Sprintf("[exit code: %d]", res.ExitCode))
	if !res.Success() {
		s.Metrics.ObserveCommand(metrics.CommandFailure)
		return &clierr.CommandError{Command: script, ExitCode: res.ExitCode}
	}
	s.Metrics.ObserveCommand(metrics.CommandSuccess)
	return nil
}

func (s *stepRun) appendToFile(a handler.AppendToFile) error {
	n, err := handler.AppendText(a.Path, a.Text)
	if err != nil {
		s.log(fmt.Sprintf("[error] %v", err))
		return err
	}
	s.log(fmt.Sprintf("Appended %d bytes to %s", n, a.Path))
	return nil
}

func (s *stepRun) gitConfig(a handler.SetGitConfig) error {
	err := s.command(fmt.Sprintf("git config --global %s %s", a.Key, shell.Quote(a.Value)))
	if err != nil {
		return &clierr.IOError{Op: "git config", Path: a.Key, Err: err}
	}
	return nil
}

func (s *stepRun) selectApps(a handler.PromptSelection) error {
	selected, err := s.prompt(a.Apps)
	if err != nil {
		if errors.Is(err, ErrSelectionCancelled) {
			s.log("App selection cancelled.")
		} else {
			s.log(fmt.Sprintf("[error] %v", err))
		}
		return err
	}

	if len(selected) == 0 {
		s.log("No apps selected.")
		return nil
	}
	names := make([]string, len(selected))
	for i, app := range selected {
		names[i] = app.Name
	}
	s.log("Selected: " + strings.Join(names, ", "))
	return s.actions(handler.InstallPlan(selected))
}

// prompt parks the run until the observer's side answers the request.
func (s *stepRun) prompt(apps []step.AppChoice) ([]step.AppChoice, error) {
	if s.observe == nil {
		return nil, ErrNoPrompt
	}
	req := newSelectionRequest(s.st, apps)
	s.log(fmt.Sprintf("Awaiting selection of %d app(s)...", len(apps)))
	s.emit(Event{Kind: EventSelect, Step: s.st, Selection: req})
	return req.wait(s.ctx)
}
