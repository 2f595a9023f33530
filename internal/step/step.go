// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

// Package step holds the provisioning step model shared by the runner, the
// wizard controller and the view model.
package step

import (
	"errors"
	"sync"
)

// Kind identifies which handler plans a step.
type Kind string

const (
	KindScript       Kind = "script"
	KindAppendText   Kind = "add_text"
	KindGitConfig    Kind = "git_config"
	KindAppSelection Kind = "app_selection"
)

// Kinds lists every supported kind in declaration order.
var Kinds = []Kind{KindScript, KindAppendText, KindGitConfig, KindAppSelection}

// Status is the lifecycle state of a step.
type Status int

const (
	Pending Status = iota
	Running
	Skipped
	Success
	Failed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Skipped:
		return "skipped"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether a run has resolved to s.
func (s Status) Terminal() bool {
	return s == Success || s == Failed
}

var (
	// ErrRunning is returned when a transition is attempted on a running step.
	ErrRunning = errors.New("step is running")
	// ErrNotRunning is returned when finishing a step that was never started.
	ErrNotRunning = errors.New("step is not running")
	// ErrNotTerminal is returned when a run is finished with a non-terminal status.
	ErrNotTerminal = errors.New("status is not terminal")
)

// Step is one user-visible unit of provisioning work.
//
// Name, Kind, scripts and Params are fixed after load. Status and log are
// mutated only through Begin/Append/Finish/Skip, which the runner and the
// controller call from their own goroutines; readers take a Snapshot.
type Step struct {
	Name       string
	Kind       Kind
	PreScript  string
	PostScript string
	Params     Params

	// Dir and Env apply to every shell invocation of the step.
	Dir string
	Env map[string]string

	mu     sync.RWMutex
	status Status
	log    []string
}

// New creates a pending step.
func New(name string, params Params) *Step {
	return &Step{Name: name, Kind: params.Kind(), Params: params}
}

// Status returns the current status.
func (s *Step) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// LogLen returns the number of log lines.
func (s *Step) LogLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.log)
}

// Log returns a copy of the log.
func (s *Step) Log() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.log))
	copy(out, s.log)
	return out
}

// Begin clears the log and moves the step to Running. It is legal from every
// status except Running.
func (s *Step) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == Running {
		return ErrRunning
	}
	s.status = Running
	s.log = nil
	return nil
}

// Append adds lines to the log.
func (s *Step) Append(lines ...string) {
	s.mu.Lock()
	s.log = append(s.log, lines...)
	s.mu.Unlock()
}

// Finish resolves a running step to Success or Failed.
func (s *Step) Finish(status Status) error {
	if !status.Terminal() {
		return ErrNotTerminal
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != Running {
		return ErrNotRunning
	}
	s.status = status
	return nil
}

// Skip marks the step Skipped without touching its log. A running step
// cannot be skipped.
func (s *Step) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == Running {
		return ErrRunning
	}
	s.status = Skipped
	return nil
}

// Snapshot is a consistent copy of a step's mutable state.
type Snapshot struct {
	Name   string
	Kind   Kind
	Status Status
	Log    []string
}

// Snapshot copies the step state under the lock.
func (s *Step) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := make([]string, len(s.log))
	copy(log, s.log)
	return Snapshot{Name: s.Name, Kind: s.Kind, Status: s.status, Log: log}
}
