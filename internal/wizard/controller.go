// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

// Package wizard owns the interactive session state: which step is
// selected, where its log is scrolled, which run is in flight and any
// pending app selection.
package wizard

import (
	"context"
	"errors"
	"sync"

	"github.com/go-logr/logr"

	"github.com/monadic/stepwise/internal/runner"
	"github.com/monadic/stepwise/internal/step"
	"github.com/monadic/stepwise/internal/view"
)

// ErrNoSteps is returned when a controller is created without steps.
var ErrNoSteps = errors.New("wizard needs at least one step")

// eventBuffer bounds how far a run can get ahead of the renderer.
const eventBuffer = 256

// Controller is the single owner of wizard state. Its methods are called
// from one goroutine (the UI loop); runs report back through Events.
type Controller struct {
	ctx    context.Context
	steps  []*step.Step
	runner *runner.Runner
	log    logr.Logger

	selected int
	scroll   int
	height   int
	follow   bool

	active *step.Step
	prompt *selection

	events    chan runner.Event
	done      chan struct{}
	closeOnce sync.Once
	quit      bool
}

// selection is the UI side of a pending runner.SelectionRequest.
type selection struct {
	req    *runner.SelectionRequest
	apps   []step.AppChoice
	cursor int
}

// New creates a controller over steps. ctx bounds every run it starts.
func New(ctx context.Context, steps []*step.Step, r *runner.Runner, log logr.Logger) (*Controller, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	return &Controller{
		ctx:    ctx,
		steps:  steps,
		runner: r,
		log:    log,
		events: make(chan runner.Event, eventBuffer),
		done:   make(chan struct{}),
	}, nil
}

// Events delivers runner events; pass each one to HandleEvent.
func (c *Controller) Events() <-chan runner.Event { return c.events }

// Done is closed when the session quits.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Steps returns the step sequence in display order.
func (c *Controller) Steps() []*step.Step { return c.steps }

// Selected returns the selected step index.
func (c *Controller) Selected() int { return c.selected }

// Scroll returns the clamped log scroll offset.
func (c *Controller) Scroll() int {
	c.clampScroll()
	return c.scroll
}

// Running reports whether a run is in flight.
func (c *Controller) Running() bool { return c.active != nil }

// Prompting reports whether an app selection is pending.
func (c *Controller) Prompting() bool { return c.prompt != nil }

// Quitting reports whether Quit has been called.
func (c *Controller) Quitting() bool { return c.quit }

// SetHeight sets the number of visible log lines.
func (c *Controller) SetHeight(h int) {
	c.height = max(h, 0)
	c.clampScroll()
	if c.follow {
		c.scroll = c.maxScroll()
	}
}

// Run starts the selected step. It is a no-op while any run is active.
func (c *Controller) Run() bool {
	if c.quit || c.active != nil {
		return false
	}
	st := c.current()
	if st.Status() == step.Running {
		return false
	}
	c.active = st
	c.scroll = 0
	c.follow = true
	c.log.V(1).Info("run", "step", st.Name)

	go func() {
		if _, err := c.runner.Run(c.ctx, st, c.observe); err != nil {
			c.log.Error(err, "run rejected", "step", st.Name)
			c.observe(runner.Event{Kind: runner.EventFinished, Step: st, Status: st.Status()})
		}
	}()
	return true
}

// observe forwards runner events to the UI loop until the session ends.
func (c *Controller) observe(ev runner.Event) {
	select {
	case c.events <- ev:
	case <-c.done:
		if ev.Kind == runner.EventSelect {
			ev.Selection.Cancel()
		}
	}
}

// HandleEvent applies a runner event to the session state.
func (c *Controller) HandleEvent(ev runner.Event) {
	switch ev.Kind {
	case runner.EventLog:
		if ev.Step == c.current() && c.follow {
			c.scroll = c.maxScroll()
		}
	case runner.EventStatus:
		if ev.Status == step.Running && ev.Step == c.current() {
			c.scroll = 0
			c.follow = true
		}
	case runner.EventSelect:
		apps := make([]step.AppChoice, len(ev.Selection.Apps))
		copy(apps, ev.Selection.Apps)
		c.prompt = &selection{req: ev.Selection, apps: apps}
	case runner.EventFinished:
		if ev.Step == c.active {
			c.active = nil
		}
		c.prompt = nil
		c.log.V(1).Info("finished", "step", ev.Step.Name, "status", ev.Status.String())
	}
}

// Skip marks the selected step Skipped. A step with a run in flight is left
// alone, including before its runner has moved it to Running.
func (c *Controller) Skip() bool {
	if c.quit || c.prompt != nil {
		return false
	}
	st := c.current()
	if st == c.active {
		return false
	}
	if err := st.Skip(); err != nil {
		return false
	}
	c.log.V(1).Info("skip", "step", st.Name)
	return true
}

// Next selects the following step; a no-op at the last step.
func (c *Controller) Next() { c.move(1) }

// Prev selects the preceding step; a no-op at the first step.
func (c *Controller) Prev() { c.move(-1) }

func (c *Controller) move(delta int) {
	if c.prompt != nil {
		return
	}
	next := min(max(c.selected+delta, 0), len(c.steps)-1)
	if next == c.selected {
		return
	}
	c.selected = next
	c.scroll = 0
	c.follow = c.maxScroll() == 0
}

// ScrollUp moves the log window up one line.
func (c *Controller) ScrollUp() { c.scrollBy(-1) }

// ScrollDown moves the log window down one line.
func (c *Controller) ScrollDown() { c.scrollBy(1) }

// PageUp moves the log window up one screen.
func (c *Controller) PageUp() { c.scrollBy(-c.page()) }

// PageDown moves the log window down one screen.
func (c *Controller) PageDown() { c.scrollBy(c.page()) }

func (c *Controller) page() int { return max(c.height, 1) }

func (c *Controller) scrollBy(delta int) {
	limit := c.maxScroll()
	c.scroll = min(max(c.scroll+delta, 0), limit)
	c.follow = c.scroll == limit
}

// Quit ends the session. A pending selection is cancelled so its run can
// finish; an in-flight shell command is not killed.
func (c *Controller) Quit() {
	if c.prompt != nil {
		c.prompt.req.Cancel()
		c.prompt = nil
	}
	c.quit = true
	c.closeOnce.Do(func() { close(c.done) })
}

// ToggleApp flips the checkbox of app i in the pending selection.
func (c *Controller) ToggleApp(i int) {
	if c.prompt == nil || i < 0 || i >= len(c.prompt.apps) {
		return
	}
	c.prompt.apps[i].Selected = !c.prompt.apps[i].Selected
	c.prompt.cursor = i
}

// ToggleCursor flips the app under the cursor.
func (c *Controller) ToggleCursor() {
	if c.prompt != nil {
		c.ToggleApp(c.prompt.cursor)
	}
}

// MoveCursor moves the selection cursor by delta, clamped to the list.
func (c *Controller) MoveCursor(delta int) {
	if c.prompt == nil || len(c.prompt.apps) == 0 {
		return
	}
	c.prompt.cursor = min(max(c.prompt.cursor+delta, 0), len(c.prompt.apps)-1)
}

// ConfirmSelection resumes the run with the checked apps.
func (c *Controller) ConfirmSelection() {
	if c.prompt == nil {
		return
	}
	var picked []step.AppChoice
	for _, app := range c.prompt.apps {
		if app.Selected {
			picked = append(picked, app)
		}
	}
	c.prompt.req.Confirm(picked)
	c.prompt = nil
}

// CancelSelection resumes the run with a cancellation.
func (c *Controller) CancelSelection() {
	if c.prompt == nil {
		return
	}
	c.prompt.req.Cancel()
	c.prompt = nil
}

// State snapshots everything the view needs.
func (c *Controller) State() view.State {
	c.clampScroll()
	snaps := make([]step.Snapshot, len(c.steps))
	for i, st := range c.steps {
		snaps[i] = st.Snapshot()
	}
	vs := view.State{
		Steps:    snaps,
		Selected: c.selected,
		Scroll:   c.scroll,
		Height:   c.height,
	}
	if c.prompt != nil {
		apps := make([]step.AppChoice, len(c.prompt.apps))
		copy(apps, c.prompt.apps)
		vs.Prompt = &view.Prompt{Step: c.prompt.req.Step.Name, Apps: apps, Cursor: c.prompt.cursor}
	}
	return vs
}

func (c *Controller) current() *step.Step { return c.steps[c.selected] }

func (c *Controller) maxScroll() int {
	return view.MaxScroll(c.current().LogLen(), c.height)
}

func (c *Controller) clampScroll() {
	c.scroll = min(max(c.scroll, 0), c.maxScroll())
}
