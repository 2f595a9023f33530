// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

package runner

import (
	"context"
	"errors"
	"sync"

	"github.com/monadic/stepwise/internal/step"
)

// ErrSelectionCancelled is returned when the user dismisses a selection.
var ErrSelectionCancelled = errors.New("selection cancelled")

// SelectionRequest is the suspend point of an app_selection run. The run
// stays in its AwaitingSelection sub-state until Confirm or Cancel is called
// exactly once; later calls are ignored.
type SelectionRequest struct {
	Step *step.Step
	Apps []step.AppChoice

	once  sync.Once
	reply chan selectionReply
}

type selectionReply struct {
	apps      []step.AppChoice
	cancelled bool
}

func newSelectionRequest(st *step.Step, apps []step.AppChoice) *SelectionRequest {
	candidates := make([]step.AppChoice, len(apps))
	copy(candidates, apps)
	return &SelectionRequest{
		Step:  st,
		Apps:  candidates,
		reply: make(chan selectionReply, 1),
	}
}

// Confirm resumes the run with the apps the user checked. An empty
// selection is legal.
func (r *SelectionRequest) Confirm(selected []step.AppChoice) {
	r.once.Do(func() {
		out := make([]step.AppChoice, len(selected))
		copy(out, selected)
		r.reply <- selectionReply{apps: out}
	})
}

// Cancel resumes the run with ErrSelectionCancelled.
func (r *SelectionRequest) Cancel() {
	r.once.Do(func() {
		r.reply <- selectionReply{cancelled: true}
	})
}

func (r *SelectionRequest) wait(ctx context.Context) ([]step.AppChoice, error) {
	select {
	case rep := <-r.reply:
		if rep.cancelled {
			return nil, ErrSelectionCancelled
		}
		return rep.apps, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
