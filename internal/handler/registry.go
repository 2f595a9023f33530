// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

// Package handler turns steps into ordered action plans, one handler per
// step kind.
package handler

import (
	"fmt"
	"sort"
	"sync"

	"github.com/monadic/stepwise/internal/step"
)

// Handler plans the actions for one step kind
type Handler interface {
	// Kind returns the step kind this handler plans
	Kind() step.Kind

	// Plan returns the ordered actions for st. It never touches status or log.
	Plan(st *step.Step) ([]Action, error)
}

// Registry holds all available handlers
type Registry struct {
	mu       sync.RWMutex
	handlers map[step.Kind]Handler
}

// NewRegistry creates a new handler registry
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[step.Kind]Handler),
	}
}

// Register adds a handler to the registry
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Kind()] = h
}

// Get returns a handler by kind
func (r *Registry) Get(k step.Kind) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[k]
	return h, ok
}

// Plan dispatches st to the handler for its kind
func (r *Registry) Plan(st *step.Step) ([]Action, error) {
	h, ok := r.Get(st.Kind)
	if !ok {
		return nil, fmt.Errorf("no handler registered for kind %s", st.Kind)
	}
	return h.Plan(st)
}

// Kinds returns all registered kinds, sorted
func (r *Registry) Kinds() []step.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]step.Kind, 0, len(r.handlers))
	for k := range r.handlers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// DefaultRegistry creates a registry with all standard handlers
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ScriptHandler{})
	r.Register(AppendTextHandler{})
	r.Register(GitConfigHandler{})
	r.Register(AppSelectionHandler{})
	return r
}
