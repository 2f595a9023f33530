// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

package step

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStepIsPending(t *testing.T) {
	s := New("hello", ScriptParams{Script: "echo hi"})
	assert.Equal(t, Pending, s.Status())
	assert.Equal(t, KindScript, s.Kind)
	assert.Empty(t, s.Log())
}

func TestBeginClearsLog(t *testing.T) {
	s := New("hello", ScriptParams{Script: "echo hi"})
	require.NoError(t, s.Begin())
	s.Append("first run")
	require.NoError(t, s.Finish(Failed))

	require.NoError(t, s.Begin())
	assert.Equal(t, Running, s.Status())
	assert.Empty(t, s.Log())
}

func TestBeginWhileRunning(t *testing.T) {
	s := New("hello", ScriptParams{})
	require.NoError(t, s.Begin())
	assert.ErrorIs(t, s.Begin(), ErrRunning)
}

func TestFinish(t *testing.T) {
	s := New("hello", ScriptParams{})
	assert.ErrorIs(t, s.Finish(Success), ErrNotRunning)

	require.NoError(t, s.Begin())
	assert.ErrorIs(t, s.Finish(Skipped), ErrNotTerminal)
	assert.ErrorIs(t, s.Finish(Pending), ErrNotTerminal)
	require.NoError(t, s.Finish(Success))
	assert.Equal(t, Success, s.Status())
}

func TestSkip(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *Step)
		err   error
	}{
		{name: "pending", setup: func(s *Step) {}},
		{name: "success", setup: func(s *Step) { _ = s.Begin(); _ = s.Finish(Success) }},
		{name: "failed", setup: func(s *Step) { _ = s.Begin(); _ = s.Finish(Failed) }},
		{name: "running", setup: func(s *Step) { _ = s.Begin() }, err: ErrRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("x", ScriptParams{})
			tt.setup(s)
			before := s.LogLen()
			err := s.Skip()
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Equal(t, Running, s.Status())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Skipped, s.Status())
			assert.Equal(t, before, s.LogLen())
		})
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	s := New("hello", ScriptParams{})
	require.NoError(t, s.Begin())
	s.Append("a", "b")

	snap := s.Snapshot()
	snap.Log[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, s.Log())
	assert.Equal(t, Running, snap.Status)
	assert.Equal(t, "hello", snap.Name)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", Status(42).String())
	assert.True(t, Success.Terminal())
	assert.False(t, Skipped.Terminal())
}
