// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

package shell

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monadic/stepwise/internal/clierr"
)

func requireBash(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("PRECONDITION: bash not installed")
	}
}

func TestExecuteCapturesOutput(t *testing.T) {
	requireBash(t)

	var lines []string
	res, err := New("").Execute(context.Background(), Command{Script: "echo one; echo two"}, func(l string) {
		lines = append(lines, l)
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.Success())
	assert.Equal(t, "one\ntwo\n", res.Output)
	assert.Equal(t, []string{"one", "two"}, lines)
}

func TestExecuteMergesStderrInOrder(t *testing.T) {
	requireBash(t)

	var lines []string
	res, err := New("bash").Execute(context.Background(),
		Command{Script: "echo out1; echo err1 >&2; echo out2"},
		func(l string) { lines = append(lines, l) })
	require.NoError(t, err)
	assert.Equal(t, []string{"out1", "err1", "out2"}, lines)
	assert.Equal(t, "out1\nerr1\nout2\n", res.Output)
}

func TestExecuteNonZeroExitIsNotAnError(t *testing.T) {
	requireBash(t)

	res, err := New("").Execute(context.Background(), Command{Script: "echo failing; exit 3"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Success())
	assert.Equal(t, "failing\n", res.Output)
}

func TestExecuteLaunchError(t *testing.T) {
	sh := New(filepath.Join(t.TempDir(), "no-such-shell"))

	res, err := sh.Execute(context.Background(), Command{Script: "echo hi"}, nil)
	require.Error(t, err)
	assert.True(t, clierr.IsLaunch(err))
	assert.Equal(t, -1, res.ExitCode)
}

func TestExecuteDirAndEnv(t *testing.T) {
	requireBash(t)

	dir := t.TempDir()
	res, err := New("").Execute(context.Background(), Command{
		Script: `pwd; echo "$GREETING"`,
		Dir:    dir,
		Env:    map[string]string{"GREETING": "hello there"},
	}, nil)
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, res.Output, resolved)
	assert.Contains(t, res.Output, "hello there\n")
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "vim", want: "'vim'"},
		{in: "code --wait", want: "'code --wait'"},
		{in: "O'Brien", want: `'O'\''Brien'`},
		{in: "", want: "''"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.in))
		})
	}
}

func TestQuoteRoundTripsThroughShell(t *testing.T) {
	requireBash(t)

	value := `it's "quoted" $HOME`
	res, err := New("").Execute(context.Background(), Command{Script: "printf '%s' " + Quote(value)}, nil)
	require.NoError(t, err)
	assert.Equal(t, value+"\n", res.Output)
}

func TestReadLinesFragmentsLongLines(t *testing.T) {
	var lines []string
	input := strings.Repeat("a", maxLine+10) + "\nend"
	err := readLines(strings.NewReader(input), func(l string) { lines = append(lines, l) })
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Len(t, lines[0], maxLine)
	assert.Equal(t, strings.Repeat("a", 10), lines[1])
	assert.Equal(t, "end", lines[2])
}

func TestReadLinesReportsReadError(t *testing.T) {
	boom := errors.New("boom")
	var lines []string
	r := io.MultiReader(strings.NewReader("a\npart"), iotest.ErrReader(boom))
	err := readLines(r, func(l string) { lines = append(lines, l) })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "part"}, lines)
}

func TestExecuteLongLineSucceeds(t *testing.T) {
	requireBash(t)

	var total int
	var last string
	res, err := New("").Execute(context.Background(),
		Command{Script: "head -c 2000000 /dev/zero | tr '\\0' a; echo; echo done; exit 0"},
		func(l string) {
			total += len(l)
			last = l
		})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, 2000000+len("done"), total)
	assert.Equal(t, "done", last)
}
