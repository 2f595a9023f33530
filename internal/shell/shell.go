// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

// Package shell runs command strings through a system shell and streams
// their merged output line by line.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/monadic/stepwise/internal/clierr"
)

// DefaultShell is used when no shell is configured.
const DefaultShell = "bash"

// maxLine bounds a single output line; longer lines are emitted in
// fragments of about this size.
const maxLine = 1 << 20

// Command is one shell invocation.
type Command struct {
	Script string            // Passed to the shell with -c
	Dir    string            // Working directory; inherited when empty
	Env    map[string]string // Added to the inherited environment
}

// Result is the outcome of a command that was spawned.
type Result struct {
	ExitCode int
	Output   string
	Duration time.Duration
}

// Success reports a zero exit code.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Executor runs commands. A non-zero exit is reported through Result, not
// as an error; the error is non-nil only when the shell could not be
// spawned (*clierr.LaunchError) or output could not be read.
type Executor interface {
	Execute(ctx context.Context, cmd Command, onLine func(string)) (Result, error)
}

// Shell executes commands with "<Path> -c <script>".
type Shell struct {
	Path string
	Log  logr.Logger
}

// New returns a Shell using path, or DefaultShell when path is empty.
func New(path string) *Shell {
	if path == "" {
		path = DefaultShell
	}
	return &Shell{Path: path, Log: logr.Discard()}
}

// Execute runs cmd and blocks until it exits. Stdout and stderr share one
// pipe so their relative order is preserved.
func (s *Shell) Execute(ctx context.Context, cmd Command, onLine func(string)) (Result, error) {
	start := time.Now()

	c := exec.CommandContext(ctx, s.Path, "-c", cmd.Script)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), envList(cmd.Env)...)
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return Result{ExitCode: -1}, &clierr.LaunchError{Command: cmd.Script, Err: fmt.Errorf("create pipe: %w", err)}
	}
	c.Stdout = pw
	c.Stderr = pw

	s.Log.V(1).Info("starting command", "shell", s.Path, "script", cmd.Script, "dir", cmd.Dir)
	if err := c.Start(); err != nil {
		pw.Close()
		pr.Close()
		return Result{ExitCode: -1, Duration: time.Since(start)}, &clierr.LaunchError{Command: cmd.Script, Err: err}
	}
	// The child holds its own copy of the write end.
	pw.Close()

	var out strings.Builder
	readErr := readLines(pr, func(line string) {
		out.WriteString(line)
		out.WriteByte('\n')
		if onLine != nil {
			onLine(line)
		}
	})
	pr.Close()

	waitErr := c.Wait()
	result := Result{
		ExitCode: exitCode(c, waitErr),
		Output:   out.String(),
		Duration: time.Since(start),
	}
	s.Log.V(1).Info("command finished", "script", cmd.Script, "exitCode", result.ExitCode, "duration", result.Duration)

	if readErr != nil {
		return result, fmt.Errorf("read output of %q: %w", cmd.Script, readErr)
	}
	return result, nil
}

// readLines calls emit for every line read from r until EOF. A line longer
// than maxLine is emitted as several fragments. After a read error the rest
// of r is drained so the writer never blocks on a full pipe.
func readLines(r io.Reader, emit func(string)) error {
	br := bufio.NewReaderSize(r, 64*1024)
	var line []byte
	for {
		frag, isPrefix, err := br.ReadLine()
		if err != nil {
			if len(line) > 0 {
				emit(string(line))
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			_, _ = io.Copy(io.Discard, r)
			return err
		}
		line = append(line, frag...)
		if isPrefix && len(line) < maxLine {
			continue
		}
		emit(string(line))
		line = line[:0]
	}
}

func exitCode(c *exec.Cmd, err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// -1 when the process was killed by a signal.
		return exitErr.ExitCode()
	}
	if c.ProcessState != nil {
		return c.ProcessState.ExitCode()
	}
	return -1
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

// Quote wraps s in single quotes for safe use as one shell word.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
