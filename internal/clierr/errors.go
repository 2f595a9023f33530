// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

// Package clierr provides error classification and user-friendly error formatting for the CLI.
// It distinguishes fatal configuration errors from step-scoped failures and provides actionable hints.
package clierr

import (
	"errors"
	"fmt"
	"strings"
)

// Common error types for CLI output.
const (
	TypeConfiguration = "configuration" // Malformed or invalid steps document
	TypeLaunch        = "launch"        // Shell could not be spawned
	TypeCommand       = "command"       // Command exited non-zero
	TypeIO            = "io"            // File or config write failed
	TypeInternal      = "internal"      // Internal/unexpected errors
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
)

// ConfigurationError reports an invalid steps document. It is the only error
// class that is fatal to the process.
type ConfigurationError struct {
	Path  string // Document path, if known
	Step  string // Step name or "#index" locator, if known
	Field string // Offending field, if known
	Msg   string
	Err   error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	if e.Step != "" {
		fmt.Fprintf(&b, "step %s: ", e.Step)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "%s: ", e.Field)
	}
	b.WriteString(e.Msg)
	if e.Err != nil {
		if e.Msg != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// LaunchError reports that the shell could not be spawned at all.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %q: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// CommandError reports a command that ran and exited non-zero.
type CommandError struct {
	Command  string
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q exited with code %d", e.Command, e.ExitCode)
}

// IOError reports a failed file or config write.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsConfiguration checks if the error is a configuration error.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsLaunch checks if the error is a launch error.
func IsLaunch(err error) bool {
	var target *LaunchError
	return errors.As(err, &target)
}

// IsCommand checks if the error is a non-zero command exit.
func IsCommand(err error) bool {
	var target *CommandError
	return errors.As(err, &target)
}

// IsIO checks if the error is a file or config write failure.
func IsIO(err error) bool {
	var target *IOError
	return errors.As(err, &target)
}

// ClassifyError determines the type of error for appropriate handling.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case IsConfiguration(err):
		return TypeConfiguration
	case IsLaunch(err):
		return TypeLaunch
	case IsCommand(err):
		return TypeCommand
	case IsIO(err):
		return TypeIO
	}
	return TypeInternal
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if IsConfiguration(err) {
		return ExitConfiguration
	}
	return ExitFailure
}

// Pretty formats an error with a user-friendly message and actionable hints.
func Pretty(err error) string {
	if err == nil {
		return ""
	}

	baseMsg := err.Error()

	switch ClassifyError(err) {
	case TypeConfiguration:
		return fmt.Sprintf("Invalid steps document: %s\n\nHint: Check the document against the expected layout:\n"+
			"  - every step needs a non-empty name and a type (script, add_text, git_config, app_selection)\n"+
			"  - stepwise validate <file> reports problems without starting the wizard", baseMsg)

	case TypeLaunch:
		return fmt.Sprintf("Could not start shell: %s\n\nHint: Check that the configured shell exists:\n"+
			"  - the default shell is bash; set 'shell:' in the document to override", baseMsg)

	case TypeCommand:
		return fmt.Sprintf("Command failed: %s", baseMsg)

	case TypeIO:
		return fmt.Sprintf("Write failed: %s\n\nHint: Check file permissions and that the parent directory exists.", baseMsg)

	default:
		return fmt.Sprintf("Error: %s", baseMsg)
	}
}

// WrapWithHint wraps an error with an additional hint message.
func WrapWithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w\n\nHint: %s", err, hint)
}
