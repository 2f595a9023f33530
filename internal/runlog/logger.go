// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

// Package runlog writes a session transcript of every step run to a file.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// DefaultDir is where session logs are written unless overridden.
const DefaultDir = ".stepwise/logs"

// Logger logs wizard sessions to a file
type Logger struct {
	mu        sync.Mutex
	file      *os.File
	startTime time.Time
	command   string
}

// New creates a new logger for a session in dir
func New(dir, command string) (*Logger, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	// Create log file with timestamp
	timestamp := time.Now().Format("2006-01-02-150405")
	logPath := filepath.Join(dir, fmt.Sprintf("%s-%s.log", command, timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	logger := &Logger{
		file:      file,
		startTime: time.Now(),
		command:   command,
	}

	// Write header
	logger.writeHeader()

	return logger, nil
}

func (l *Logger) writeHeader() {
	l.file.WriteString("=" + strings.Repeat("=", 79) + "\n")
	l.file.WriteString(fmt.Sprintf("stepwise: %s\n", l.command))
	l.file.WriteString(fmt.Sprintf("Started: %s\n", l.startTime.Format(time.RFC3339)))
	l.file.WriteString("=" + strings.Repeat("=", 79) + "\n\n")
}

// Log writes a message to the log file
func (l *Logger) Log(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logLocked(format, args...)
}

func (l *Logger) logLocked(format string, args ...interface{}) {
	if l.file == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05")
	msg := fmt.Sprintf(format, args...)
	l.file.WriteString(fmt.Sprintf("[%s] %s\n", timestamp, msg))
}

// Section writes a section header
func (l *Logger) Section(title string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sectionLocked(title)
}

func (l *Logger) sectionLocked(title string) {
	if l.file == nil {
		return
	}
	l.file.WriteString(fmt.Sprintf("\n--- %s ---\n", title))
}

// LogStep writes the transcript of one finished run. It is a no-op once
// the logger is closed.
func (l *Logger) LogStep(name, status string, duration time.Duration, lines []string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	l.sectionLocked("STEP " + name)
	l.logLocked("Status: %s", status)
	l.logLocked("Duration: %s", duration.Round(time.Millisecond))
	for _, line := range lines {
		l.file.WriteString("    " + line + "\n")
	}
}

// Logr exposes the file as a logr sink. Diagnostics up to verbosity v are
// written; a nil Logger yields a discarding logger.
func (l *Logger) Logr(v int) logr.Logger {
	if l == nil {
		return logr.Discard()
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			l.Log("%s: %s", prefix, args)
			return
		}
		l.Log("%s", args)
	}, funcr.Options{Verbosity: v})
}

// Path returns the log file path
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Close closes the log file and returns its path
func (l *Logger) Close() string {
	if l == nil {
		return ""
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return ""
	}

	// Write footer
	l.file.WriteString(fmt.Sprintf("\n\nCompleted: %s\n", time.Now().Format(time.RFC3339)))
	l.file.WriteString(fmt.Sprintf("Duration: %s\n", time.Since(l.startTime).Round(time.Millisecond)))

	path := l.file.Name()
	l.file.Close()
	l.file = nil
	return path
}
