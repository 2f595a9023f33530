// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

// Package metrics records step and command outcomes in a private Prometheus
// registry that can be written out as a node-exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stepwise"

// Recorder is safe for concurrent use. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	commands *prometheus.CounterVec
}

// New creates a recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_runs_total",
			Help:      "Step runs by final status.",
		}, []string{"step", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_run_duration_seconds",
			Help:      "Wall-clock duration of step runs.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}, []string{"step"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shell_commands_total",
			Help:      "Shell invocations by result (success, failure, launch_error).",
		}, []string{"result"}),
	}
	r.registry.MustRegister(r.runs, r.duration, r.commands)
	return r
}

// ObserveRun records a finished run.
func (r *Recorder) ObserveRun(stepName, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(stepName, status).Inc()
	r.duration.WithLabelValues(stepName).Observe(d.Seconds())
}

// Command results.
const (
	CommandSuccess     = "success"
	CommandFailure     = "failure"
	CommandLaunchError = "launch_error"
)

// ObserveCommand records one shell invocation.
func (r *Recorder) ObserveCommand(result string) {
	if r == nil {
		return
	}
	r.commands.WithLabelValues(result).Inc()
}

// Registry exposes the underlying gatherer.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
