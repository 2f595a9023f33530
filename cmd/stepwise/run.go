// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/monadic/stepwise/internal/clierr"
	"github.com/monadic/stepwise/internal/config"
	"github.com/monadic/stepwise/internal/metrics"
	"github.com/monadic/stepwise/internal/runlog"
	"github.com/monadic/stepwise/internal/runner"
	"github.com/monadic/stepwise/internal/shell"
	"github.com/monadic/stepwise/internal/step"
	"github.com/monadic/stepwise/internal/tui"
	"github.com/monadic/stepwise/internal/view"
	"github.com/monadic/stepwise/internal/wizard"
)

var (
	runLogDir      string
	runNoLog       bool
	runSudo        bool
	runMetricsFile string
	runNoColor     bool
	runVerbosity   int
)

func init() {
	rootCmd.Flags().StringVar(&runLogDir, "log-dir", runlog.DefaultDir, "Directory for session transcripts")
	rootCmd.Flags().BoolVar(&runNoLog, "no-log", false, "Do not write a session transcript")
	rootCmd.Flags().BoolVar(&runSudo, "sudo", false, "Refresh sudo credentials before starting")
	rootCmd.Flags().StringVar(&runMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
	rootCmd.Flags().BoolVar(&runNoColor, "no-color", false, "Disable colors")
	rootCmd.Flags().IntVarP(&runVerbosity, "verbose", "v", 0, "Transcript log verbosity")
	rootCmd.ValidArgsFunction = completeDocuments
}

func runWizard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	errOut := cmd.ErrOrStderr()

	doc, err := config.Load(documentPath(args))
	if err != nil {
		return err
	}

	if !isInteractive() {
		return clierr.WrapWithHint(errors.New("stepwise needs an interactive terminal"),
			fmt.Sprintf("use 'stepwise plan %s' to preview the steps without running them", doc.Path))
	}
	configureColor(runNoColor)

	var transcript *runlog.Logger
	if !runNoLog {
		transcript, err = runlog.New(runLogDir, "run")
		if err != nil {
			fmt.Fprintf(errOut, "Warning: session log disabled: %v\n", err)
		} else {
			transcript.Log("Document: %s (%d steps)", doc.Path, len(doc.Steps))
			defer func() {
				if path := transcript.Close(); path != "" {
					fmt.Fprintf(errOut, "Session log: %s\n", path)
				}
			}()
		}
	}
	log := transcript.Logr(runVerbosity)

	if err := prepareSudo(ctx, doc, errOut); err != nil {
		transcript.Log("sudo warm-up failed: %v", err)
		fmt.Fprintf(errOut, "Warning: %v\n", err)
	}

	var rec *metrics.Recorder
	if runMetricsFile != "" {
		rec = metrics.New()
	}

	ctl, err := newController(ctx, doc, log, transcript, rec)
	if err != nil {
		return err
	}
	if err := tui.Run(ctx, ctl, "stepwise · "+doc.Path); err != nil {
		return fmt.Errorf("run terminal UI: %w", err)
	}

	printSummary(cmd.OutOrStdout(), ctl.Steps())
	if err := rec.WriteTextfile(runMetricsFile); err != nil {
		fmt.Fprintf(errOut, "Warning: write metrics: %v\n", err)
	}
	return nil
}

// newController wires the executor, runner and controller for doc.
func newController(ctx context.Context, doc *config.Document, log logr.Logger, transcript *runlog.Logger, rec *metrics.Recorder) (*wizard.Controller, error) {
	sh := shell.New(doc.Shell)
	sh.Log = log.WithName("shell")

	r := runner.New(sh)
	r.Log = log.WithName("runner")
	r.Metrics = rec
	r.Transcript = transcript

	return wizard.New(ctx, doc.Steps, r, log.WithName("wizard"))
}

// prepareSudo refreshes sudo credentials when asked to, or when the document
// uses sudo and the user agrees.
func prepareSudo(ctx context.Context, doc *config.Document, errOut io.Writer) error {
	if !runSudo {
		if !doc.UsesSudo() {
			return nil
		}
		ok, err := confirmSudo(ctx)
		if err != nil || !ok {
			return err
		}
	}
	fmt.Fprintln(errOut, "Refreshing sudo credentials (sudo -v)...")
	return warmSudo(ctx)
}

// printSummary writes the final status of every step after the UI exits.
func printSummary(w io.Writer, steps []*step.Step) {
	counts := map[step.Status]int{}
	for _, st := range steps {
		status := st.Status()
		counts[status]++
		fmt.Fprintf(w, "%s %s\n", view.Badge(status), st.Name)
	}
	fmt.Fprintf(w, "\n%d succeeded, %d failed, %d skipped, %d pending\n",
		counts[step.Success], counts[step.Failed], counts[step.Skipped], counts[step.Pending]+counts[step.Running])
}
