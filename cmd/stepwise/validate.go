// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/monadic/stepwise/internal/config"
	"github.com/monadic/stepwise/internal/step"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a steps document without running it",
	Long: `Check a steps document without running it.

Every problem in the document is reported at once. The exit status is 2 when
the document is invalid.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeDocuments,
	RunE:              runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	doc, err := config.Load(documentPath(args))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d steps OK\n", doc.Path, len(doc.Steps))
	counts := doc.CountByKind()
	for _, k := range step.Kinds {
		if counts[k] > 0 {
			fmt.Fprintf(out, "  %-14s %d\n", k, counts[k])
		}
	}
	if doc.UsesSudo() {
		fmt.Fprintln(out, "Note: some commands use sudo")
	}
	return nil
}
