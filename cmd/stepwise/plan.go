// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/monadic/stepwise/internal/config"
	"github.com/monadic/stepwise/internal/handler"
)

var planOutput string

var planCmd = &cobra.Command{
	Use:   "plan [file]",
	Short: "Print the actions each step would perform",
	Long: `Print the actions each step would perform, without running anything.

App selection steps are shown as a selection prompt listing the apps on offer.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeDocuments,
	RunE:              runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "yaml", "Output format (yaml|json)")
	rootCmd.AddCommand(planCmd)
}

// planStep is the printed form of one step's plan.
type planStep struct {
	Name       string       `json:"name"`
	Type       string       `json:"type"`
	Workdir    string       `json:"workdir,omitempty"`
	PreScript  string       `json:"pre_script,omitempty"`
	Actions    []planAction `json:"actions"`
	PostScript string       `json:"post_script,omitempty"`
}

type planAction struct {
	Action string         `json:"action"`
	Detail handler.Action `json:"detail"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	doc, err := config.Load(documentPath(args))
	if err != nil {
		return err
	}

	steps, err := buildPlan(doc, handler.DefaultRegistry())
	if err != nil {
		return err
	}

	var out []byte
	switch planOutput {
	case "yaml":
		out, err = yaml.Marshal(steps)
	case "json":
		out, err = json.MarshalIndent(steps, "", "  ")
		out = append(out, '\n')
	default:
		return fmt.Errorf("unsupported output format %q (use yaml or json)", planOutput)
	}
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func buildPlan(doc *config.Document, reg *handler.Registry) ([]planStep, error) {
	steps := make([]planStep, 0, len(doc.Steps))
	for _, st := range doc.Steps {
		actions, err := reg.Plan(st)
		if err != nil {
			return nil, fmt.Errorf("plan step %q: %w", st.Name, err)
		}
		ps := planStep{
			Name:       st.Name,
			Type:       string(st.Kind),
			Workdir:    st.Dir,
			PreScript:  st.PreScript,
			PostScript: st.PostScript,
			Actions:    make([]planAction, 0, len(actions)),
		}
		for _, a := range actions {
			ps.Actions = append(ps.Actions, planAction{Action: actionName(a), Detail: a})
		}
		steps = append(steps, ps)
	}
	return steps, nil
}

func actionName(a handler.Action) string {
	switch a.(type) {
	case handler.RunCommand:
		return "run"
	case handler.AppendToFile:
		return "append"
	case handler.SetGitConfig:
		return "git_config"
	case handler.PromptSelection:
		return "select"
	default:
		return "unknown"
	}
}
