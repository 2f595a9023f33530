// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

// Command stepwise walks through a YAML list of provisioning steps in an
// interactive terminal UI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/monadic/stepwise/internal/clierr"
	"github.com/monadic/stepwise/internal/config"
)

var (
	// BuildTag is set during build
	BuildTag = "dev"
	// BuildDate is set during build
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "stepwise [file]",
	Short: "Run provisioning steps one at a time",
	Long: `stepwise - run provisioning steps one at a time

stepwise reads an ordered list of steps from a YAML document (steps.yaml by
default) and lets you run, skip and re-run each one while watching its
output. Step types:

  - script         run a shell command
  - add_text       append text to a file (e.g. ~/.bashrc)
  - git_config     apply git defaults and identity
  - app_selection  pick apps from a checklist and install them

Keys:
  enter run   n/→ next   p/← prev   s skip   ↑/↓ scroll   pgup/pgdn page   q quit
`,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runWizard,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, clierr.Pretty(err))
		os.Exit(clierr.ExitCode(err))
	}
}

func init() {
	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stepwise version %s (built %s)\n", BuildTag, BuildDate)
		},
	})

	// Add completion command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for stepwise.

Bash:
  $ source <(stepwise completion bash)
  # Or add to ~/.bashrc:
  $ stepwise completion bash >> ~/.bashrc

Zsh:
  $ source <(stepwise completion zsh)
  # Or install to fpath:
  $ stepwise completion zsh > "${fpath[1]}/_stepwise"

Fish:
  $ stepwise completion fish | source
  # Or install:
  $ stepwise completion fish > ~/.config/fish/completions/stepwise.fish

PowerShell:
  PS> stepwise completion powershell | Out-String | Invoke-Expression
`,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.ExactArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	})
}

// documentPath returns the document named in args, or the default.
func documentPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return config.DefaultPath
}

// completeDocuments offers YAML files for the document argument.
func completeDocuments(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
}
