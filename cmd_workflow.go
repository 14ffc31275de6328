// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pydist-tools/distcheck/pkg/check"
	"github.com/pydist-tools/distcheck/pkg/cliutil"
	"github.com/pydist-tools/distcheck/pkg/workflow"
)

//nolint:gochecknoglobals // Matches the cobra idiom of the root argparser.
var argparserWorkflow = &cobra.Command{
	Use:   "workflow {[flags]|SUBCOMMAND...}",
	Short: "Work with release workflow definitions",
	Args:  cliutil.OnlySubcommands,
	RunE:  cliutil.RunSubcommands,
}

func init() {
	argparser.AddCommand(argparserWorkflow)
}

func init() {
	var flags struct {
		Branch string
		Strict bool
	}
	cmd := &cobra.Command{
		Use:   "lint [flags] WORKFLOW_FILES...",
		Short: "Lint a release workflow definition",
		Args:  cliutil.WrapPositionalArgs(cobra.MinimumNArgs(1)),
		Long: "Check that each workflow file builds and strict-checks the package " +
			"on pushes and pull requests for the release branch, with a pinned " +
			"interpreter and the full packaging toolchain installed.",

		RunE: func(cmd *cobra.Command, args []string) error {
			var report check.Report
			for _, filename := range args {
				data, err := os.ReadFile(filename)
				if err != nil {
					return err
				}
				wf, err := workflow.Parse(data)
				if err != nil {
					return err
				}
				workflow.Lint(filename, wf, flags.Branch, &report)
			}
			report.Sort()

			for _, finding := range report.Findings {
				fmt.Println(finding)
			}
			fmt.Printf("linted %d workflows: %d errors, %d warnings\n",
				report.Checked, report.Errors(), report.Warnings())

			if !report.Pass(flags.Strict) {
				return fmt.Errorf("lint failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.Branch, "branch", "main", "The release `BRANCH` the workflow must cover")
	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "Treat warnings as errors")

	argparserWorkflow.AddCommand(cmd)
}
