// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/pydist-tools/distcheck/pkg/check"
	"github.com/pydist-tools/distcheck/pkg/cliutil"
	"github.com/pydist-tools/distcheck/pkg/dist"
)

func init() {
	var flags struct {
		Strict bool
		Format string
	}
	cmd := &cobra.Command{
		Use:   "check [flags] DISTFILES_AND_DISTDIRS...",
		Short: "Validate distribution artifacts",
		Args:  cliutil.WrapPositionalArgs(cobra.MinimumNArgs(1)),
		Long: "Check that the named wheel and sdist files (or dist/ directories " +
			"containing them) have metadata that a package index will accept and " +
			"render.  With --strict, warnings are fatal too.",

		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var report check.Report
			for _, arg := range args {
				info, err := os.Stat(arg)
				if err != nil {
					return err
				}
				if info.IsDir() {
					artifacts, err := dist.Scan(arg)
					if err != nil {
						return err
					}
					for _, artifact := range artifacts {
						if err := check.CheckPath(ctx, artifact.Path, &report); err != nil {
							return err
						}
					}
				} else {
					if err := check.CheckPath(ctx, arg, &report); err != nil {
						return err
					}
				}
			}
			report.Sort()

			switch flags.Format {
			case "text":
				for _, finding := range report.Findings {
					fmt.Println(finding)
				}
				fmt.Printf("checked %d artifacts: %d errors, %d warnings\n",
					report.Checked, report.Errors(), report.Warnings())
			case "yaml":
				bs, err := yaml.Marshal(&report)
				if err != nil {
					return err
				}
				if _, err := os.Stdout.Write(bs); err != nil {
					return err
				}
			default:
				return fmt.Errorf("invalid --format: %q", flags.Format)
			}

			if !report.Pass(flags.Strict) {
				return fmt.Errorf("check failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "Treat warnings as errors")
	cmd.Flags().StringVar(&flags.Format, "format", "text", "Output `FORMAT`: text or yaml")

	argparser.AddCommand(cmd)
}
