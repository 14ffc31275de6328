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
	"github.com/pydist-tools/distcheck/pkg/dist"
	"github.com/pydist-tools/distcheck/pkg/fsutil"
	"github.com/pydist-tools/distcheck/pkg/reproducible"
)

func init() {
	var strict bool
	cmd := &cobra.Command{
		Use:   "layer [flags] DISTDIR >OUT_LAYERFILE",
		Short: "Pack validated distribution artifacts in to a layer",
		Args:  cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		Long: "Check every artifact in DISTDIR, and if they all pass, write them as " +
			"an OCI image layer tarball to stdout.  Set SOURCE_DATE_EPOCH for a " +
			"byte-reproducible layer.",

		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			artifacts, err := dist.Scan(args[0])
			if err != nil {
				return err
			}

			var report check.Report
			for _, artifact := range artifacts {
				if err := check.CheckPath(ctx, artifact.Path, &report); err != nil {
					return err
				}
			}
			if !report.Pass(strict) {
				report.Sort()
				for _, finding := range report.Findings {
					fmt.Fprintln(os.Stderr, finding)
				}
				return fmt.Errorf("refusing to pack artifacts that fail checks")
			}

			layer, err := dist.Layer(artifacts, reproducible.Now())
			if err != nil {
				return err
			}
			return fsutil.WriteLayer(layer, os.Stdout)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat check warnings as errors")

	argparser.AddCommand(cmd)
}
