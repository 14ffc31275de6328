// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pydist-tools/distcheck/pkg/cliutil"
	"github.com/pydist-tools/distcheck/pkg/python/pep503"
	"github.com/pydist-tools/distcheck/pkg/python/sdist"
	"github.com/pydist-tools/distcheck/pkg/python/wheel"
)

func init() {
	var indexServer string
	cmd := &cobra.Command{
		Use:   "getdist [flags] DISTFILENAME >DISTFILENAME",
		Short: "Download a distribution artifact from a package index",
		Args:  cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),

		Long: "Given a wheel or sdist filename, download it from a package index, " +
			"writing the file contents to stdout.  Checksums published by the index " +
			"are verified; GPG signatures are not.",

		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			filename := args[0]

			var distribution string
			switch {
			case strings.HasSuffix(filename, ".whl"):
				nameData, err := wheel.ParseFilename(filename)
				if err != nil {
					return err
				}
				distribution = nameData.Distribution
			case strings.HasSuffix(filename, ".tar.gz"):
				nameData, err := sdist.ParseFilename(filename)
				if err != nil {
					return err
				}
				distribution = nameData.Distribution
			default:
				return fmt.Errorf("unknown distribution format: %q", filename)
			}

			client := &pep503.Client{
				BaseURL: indexServer,
			}
			links, err := client.ListPackageFiles(ctx, distribution)
			if err != nil {
				return err
			}
			for _, link := range links {
				if link.Text != filename {
					continue
				}
				content, err := link.Get(ctx)
				if err != nil {
					return err
				}
				if _, err := os.Stdout.Write(content); err != nil {
					return err
				}
				return nil
			}
			return fmt.Errorf("package index does not have file %q", filename)
		},
	}
	cmd.Flags().StringVar(&indexServer, "index-server", pep503.PyPIBaseURL,
		"Index server to download the artifact from")

	argparser.AddCommand(cmd)
}
