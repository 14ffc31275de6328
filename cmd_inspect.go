// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/pydist-tools/distcheck/pkg/cliutil"
	"github.com/pydist-tools/distcheck/pkg/python/metadata"
	"github.com/pydist-tools/distcheck/pkg/python/sdist"
	"github.com/pydist-tools/distcheck/pkg/python/wheel"
)

func init() {
	cmd := &cobra.Command{
		Use:   "inspect [flags] DISTFILE >DISTFILE.yml",
		Short: "Dump a distribution artifact's metadata as YAML",
		Args:  cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),

		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			filename := args[0]

			var out struct {
				Format   string              `yaml:"format"`
				Name     string              `yaml:"name"`
				Version  string              `yaml:"version"`
				Summary  string              `yaml:"summary,omitempty"`
				Tags     []string            `yaml:"tags,omitempty"`
				Fields   map[string][]string `yaml:"fields"`
				BodyDesc bool                `yaml:"has-description"`
			}
			var md *metadata.Metadata
			switch {
			case strings.HasSuffix(filename, ".whl"):
				wh, err := wheel.Open(filename)
				if err != nil {
					return err
				}
				defer wh.Close()
				out.Format = "wheel"
				if md, err = wh.Metadata(); err != nil {
					return err
				}
				tags, err := wh.Tags(ctx)
				if err != nil {
					return err
				}
				for _, tag := range tags {
					out.Tags = append(out.Tags, tag.String())
				}
			case strings.HasSuffix(filename, ".tar.gz"):
				sd, err := sdist.Open(filename)
				if err != nil {
					return err
				}
				out.Format = "sdist"
				if md, err = sd.Metadata(); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown distribution format: %q", filename)
			}

			out.Name = md.Name
			out.Version = md.Version
			out.Summary = md.Summary
			out.Fields = md.Fields
			out.BodyDesc = md.Description != ""

			bs, err := yaml.Marshal(out)
			if err != nil {
				return err
			}
			if _, err := os.Stdout.Write(bs); err != nil {
				return err
			}
			return nil
		},
	}

	argparser.AddCommand(cmd)
}
