// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package workflow_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pydist-tools/distcheck/pkg/check"
	"github.com/pydist-tools/distcheck/pkg/workflow"
)

const goodWorkflow = `
name: Build and check

on:
  push:
    branches: [main]
  pull_request:
    branches: [main]

jobs:
  package:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - name: Set up Python
        uses: actions/setup-python@v5
        with:
          python-version: "3.12"
          cache: pip
      - name: Install packaging tools
        run: |
          python -m pip install --upgrade pip
          pip install wheel twine build
      - name: Build package
        run: python -m build
      - name: Check distribution
        run: twine check --strict dist/*.whl
`

func lint(t *testing.T, yamlStr string) *check.Report {
	t.Helper()
	wf, err := workflow.Parse([]byte(yamlStr))
	require.NoError(t, err)
	var report check.Report
	workflow.Lint("release.yml", wf, "main", &report)
	return &report
}

func rules(report *check.Report) []string {
	var ret []string
	for _, finding := range report.Findings {
		ret = append(ret, finding.Rule)
	}
	return ret
}

func TestParse(t *testing.T) {
	t.Parallel()

	wf, err := workflow.Parse([]byte(goodWorkflow))
	require.NoError(t, err)
	assert.Equal(t, "Build and check", wf.Name)
	require.NotNil(t, wf.On.Push)
	assert.Equal(t, []string{"main"}, wf.On.Push.Branches)
	require.NotNil(t, wf.On.PullRequest)
	require.Contains(t, wf.Jobs, "package")
	job := wf.Jobs["package"]
	assert.Equal(t, workflow.Scalar("ubuntu-latest"), job.RunsOn)
	require.Len(t, job.Steps, 5)
	assert.Equal(t, "actions/checkout@v4", job.Steps[0].Uses)
	assert.Equal(t, workflow.Scalar("3.12"), job.Steps[1].With["python-version"])
}

func TestParseTriggerForms(t *testing.T) {
	t.Parallel()

	// single event name
	wf, err := workflow.Parse([]byte("on: push\njobs: {}\n"))
	require.NoError(t, err)
	assert.NotNil(t, wf.On.Push)
	assert.Nil(t, wf.On.PullRequest)

	// list of event names
	wf, err = workflow.Parse([]byte("on: [push, pull_request]\njobs: {}\n"))
	require.NoError(t, err)
	assert.NotNil(t, wf.On.Push)
	assert.NotNil(t, wf.On.PullRequest)
	assert.True(t, wf.On.Push.HasBranch("anything"))

	// map form with a filter-less event and an unrelated event
	wf, err = workflow.Parse([]byte("on:\n  push:\n  workflow_dispatch: {}\njobs: {}\n"))
	require.NoError(t, err)
	assert.NotNil(t, wf.On.Push)
	assert.Equal(t, []string{"workflow_dispatch"}, wf.On.Other)
}

func TestParseUnquotedScalars(t *testing.T) {
	t.Parallel()

	// `python-version: 3.12` without quotes is a YAML float
	wf, err := workflow.Parse([]byte(strings.ReplaceAll(goodWorkflow, `"3.12"`, `3.12`)))
	require.NoError(t, err)
	assert.Equal(t, workflow.Scalar("3.12"), wf.Jobs["package"].Steps[1].With["python-version"])
}

func TestParseUnknownTopLevelField(t *testing.T) {
	t.Parallel()
	_, err := workflow.Parse([]byte("name: x\nenv: {}\njobs: {}\n"))
	assert.Error(t, err)
}

func TestLintClean(t *testing.T) {
	t.Parallel()
	report := lint(t, goodWorkflow)
	assert.Empty(t, report.Findings, "findings=%v", report.Findings)
	assert.Equal(t, 1, report.Checked)
}

func TestLintRules(t *testing.T) {
	t.Parallel()

	testcases := map[string]struct {
		mutate        func(string) string
		expectedRules []string
		severity      check.Severity
	}{
		"no-pull-request": {
			mutate: func(in string) string {
				return strings.Replace(in, "  pull_request:\n    branches: [main]\n", "", 1)
			},
			expectedRules: []string{"trigger-coverage"},
			severity:      check.SeverityError,
		},
		"wrong-branch": {
			mutate: func(in string) string {
				return strings.Replace(in, "push:\n    branches: [main]", "push:\n    branches: [develop]", 1)
			},
			expectedRules: []string{"trigger-coverage"},
			severity:      check.SeverityError,
		},
		"floating-python": {
			mutate: func(in string) string {
				return strings.Replace(in, `"3.12"`, `"3.x"`, 1)
			},
			expectedRules: []string{"pinned-python"},
			severity:      check.SeverityWarning,
		},
		"no-python-version": {
			mutate: func(in string) string {
				return strings.Replace(in, "python-version: \"3.12\"\n          ", "", 1)
			},
			expectedRules: []string{"pinned-python"},
			severity:      check.SeverityError,
		},
		"no-pip-cache": {
			mutate: func(in string) string {
				return strings.Replace(in, "\n          cache: pip", "", 1)
			},
			expectedRules: []string{"pip-cache"},
			severity:      check.SeverityWarning,
		},
		"missing-tool": {
			mutate: func(in string) string {
				return strings.Replace(in, "pip install wheel twine build", "pip install wheel build", 1)
			},
			expectedRules: []string{"packaging-tools"},
			severity:      check.SeverityError,
		},
		"no-pip-upgrade": {
			mutate: func(in string) string {
				return strings.Replace(in, "python -m pip install --upgrade pip\n          ", "", 1)
			},
			expectedRules: []string{"packaging-tools"},
			severity:      check.SeverityWarning,
		},
		"no-build-step": {
			mutate: func(in string) string {
				return strings.Replace(in, "      - name: Build package\n        run: python -m build\n", "", 1)
			},
			expectedRules: []string{"build-step"},
			severity:      check.SeverityError,
		},
		"lax-check": {
			mutate: func(in string) string {
				return strings.Replace(in, "twine check --strict dist/*.whl", "twine check dist/*.whl", 1)
			},
			expectedRules: []string{"strict-check-step"},
			severity:      check.SeverityError,
		},
		"check-before-build": {
			mutate: func(in string) string {
				build := "      - name: Build package\n        run: python -m build\n"
				check := "      - name: Check distribution\n        run: twine check --strict dist/*.whl\n"
				in = strings.Replace(in, build, "", 1)
				return strings.Replace(in, check, check+build, 1)
			},
			expectedRules: []string{"step-order"},
			severity:      check.SeverityError,
		},
	}
	for tcName, tc := range testcases {
		tc := tc
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			report := lint(t, tc.mutate(goodWorkflow))
			require.Equal(t, tc.expectedRules, rules(report), "findings=%v", report.Findings)
			assert.Equal(t, tc.severity, report.Findings[0].Severity)
		})
	}
}

func TestLintEmptyWorkflow(t *testing.T) {
	t.Parallel()
	report := lint(t, "jobs: {}\n")
	assert.Equal(t, []string{
		"trigger-coverage",
		"trigger-coverage",
		"pinned-python",
		"packaging-tools",
		"build-step",
		"strict-check-step",
	}, rules(report))
}
