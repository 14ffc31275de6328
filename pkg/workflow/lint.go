// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pydist-tools/distcheck/pkg/check"
)

// packagingTools are the tools a release workflow must install: the build
// frontend, the wheel backend, and the uploader/checker.
//
//nolint:gochecknoglobals // Would be 'const'.
var packagingTools = []string{"wheel", "twine", "build"}

var reExactVersion = regexp.MustCompile(`^[0-9]+(\.[0-9]+)+$`)

// Lint checks that the workflow does what a Python release workflow must do:
// run on pushes and pull requests for the release branch, set up a pinned
// interpreter, install the packaging toolchain, build, and strict-check the
// result.  Findings are recorded against `path`.
func Lint(path string, wf *Workflow, branch string, report *check.Report) {
	report.Checked++
	lintTriggers(path, wf, branch, report)

	steps := flattenSteps(wf)
	lintSetupPython(path, steps, report)
	lintCommands(path, steps, report)
}

func lintTriggers(path string, wf *Workflow, branch string, report *check.Report) {
	switch {
	case wf.On.Push == nil:
		report.Errorf(path, "trigger-coverage", "workflow does not run on push")
	case !wf.On.Push.HasBranch(branch):
		report.Errorf(path, "trigger-coverage", "push trigger does not cover branch %q (branches: %v)",
			branch, wf.On.Push.Branches)
	}
	switch {
	case wf.On.PullRequest == nil:
		report.Errorf(path, "trigger-coverage", "workflow does not run on pull_request")
	case !wf.On.PullRequest.HasBranch(branch):
		report.Errorf(path, "trigger-coverage", "pull_request trigger does not cover branch %q (branches: %v)",
			branch, wf.On.PullRequest.Branches)
	}
}

// flattenSteps returns every step of every job, in job-name order so that the
// lint output is stable.
func flattenSteps(wf *Workflow) []Step {
	jobNames := make([]string, 0, len(wf.Jobs))
	for jobName := range wf.Jobs {
		jobNames = append(jobNames, jobName)
	}
	sort.Strings(jobNames)
	var ret []Step
	for _, jobName := range jobNames {
		ret = append(ret, wf.Jobs[jobName].Steps...)
	}
	return ret
}

func lintSetupPython(path string, steps []Step, report *check.Report) {
	var setup *Step
	for i := range steps {
		if strings.HasPrefix(steps[i].Uses, "actions/setup-python") {
			setup = &steps[i]
			break
		}
	}
	if setup == nil {
		report.Errorf(path, "pinned-python", "no actions/setup-python step")
		return
	}

	version := string(setup.With["python-version"])
	switch {
	case version == "":
		report.Errorf(path, "pinned-python", "setup-python step does not set python-version")
	case !reExactVersion.MatchString(version):
		report.Warnf(path, "pinned-python", "python-version %q is not an exact version", version)
	}

	if string(setup.With["cache"]) != "pip" {
		report.Warnf(path, "pip-cache", "setup-python step does not enable pip dependency caching")
	}
}

func lintCommands(path string, steps []Step, report *check.Report) {
	installed, upgradesPip := installedTools(steps)
	if installed == nil {
		report.Errorf(path, "packaging-tools", "no step installs the packaging tools")
	} else {
		for _, tool := range packagingTools {
			if !installed[tool] {
				report.Errorf(path, "packaging-tools", "packaging tool %q is not installed", tool)
			}
		}
		if !upgradesPip {
			report.Warnf(path, "packaging-tools", "pip itself is not upgraded before installing tools")
		}
	}

	buildIdx, checkIdx := -1, -1
	for i, step := range steps {
		for _, line := range strings.Split(step.Run, "\n") {
			if strings.Contains(line, "python -m build") && buildIdx < 0 {
				buildIdx = i
			}
			if strings.Contains(line, "twine check") {
				checkIdx = i
				if !strings.Contains(line, "--strict") {
					report.Errorf(path, "strict-check-step", "twine check is not run with --strict")
				}
			}
		}
	}
	if buildIdx < 0 {
		report.Errorf(path, "build-step", "no step runs `python -m build`")
	}
	if checkIdx < 0 {
		report.Errorf(path, "strict-check-step", "no step runs `twine check`")
	}
	if buildIdx >= 0 && checkIdx >= 0 && checkIdx < buildIdx {
		report.Errorf(path, "step-order", "the check step runs before the build step")
	}
}

// installedTools scans the run commands for `pip install` invocations and
// returns the set of packages they install.  A nil map means no install
// command was found at all.
func installedTools(steps []Step) (tools map[string]bool, upgradesPip bool) {
	for _, step := range steps {
		for _, line := range strings.Split(step.Run, "\n") {
			if !strings.Contains(line, "pip install") {
				continue
			}
			if tools == nil {
				tools = make(map[string]bool)
			}
			fields := strings.Fields(line)
			upgrade := false
			for i, field := range fields {
				// skip up to and including "install"
				if field == "install" {
					fields = fields[i+1:]
					break
				}
			}
			for _, field := range fields {
				switch {
				case field == "--upgrade" || field == "-U":
					upgrade = true
				case strings.HasPrefix(field, "-"):
					// some other flag
				default:
					tools[field] = true
					if field == "pip" && upgrade {
						upgradesPip = true
					}
				}
			}
		}
	}
	return tools, upgradesPip
}
