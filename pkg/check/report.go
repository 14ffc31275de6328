// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

// Package check validates Python distribution artifacts the way a strict
// pre-upload check does: anything that would render wrong or be rejected by
// an index is an error, anything dubious is a warning.
package check

import (
	"fmt"
	"sort"
)

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (sev Severity) String() string {
	switch sev {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int(sev))
	}
}

// MarshalJSON lets a Severity render as its string form in YAML/JSON output
// (sigs.k8s.io/yaml goes through JSON).
func (sev Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + sev.String() + `"`), nil
}

// A Finding is one problem found in one artifact.
type Finding struct {
	Path     string   `json:"path"`
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Msg      string   `json:"msg"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s: %s", f.Path, f.Severity, f.Rule, f.Msg)
}

// A Report accumulates findings across artifacts.
type Report struct {
	Findings []Finding `json:"findings"`
	// Checked is how many artifacts were inspected.
	Checked int `json:"checked"`
}

func (r *Report) Add(path, rule string, severity Severity, format string, args ...interface{}) {
	r.Findings = append(r.Findings, Finding{
		Path:     path,
		Rule:     rule,
		Severity: severity,
		Msg:      fmt.Sprintf(format, args...),
	})
}

func (r *Report) Errorf(path, rule, format string, args ...interface{}) {
	r.Add(path, rule, SeverityError, format, args...)
}

func (r *Report) Warnf(path, rule, format string, args ...interface{}) {
	r.Add(path, rule, SeverityWarning, format, args...)
}

func (r *Report) Errors() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

func (r *Report) Warnings() int {
	return len(r.Findings) - r.Errors()
}

// Pass returns whether the report should be considered a success; in strict
// mode warnings are fatal too.
func (r *Report) Pass(strict bool) bool {
	if strict {
		return len(r.Findings) == 0
	}
	return r.Errors() == 0
}

// Sort orders the findings for stable output: by path, then errors before
// warnings, then by rule.
func (r *Report) Sort() {
	sort.SliceStable(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		return a.Rule < b.Rule
	})
}
