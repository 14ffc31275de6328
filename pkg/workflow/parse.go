// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

// Package workflow parses and lints GitHub-Actions-shaped release workflow
// definitions.  It does not execute them.
package workflow

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"sigs.k8s.io/yaml"
)

// A Workflow is a parsed workflow file.
type Workflow struct {
	Name string
	On   Triggers
	Jobs map[string]Job
}

// UnmarshalJSON is custom (rather than struct tags) for two reasons: the
// top-level parse is strict, and an unquoted `on:` key is the YAML 1.1
// boolean, which arrives here as the key "true".
func (wf *Workflow) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, val := range raw {
		var err error
		switch key {
		case "name":
			err = json.Unmarshal(val, &wf.Name)
		case "on", "true":
			err = json.Unmarshal(val, &wf.On)
		case "jobs":
			err = json.Unmarshal(val, &wf.Jobs)
		default:
			return fmt.Errorf("unknown top-level field: %q", key)
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}
	return nil
}

// Triggers is a workflow's `on:` value.
type Triggers struct {
	Push        *Trigger
	PullRequest *Trigger
	// Other is the names of any further trigger events, which the lint rules
	// do not care about.
	Other []string
}

// UnmarshalJSON accepts the three shapes `on:` comes in: a single event name,
// a list of event names, or a map from event name to filter.
func (trig *Triggers) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return trig.setEvent(name, nil)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		for _, name := range names {
			if err := trig.setEvent(name, nil); err != nil {
				return err
			}
		}
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("on: expected an event name, list, or map: %w", err)
	}
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		var filter *Trigger
		// an event with no filter may be spelled `push:` with a null value
		if string(raw[key]) != "null" {
			filter = new(Trigger)
			if err := json.Unmarshal(raw[key], filter); err != nil {
				return fmt.Errorf("on.%s: %w", key, err)
			}
		}
		if err := trig.setEvent(key, filter); err != nil {
			return err
		}
	}
	return nil
}

func (trig *Triggers) setEvent(name string, filter *Trigger) error {
	if filter == nil {
		filter = new(Trigger)
	}
	switch name {
	case "push":
		trig.Push = filter
	case "pull_request":
		trig.PullRequest = filter
	default:
		trig.Other = append(trig.Other, name)
	}
	return nil
}

// A Trigger is the filter attached to one `on:` event.  Filters the lint
// rules don't inspect (tags, paths, types, ...) are ignored.
type Trigger struct {
	Branches []string `json:"branches"`
}

// HasBranch returns whether the trigger fires for the given branch; an absent
// branches filter matches every branch.
func (trig *Trigger) HasBranch(branch string) bool {
	if len(trig.Branches) == 0 {
		return true
	}
	for _, b := range trig.Branches {
		if b == branch {
			return true
		}
	}
	return false
}

// A Job is one entry in a workflow's `jobs:` map.
type Job struct {
	Name   string `json:"name"`
	RunsOn Scalar `json:"runs-on"`
	Steps  []Step `json:"steps"`
}

// A Step is one entry in a job's `steps:` list.
type Step struct {
	Name string            `json:"name"`
	Uses string            `json:"uses"`
	With map[string]Scalar `json:"with"`
	Run  string            `json:"run"`
}

// A Scalar is a YAML scalar decoded to its string form.  Workflow files often
// write values like `python-version: 3.12` unquoted, which YAML parses as a
// number rather than a string.
type Scalar string

func (s *Scalar) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = Scalar(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = Scalar(num.String())
		return nil
	}
	var boolean bool
	if err := json.Unmarshal(data, &boolean); err == nil {
		*s = Scalar(strconv.FormatBool(boolean))
		return nil
	}
	return fmt.Errorf("expected a scalar, got: %s", data)
}

// Parse parses a workflow file.  The top level is strict (unknown fields are
// an error); inside jobs and steps, fields that the lint rules don't inspect
// are ignored.
func Parse(data []byte) (*Workflow, error) {
	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("workflow.Parse: %w", err)
	}
	return &wf, nil
}
