// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

// Package pep503 implements PEP 503 -- Simple Repository API.
//
// https://www.python.org/dev/peps/pep-0503/
package pep503

import (
	"regexp"
	"strings"
)

var reNameSeparators = regexp.MustCompile(`[-_.]+`)

// NormalizeName normalizes a project name for comparison and for use in
// simple-API URLs: lowercased, with runs of "-", "_", and "." collapsed to a
// single "-".
func NormalizeName(name string) string {
	return strings.ToLower(reNameSeparators.ReplaceAllString(name, "-"))
}

var reValidName = regexp.MustCompile(`(?i)^([A-Z0-9]|[A-Z0-9][A-Z0-9._-]*[A-Z0-9])$`)

// IsValidName reports whether name is a valid project name per the PyPA core
// metadata rules: ASCII alphanumerics, ".", "_", and "-", starting and ending
// with an alphanumeric.
func IsValidName(name string) bool {
	return reValidName.MatchString(name)
}
