// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package pep503_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pydist-tools/distcheck/pkg/python/pep503"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()
	testcases := map[string]string{
		"Django":            "django",
		"my.package":        "my-package",
		"my--package":       "my-package",
		"My_._.Package":     "my-package",
		"spatialdata":       "spatialdata",
		"ruamel.yaml.clib":  "ruamel-yaml-clib",
		"already-normal":    "already-normal",
		"Mixed_Separators.": "mixed-separators-",
	}
	for input, expected := range testcases {
		assert.Equal(t, expected, pep503.NormalizeName(input), "input=%q", input)
	}
}

func TestIsValidName(t *testing.T) {
	t.Parallel()
	for _, valid := range []string{"a", "A3", "my-package", "my.package", "my_package", "x9.y_z-2"} {
		assert.True(t, pep503.IsValidName(valid), "input=%q", valid)
	}
	for _, invalid := range []string{"", "-leading", "trailing_", ".dot", "has space", "naïve"} {
		assert.False(t, pep503.IsValidName(invalid), "input=%q", invalid)
	}
}
