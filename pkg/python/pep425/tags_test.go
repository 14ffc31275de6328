// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package pep425_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pydist-tools/distcheck/pkg/python/pep425"
)

func TestParseTag(t *testing.T) {
	t.Parallel()
	tag, err := pep425.ParseTag("py2.py3-none-any")
	require.NoError(t, err)
	assert.Equal(t, &pep425.Tag{Python: "py2.py3", ABI: "none", Platform: "any"}, tag)
	assert.Equal(t, "py2.py3-none-any", tag.String())

	for _, invalid := range []string{"", "py3-none", "py3-none-any-extra", "py3--any"} {
		_, err := pep425.ParseTag(invalid)
		assert.Error(t, err, "input=%q", invalid)
	}
}

func TestDecompress(t *testing.T) {
	t.Parallel()
	tag := pep425.Tag{Python: "py2.py3", ABI: "none", Platform: "manylinux1_x86_64.any"}
	assert.Equal(t, []pep425.Tag{
		{"py2", "none", "manylinux1_x86_64"},
		{"py2", "none", "any"},
		{"py3", "none", "manylinux1_x86_64"},
		{"py3", "none", "any"},
	}, tag.Decompress())
}

func TestIntersect(t *testing.T) {
	t.Parallel()
	assert.True(t, pep425.Intersect(
		[]pep425.Tag{{"py2.py3", "none", "any"}},
		[]pep425.Tag{{"py3", "none", "any"}}))
	assert.False(t, pep425.Intersect(
		[]pep425.Tag{{"py2", "none", "any"}},
		[]pep425.Tag{{"py3", "none", "any"}}))
}
