// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package dist_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pydist-tools/distcheck/pkg/dist"
	"github.com/pydist-tools/distcheck/pkg/fsutil"
	"github.com/pydist-tools/distcheck/pkg/testutil"
)

func writeDistDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
	return dir
}

func TestScan(t *testing.T) {
	t.Parallel()

	dir := writeDistDir(t,
		"spatialdata-0.1.2.tar.gz",
		"spatialdata-0.1.2-py3-none-any.whl",
		"spatialdata-0.1.2.tar.gz.asc",
		"SHA256SUMS",
	)
	artifacts, err := dist.Scan(dir)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, dist.KindWheel, artifacts[0].Kind)
	assert.Equal(t, "spatialdata-0.1.2-py3-none-any.whl", filepath.Base(artifacts[0].Path))
	assert.Equal(t, dist.KindSdist, artifacts[1].Kind)

	_, err = dist.Scan(writeDistDir(t, "README.md"))
	assert.Error(t, err)

	_, err = dist.Scan(filepath.Join(dir, "does-not-exist"))
	assert.Error(t, err)
}

func TestLayer(t *testing.T) {
	t.Parallel()

	clampTime := time.Unix(1000, 0)
	dir := writeDistDir(t,
		"spatialdata-0.1.2-py3-none-any.whl",
		"spatialdata-0.1.2.tar.gz",
	)
	artifacts, err := dist.Scan(dir)
	require.NoError(t, err)

	actLayer, err := dist.Layer(artifacts, clampTime)
	require.NoError(t, err)

	// The same content built from in-memory files must give the same layer,
	// regardless of on-disk timestamps.
	expLayer, err := fsutil.LayerFromFileReferences([]fsutil.FileReference{
		&fsutil.InMemFileReference{
			FileInfo:  artifactFileInfo(t, artifacts[0].Path),
			MFullName: "dist/spatialdata-0.1.2-py3-none-any.whl",
			MContent:  []byte("spatialdata-0.1.2-py3-none-any.whl"),
		},
		&fsutil.InMemFileReference{
			FileInfo:  artifactFileInfo(t, artifacts[1].Path),
			MFullName: "dist/spatialdata-0.1.2.tar.gz",
			MContent:  []byte("spatialdata-0.1.2.tar.gz"),
		},
	}, clampTime)
	require.NoError(t, err)

	testutil.AssertEqualLayers(t, expLayer, actLayer)

	listing, err := testutil.DumpLayerListing(actLayer)
	require.NoError(t, err)
	assert.Contains(t, listing, "dist/spatialdata-0.1.2-py3-none-any.whl")
	assert.Contains(t, listing, "dist/spatialdata-0.1.2.tar.gz")
}

func artifactFileInfo(t *testing.T, path string) os.FileInfo {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info
}
