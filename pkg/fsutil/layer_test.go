// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package fsutil_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pydist-tools/distcheck/pkg/fsutil"
	"github.com/pydist-tools/distcheck/pkg/testutil"
)

func memFile(t *testing.T, fullName, content string) fsutil.FileReference {
	t.Helper()
	// borrow a real FileInfo for the mode/owner bits
	tmp := filepath.Join(t.TempDir(), "fileinfo")
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0o644))
	info, err := os.Stat(tmp)
	require.NoError(t, err)
	return &fsutil.InMemFileReference{
		FileInfo:  info,
		MFullName: fullName,
		MContent:  []byte(content),
	}
}

func TestLayerRoundTrip(t *testing.T) {
	t.Parallel()

	clampTime := time.Unix(1000, 0)
	layer, err := fsutil.LayerFromFileReferences([]fsutil.FileReference{
		memFile(t, "dist/spatialdata-0.1.2.tar.gz", "sdist bytes"),
		memFile(t, "dist/spatialdata-0.1.2-py3-none-any.whl", "wheel bytes"),
	}, clampTime)
	require.NoError(t, err)

	// write the layer tarball out and read it back in
	layerFile := filepath.Join(t.TempDir(), "dist.layer.tar")
	out, err := os.Create(layerFile)
	require.NoError(t, err)
	require.NoError(t, fsutil.WriteLayer(layer, out))
	require.NoError(t, out.Close())

	reopened, err := fsutil.OpenLayer(layerFile)
	require.NoError(t, err)
	testutil.AssertEqualLayers(t, layer, reopened)

	listing, err := testutil.DumpLayerListing(reopened)
	require.NoError(t, err)
	// part-wise path sorting puts the .whl first
	assert.Regexp(t, `(?s)any\.whl.*\.tar\.gz`, listing)
}

func TestOpenLayerMissing(t *testing.T) {
	t.Parallel()
	_, err := fsutil.OpenLayer(filepath.Join(t.TempDir(), "nope.layer.tar"))
	require.Error(t, err)
	var pathErr *fs.PathError
	assert.ErrorAs(t, err, &pathErr)
}
