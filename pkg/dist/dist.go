// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

// Package dist works with a build frontend's output directory: the
// conventional "dist/" directory full of .whl and .tar.gz artifacts.
package dist

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ociv1 "github.com/google/go-containerregistry/pkg/v1"

	"github.com/pydist-tools/distcheck/pkg/fsutil"
)

type Kind int

const (
	KindWheel Kind = iota
	KindSdist
)

func (kind Kind) String() string {
	switch kind {
	case KindWheel:
		return "wheel"
	case KindSdist:
		return "sdist"
	default:
		return fmt.Sprintf("Kind(%d)", int(kind))
	}
}

// An Artifact is one distribution file found in a dist directory.
type Artifact struct {
	// Path is the artifact's path on disk, as given to Scan.
	Path string
	Kind Kind
}

// Scan lists the distribution artifacts in a directory, in filename order.
// Files that are not distribution artifacts (checksum files, signatures,
// whatever else a release process drops in dist/) are ignored.
func Scan(dir string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var ret []Artifact
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var kind Kind
		switch {
		case strings.HasSuffix(entry.Name(), ".whl"):
			kind = KindWheel
		case strings.HasSuffix(entry.Name(), ".tar.gz"):
			kind = KindSdist
		default:
			continue
		}
		ret = append(ret, Artifact{
			Path: filepath.Join(dir, entry.Name()),
			Kind: kind,
		})
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Path < ret[j].Path
	})
	if len(ret) == 0 {
		return nil, fmt.Errorf("no distribution artifacts in %q", dir)
	}
	return ret, nil
}

// Layer packs the artifacts into an uncompressed OCI layer, under "dist/" in
// the layer filesystem.  Timestamps are clamped to `clampTime` so the layer
// is reproducible.
func Layer(artifacts []Artifact, clampTime time.Time) (ociv1.Layer, error) {
	vfs := make([]fsutil.FileReference, 0, len(artifacts))
	for _, artifact := range artifacts {
		ref, err := fsutil.NewDiskFileReference(artifact.Path,
			path.Join("dist", filepath.Base(artifact.Path)))
		if err != nil {
			return nil, err
		}
		vfs = append(vfs, ref)
	}
	return fsutil.LayerFromFileReferences(vfs, clampTime)
}
