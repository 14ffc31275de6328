// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"archive/tar"
	"bytes"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	ociv1 "github.com/google/go-containerregistry/pkg/v1"
	ociv1tarball "github.com/google/go-containerregistry/pkg/v1/tarball"
)

// LayerFromFileReferences builds an uncompressed OCI layer from a set of
// files.  Timestamps newer than `clampTime` are clamped to it, so that a
// layer built from the same inputs is byte-identical no matter when it is
// built.
func LayerFromFileReferences(
	vfs []FileReference,
	clampTime time.Time,
	opts ...ociv1tarball.LayerOption,
) (ociv1.Layer, error) {
	sort.Slice(vfs, func(i, j int) bool {
		// Compare path-part-wise rather than on the whole .FullName() string,
		// because "-" < "/" < EOF.
		iParts := strings.Split(vfs[i].FullName(), "/")
		jParts := strings.Split(vfs[j].FullName(), "/")
		for idx := 0; idx < len(iParts) || idx < len(jParts); idx++ {
			var iPart, jPart string
			if idx < len(iParts) {
				iPart = iParts[idx]
			}
			if idx < len(jParts) {
				jPart = jParts[idx]
			}
			if iPart != jPart {
				return iPart < jPart
			}
		}
		return false
	})

	var byteWriter bytes.Buffer
	tarWriter := tar.NewWriter(&byteWriter)

	for _, file := range vfs {
		header, err := tar.FileInfoHeader(file, "")
		if err != nil {
			return nil, err
		}
		header.Name = file.FullName()
		if header.ModTime.After(clampTime) {
			header.ModTime = clampTime
		}
		if header.AccessTime.After(clampTime) {
			header.AccessTime = clampTime
		}
		if header.ChangeTime.After(clampTime) {
			header.ChangeTime = clampTime
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return nil, err
		}
		if header.Typeflag == tar.TypeReg {
			reader, err := file.Open()
			if err != nil {
				return nil, err
			}
			if _, err := io.Copy(tarWriter, reader); err != nil {
				_ = reader.Close()
				return nil, err
			}
			if err := reader.Close(); err != nil {
				return nil, err
			}
		}
	}

	if err := tarWriter.Close(); err != nil {
		return nil, err
	}

	byteSlice := byteWriter.Bytes()
	return ociv1tarball.LayerFromOpener(func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(byteSlice)), nil
	}, opts...)
}

// WriteLayer writes the layer's uncompressed tarball to dst.
func WriteLayer(layer ociv1.Layer, dst io.Writer) (err error) {
	layerReader, err := layer.Uncompressed()
	if err != nil {
		return err
	}
	defer func() {
		if _err := layerReader.Close(); _err != nil && err == nil {
			err = _err
		}
	}()
	if _, err := io.Copy(dst, layerReader); err != nil {
		return err
	}
	return nil
}

// PathOpener returns a tarball.Opener for a file on disk.
func PathOpener(filename string) ociv1tarball.Opener {
	fi, err := os.Stat(filename)
	if err != nil {
		return func() (io.ReadCloser, error) {
			return nil, err
		}
	}
	if fi.Mode().IsRegular() {
		// Open the file for each access.  This does not work on pipes.
		return func() (io.ReadCloser, error) {
			file, err := os.Open(filename)
			if err != nil {
				return nil, err
			}
			return file, nil
		}
	} else {
		// Read the file in to memory once, and then work on that.  This
		// avoids extra IO, but uses more memory.
		bs, err := os.ReadFile(filename)
		return func() (io.ReadCloser, error) {
			if err != nil {
				return nil, err
			}
			return io.NopCloser(bytes.NewReader(bs)), nil
		}
	}
}

func OpenLayer(filename string) (ociv1.Layer, error) {
	layer, err := ociv1tarball.LayerFromOpener(PathOpener(filename))
	if err != nil {
		return nil, &fs.PathError{
			Op:   "open layerfile",
			Path: filename,
			Err:  err,
		}
	}
	return layer, nil
}
