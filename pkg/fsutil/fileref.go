// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

// Package fsutil bridges between files (on disk or in memory) and OCI image
// layers.
package fsutil

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path"
)

type FileReference interface {
	fs.FileInfo

	// FullName follows io/fs rules: forward-slashes, and an absolute path
	// without the leading "/".
	FullName() string

	Open() (io.ReadCloser, error)
}

// An InMemFileReference is a FileReference whose content is a byte slice.
type InMemFileReference struct {
	fs.FileInfo
	MFullName string
	MContent  []byte
}

func (fr *InMemFileReference) FullName() string { return fr.MFullName }
func (fr *InMemFileReference) Name() string     { return path.Base(fr.MFullName) }
func (fr *InMemFileReference) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(fr.MContent)), nil
}

var _ FileReference = (*InMemFileReference)(nil)

// A DiskFileReference is a FileReference backed by a file on disk, placed at
// `fullName` within the layer regardless of where it lives on disk.
type DiskFileReference struct {
	fs.FileInfo
	osPath   string
	fullName string
}

// NewDiskFileReference stats `osPath` and returns a reference that will place
// it at `fullName` in the layer.
func NewDiskFileReference(osPath, fullName string) (*DiskFileReference, error) {
	info, err := os.Stat(osPath)
	if err != nil {
		return nil, err
	}
	return &DiskFileReference{
		FileInfo: info,
		osPath:   osPath,
		fullName: fullName,
	}, nil
}

func (fr *DiskFileReference) FullName() string { return fr.fullName }
func (fr *DiskFileReference) Name() string     { return path.Base(fr.fullName) }
func (fr *DiskFileReference) Open() (io.ReadCloser, error) {
	return os.Open(fr.osPath)
}

var _ FileReference = (*DiskFileReference)(nil)
