// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

// Package sdist implements the PyPA source distribution format; the
// "{name}-{version}.tar.gz" file.
//
// https://packaging.python.org/en/latest/specifications/source-distribution-format/
package sdist

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/pydist-tools/distcheck/pkg/python/metadata"
	"github.com/pydist-tools/distcheck/pkg/python/pep440"
)

// FileNameData is the information encoded in an sdist filename:
// "{distribution}-{version}.tar.gz".
type FileNameData struct {
	Distribution string
	Version      pep440.Version
}

// ParseFilename parses an sdist filename.  Because distribution names may
// themselves contain dashes, the split is at the last dash.
func ParseFilename(filename string) (*FileNameData, error) {
	stem := strings.TrimSuffix(filename, ".tar.gz")
	if stem == filename {
		return nil, fmt.Errorf("invalid sdist filename: %q", filename)
	}
	idx := strings.LastIndex(stem, "-")
	if idx <= 0 || idx == len(stem)-1 {
		return nil, fmt.Errorf("invalid sdist filename: %q", filename)
	}
	ver, err := pep440.ParseVersion(stem[idx+1:])
	if err != nil {
		return nil, fmt.Errorf("invalid sdist filename: %q: %w", filename, err)
	}
	return &FileNameData{
		Distribution: stem[:idx],
		Version:      *ver,
	}, nil
}

// An Sdist is a source distribution read into memory.
type Sdist struct {
	// FileName is the parsed filename that the sdist was opened under.
	FileName *FileNameData
	// RootDir is the single top-level directory ("{name}-{version}") that
	// the format requires every member to live under.
	RootDir string

	files map[string][]byte
}

// Open reads an sdist file on disk.  The basename must be a valid sdist
// filename.
func Open(filename string) (*Sdist, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open sdist: %w", err)
	}
	defer file.Close()
	return New(file, path.Base(filename))
}

// New reads a gzipped tarball as an Sdist.  The basename must be a valid
// sdist filename, and the archive must have a single top-level directory.
func New(reader io.Reader, basename string) (*Sdist, error) {
	nameData, err := ParseFilename(basename)
	if err != nil {
		return nil, err
	}

	gzReader, err := gzip.NewReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open sdist: %w", err)
	}
	defer gzReader.Close()

	ret := &Sdist{
		FileName: nameData,
		files:    make(map[string][]byte),
	}

	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read sdist: %w", err)
		}
		switch header.Typeflag {
		case tar.TypeXGlobalHeader, tar.TypeXHeader, tar.TypeGNULongName, tar.TypeGNULongLink:
			// metadata pseudo-entries (e.g. git archive's pax_global_header),
			// not members of the distribution
			continue
		}
		name := path.Clean(header.Name)
		if name == "." || strings.HasPrefix(name, "..") || path.IsAbs(name) {
			continue
		}
		topDir := strings.SplitN(name, "/", 2)[0]
		switch {
		case ret.RootDir == "":
			ret.RootDir = topDir
		case ret.RootDir != topDir:
			return nil, fmt.Errorf("sdist has multiple top-level entries: %q and %q",
				ret.RootDir, topDir)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, fmt.Errorf("read sdist: %q: %w", name, err)
		}
		ret.files[name] = content
	}
	if ret.RootDir == "" {
		return nil, fmt.Errorf("sdist is empty")
	}

	return ret, nil
}

// Open opens a file inside of the sdist, by path relative to the archive
// root.
func (sd *Sdist) Open(filename string) (io.Reader, error) {
	content, ok := sd.files[path.Clean(filename)]
	if !ok {
		return nil, fmt.Errorf("%w in sdist archive: %q", fs.ErrNotExist, filename)
	}
	return strings.NewReader(string(content)), nil
}

// Metadata returns the parsed "{RootDir}/PKG-INFO" file, which the format
// requires at the root of the archive's top-level directory.
func (sd *Sdist) Metadata() (*metadata.Metadata, error) {
	reader, err := sd.Open(path.Join(sd.RootDir, "PKG-INFO"))
	if err != nil {
		return nil, err
	}
	return metadata.Parse(reader)
}
