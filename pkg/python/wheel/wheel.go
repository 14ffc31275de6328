// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package wheel

import (
	"archive/zip"
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/textproto"
	"path"
	"strings"

	"github.com/datawire/dlib/dlog"

	"github.com/pydist-tools/distcheck/pkg/python/metadata"
	"github.com/pydist-tools/distcheck/pkg/python/pep425"
	"github.com/pydist-tools/distcheck/pkg/python/pep440"
)

// specVersion is the version of the binary-distribution-format spec that this
// package implements; an installer must reject a wheel with a newer major
// version, and should warn about a newer minor version.
//
//nolint:gochecknoglobals // Would be 'const'.
var specVersion = pep440.MustParseVersion("1.0")

// A Wheel is an opened .whl file.
type Wheel struct {
	// FileName is the parsed filename that the wheel was opened under.
	FileName *FileNameData

	zip    *zip.Reader
	closer io.Closer

	cachedDistInfoDir string
}

// Open opens a wheel file on disk.  The basename must be a valid wheel
// filename.  Call Close when done.
func Open(filename string) (*Wheel, error) {
	nameData, err := ParseFilename(path.Base(filename))
	if err != nil {
		return nil, err
	}
	zipReader, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("open wheel: %w", err)
	}
	return &Wheel{
		FileName: nameData,
		zip:      &zipReader.Reader,
		closer:   zipReader,
	}, nil
}

// New wraps an already-opened zip archive as a Wheel.  The basename must be a
// valid wheel filename.
func New(zipReader *zip.Reader, basename string) (*Wheel, error) {
	nameData, err := ParseFilename(basename)
	if err != nil {
		return nil, err
	}
	return &Wheel{
		FileName: nameData,
		zip:      zipReader,
	}, nil
}

func (wh *Wheel) Close() error {
	if wh.closer == nil {
		return nil
	}
	return wh.closer.Close()
}

// OpenFile opens a file inside of the wheel's zip archive.
func (wh *Wheel) OpenFile(filename string) (io.ReadCloser, error) {
	filename = path.Clean(filename)
	for _, file := range wh.zip.File {
		if path.Clean(file.Name) == filename {
			return file.Open()
		}
	}
	return nil, fmt.Errorf("%w in wheel zip archive: %q", fs.ErrNotExist, filename)
}

// DistInfoDir returns the name of the wheel's ".dist-info" directory.  It is
// an error for a wheel to contain anything other than exactly one.
func (wh *Wheel) DistInfoDir() (string, error) {
	if wh.cachedDistInfoDir != "" {
		return wh.cachedDistInfoDir, nil
	}
	seen := make(map[string]struct{})
	for _, file := range wh.zip.File {
		topDir := strings.SplitN(path.Clean(file.Name), "/", 2)[0]
		if strings.HasSuffix(topDir, ".dist-info") {
			seen[topDir] = struct{}{}
		}
	}
	switch len(seen) {
	case 0:
		return "", fmt.Errorf("wheel does not contain a *.dist-info/ directory")
	case 1:
		for dir := range seen {
			wh.cachedDistInfoDir = dir
		}
		return wh.cachedDistInfoDir, nil
	default:
		dirs := make([]string, 0, len(seen))
		for dir := range seen {
			dirs = append(dirs, dir)
		}
		return "", fmt.Errorf("wheel contains multiple *.dist-info/ directories: %q", dirs)
	}
}

// Info returns the parsed ".dist-info/WHEEL" file, after checking
// Wheel-Version compatibility: newer minor version logs a warning, newer
// major version is an error.
func (wh *Wheel) Info(ctx context.Context) (textproto.MIMEHeader, error) {
	infoDir, err := wh.DistInfoDir()
	if err != nil {
		return nil, err
	}
	wheelFile, err := wh.OpenFile(path.Join(infoDir, "WHEEL"))
	if err != nil {
		return nil, err
	}
	defer wheelFile.Close()

	// There is no body in WHEEL, so the blank line that ReadMIMEHeader wants
	// may be missing; pad with CRLFs.
	kvReader := textproto.NewReader(bufio.NewReader(io.MultiReader(
		wheelFile,
		strings.NewReader("\r\n\r\n\r\n"),
	)))
	info, err := kvReader.ReadMIMEHeader()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path.Join(infoDir, "WHEEL"), err)
	}

	wheelVersion, err := pep440.ParseVersion(info.Get("Wheel-Version"))
	if err != nil {
		return nil, fmt.Errorf("parse Wheel-Version: %w", err)
	}
	if wheelVersion.Major() > specVersion.Major() {
		return nil, fmt.Errorf("wheel file's Wheel-Version (%s) is not compatible with this wheel parser",
			wheelVersion)
	}
	if wheelVersion.Cmp(specVersion) > 0 {
		dlog.Warnf(ctx, "wheel file's Wheel-Version (%s) is newer than this wheel parser", wheelVersion)
	}

	switch strings.ToLower(info.Get("Root-Is-Purelib")) {
	case "true", "false":
	default:
		return nil, fmt.Errorf("wheel file's Root-Is-Purelib (%q) is not a boolean",
			info.Get("Root-Is-Purelib"))
	}

	return info, nil
}

// Metadata returns the parsed ".dist-info/METADATA" file.
func (wh *Wheel) Metadata() (*metadata.Metadata, error) {
	infoDir, err := wh.DistInfoDir()
	if err != nil {
		return nil, err
	}
	mdFile, err := wh.OpenFile(path.Join(infoDir, "METADATA"))
	if err != nil {
		return nil, err
	}
	defer mdFile.Close()
	return metadata.Parse(mdFile)
}

// Tags returns the expanded compatibility tags declared by the WHEEL file.
func (wh *Wheel) Tags(ctx context.Context) ([]pep425.Tag, error) {
	info, err := wh.Info(ctx)
	if err != nil {
		return nil, err
	}
	var ret []pep425.Tag
	for _, tagStr := range info.Values("Tag") {
		tag, err := pep425.ParseTag(tagStr)
		if err != nil {
			return nil, err
		}
		ret = append(ret, tag.Decompress()...)
	}
	return ret, nil
}
