// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package check

import (
	"context"
	"errors"
	"io/fs"
	"mime"
	"path"
	"strings"

	"github.com/pydist-tools/distcheck/pkg/python/metadata"
	"github.com/pydist-tools/distcheck/pkg/python/pep425"
	"github.com/pydist-tools/distcheck/pkg/python/pep440"
	"github.com/pydist-tools/distcheck/pkg/python/pep503"
	"github.com/pydist-tools/distcheck/pkg/python/sdist"
	"github.com/pydist-tools/distcheck/pkg/python/wheel"
)

// descriptionContentTypes are the Description-Content-Type media types that an
// index will render, mapped to the "variant" parameter values each accepts.
//
//nolint:gochecknoglobals // Would be 'const'.
var descriptionContentTypes = map[string][]string{
	"text/plain":    nil,
	"text/x-rst":    nil,
	"text/markdown": {"GFM", "CommonMark"},
}

// CheckPath opens the distribution artifact at `filename`, dispatching on the
// file extension, and records everything wrong with it in to `report`.
// Problems with the artifact become findings, not a returned error; the error
// return is for being unable to check at all (e.g. the file does not exist).
func CheckPath(ctx context.Context, filename string, report *Report) error {
	report.Checked++
	switch {
	case strings.HasSuffix(filename, ".whl"):
		return CheckWheel(ctx, filename, report)
	case strings.HasSuffix(filename, ".tar.gz"):
		return CheckSdist(ctx, filename, report)
	default:
		report.Errorf(filename, "file-type",
			"unknown distribution format (expected .whl or .tar.gz)")
		return nil
	}
}

// CheckWheel checks a .whl file: the metadata checks, plus dist-info naming,
// RECORD integrity, and WHEEL-file/filename tag agreement.
func CheckWheel(ctx context.Context, filename string, report *Report) error {
	if _, err := wheel.ParseFilename(path.Base(filename)); err != nil {
		report.Errorf(filename, "filename", "%v", err)
		return nil
	}
	wh, err := wheel.Open(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		report.Errorf(filename, "archive", "%v", err)
		return nil
	}
	defer wh.Close()

	checkDistInfoName(report, filename, wh)

	md, err := wh.Metadata()
	if err != nil {
		report.Errorf(filename, "metadata", "%v", err)
		return nil
	}
	checkMetadata(report, filename, md, wh.FileName.Distribution, wh.FileName.Version)

	if err := wh.VerifyRecord(); err != nil {
		report.Errorf(filename, "record", "%v", err)
	}

	checkWheelTags(ctx, report, filename, wh)

	return nil
}

// CheckSdist checks a .tar.gz source distribution: the archive layout plus the
// metadata checks against PKG-INFO.
func CheckSdist(_ context.Context, filename string, report *Report) error {
	sd, err := sdist.Open(filename)
	if err != nil {
		if _, parseErr := sdist.ParseFilename(path.Base(filename)); parseErr != nil {
			report.Errorf(filename, "filename", "%v", parseErr)
			return nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		report.Errorf(filename, "archive", "%v", err)
		return nil
	}

	md, err := sd.Metadata()
	if err != nil {
		report.Errorf(filename, "metadata", "%v", err)
		return nil
	}
	checkMetadata(report, filename, md, sd.FileName.Distribution, sd.FileName.Version)

	return nil
}

// checkDistInfoName checks that the wheel's ".dist-info" directory is named
// for the distribution and version in the wheel's filename.
func checkDistInfoName(report *Report, filename string, wh *wheel.Wheel) {
	distInfoDir, err := wh.DistInfoDir()
	if err != nil {
		report.Errorf(filename, "dist-info", "%v", err)
		return
	}
	stem := strings.TrimSuffix(distInfoDir, ".dist-info")
	idx := strings.LastIndex(stem, "-")
	if idx <= 0 || idx == len(stem)-1 {
		report.Errorf(filename, "dist-info", "malformed directory name: %q", distInfoDir)
		return
	}
	if name := stem[:idx]; pep503.NormalizeName(name) != pep503.NormalizeName(wh.FileName.Distribution) {
		report.Errorf(filename, "dist-info",
			"directory %q does not match filename distribution %q", distInfoDir, wh.FileName.Distribution)
	}
	switch ver, err := pep440.ParseVersion(stem[idx+1:]); {
	case err != nil:
		report.Errorf(filename, "dist-info", "directory %q has an invalid version: %v", distInfoDir, err)
	case ver.Cmp(wh.FileName.Version) != 0:
		report.Errorf(filename, "dist-info",
			"directory %q does not match filename version %q", distInfoDir, wh.FileName.Version.String())
	}
}

// checkWheelTags checks that the compatibility tags in the wheel's filename
// agree with the Tag fields declared in its ".dist-info/WHEEL" file.
func checkWheelTags(ctx context.Context, report *Report, filename string, wh *wheel.Wheel) {
	declared, err := wh.Tags(ctx)
	if err != nil {
		report.Errorf(filename, "wheel-file", "%v", err)
		return
	}
	declaredSet := make(map[pep425.Tag]struct{}, len(declared))
	for _, tag := range declared {
		declaredSet[tag] = struct{}{}
	}
	for _, tag := range wh.FileName.CompatibilityTag.Decompress() {
		if _, ok := declaredSet[tag]; !ok {
			report.Errorf(filename, "tag-mismatch",
				"filename tag %q is not declared by the WHEEL file (Tag: %v)",
				tag.String(), declared)
		}
	}
}

// checkMetadata runs the format-independent core-metadata checks; `fileDist`
// and `fileVer` are the distribution name and version from the artifact's
// filename.
func checkMetadata(report *Report, path string, md *metadata.Metadata,
	fileDist string, fileVer pep440.Version,
) {
	if md.MetadataVersion == "" {
		report.Errorf(path, "metadata-version", "missing Metadata-Version field")
	} else if !md.VersionKnown() {
		report.Errorf(path, "metadata-version", "unknown Metadata-Version: %q (known: %v)",
			md.MetadataVersion, metadata.KnownVersions)
	}

	switch {
	case md.Name == "":
		report.Errorf(path, "name", "missing Name field")
	case !pep503.IsValidName(md.Name):
		report.Errorf(path, "name", "invalid project name: %q", md.Name)
	case pep503.NormalizeName(md.Name) != pep503.NormalizeName(fileDist):
		report.Errorf(path, "name", "Name field %q does not match filename distribution %q",
			md.Name, fileDist)
	}

	switch mdVer, err := pep440.ParseVersion(md.Version); {
	case md.Version == "":
		report.Errorf(path, "version", "missing Version field")
	case err != nil:
		report.Errorf(path, "version", "invalid Version field: %v", err)
	case mdVer.Cmp(fileVer) != 0:
		report.Errorf(path, "version", "Version field %q does not match filename version %q",
			md.Version, fileVer.String())
	}

	if strings.ContainsAny(md.Summary, "\r\n") {
		report.Errorf(path, "summary", "Summary field must be a single line")
	}

	switch {
	case md.Description == "":
		report.Warnf(path, "description",
			"no description; the project page will be blank")
	case strings.TrimSpace(md.Description) == "UNKNOWN":
		report.Errorf(path, "description",
			"description is the placeholder string %q", "UNKNOWN")
	}

	checkDescriptionContentType(report, path, md)

	if md.RequiresPython != "" {
		if _, err := pep440.ParseSpecifier(md.RequiresPython); err != nil {
			report.Errorf(path, "requires-python", "invalid Requires-Python field: %v", err)
		}
	}
}

func checkDescriptionContentType(report *Report, path string, md *metadata.Metadata) {
	if md.DescriptionContentType == "" {
		if md.Description != "" {
			report.Warnf(path, "description-content-type",
				"no Description-Content-Type; the description will be rendered as reStructuredText, which may not be what you want")
		}
		return
	}

	mediaType, params, err := mime.ParseMediaType(md.DescriptionContentType)
	if err != nil {
		report.Errorf(path, "description-content-type",
			"invalid Description-Content-Type: %v", err)
		return
	}
	variants, ok := descriptionContentTypes[mediaType]
	if !ok {
		report.Errorf(path, "description-content-type",
			"unrenderable Description-Content-Type media type: %q", mediaType)
		return
	}
	if variant, haveVariant := params["variant"]; haveVariant {
		valid := false
		for _, known := range variants {
			if strings.EqualFold(variant, known) {
				valid = true
			}
		}
		if !valid {
			report.Errorf(path, "description-content-type",
				"invalid variant %q for media type %q", variant, mediaType)
		}
	}
	if charset, haveCharset := params["charset"]; haveCharset && !strings.EqualFold(charset, "UTF-8") {
		report.Errorf(path, "description-content-type",
			"invalid charset %q; only UTF-8 is supported", charset)
	}
}
