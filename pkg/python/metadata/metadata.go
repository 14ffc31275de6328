// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

// Package metadata implements the PyPA core metadata file format; the
// METADATA file in a wheel and the PKG-INFO file in an sdist.
//
// https://packaging.python.org/en/latest/specifications/core-metadata/
package metadata

import (
	"bufio"
	"fmt"
	"io"
	"net/textproto"
	"strings"

	"github.com/pydist-tools/distcheck/pkg/python/pep440"
)

// KnownVersions are the metadata format versions that have been defined, in
// order.
//
//nolint:gochecknoglobals // Would be 'const'.
var KnownVersions = []string{"1.0", "1.1", "1.2", "2.1", "2.2", "2.3", "2.4"}

// Metadata is a parsed core metadata file.  The typed fields cover what the
// checks care about; Fields has everything.
type Metadata struct {
	MetadataVersion string
	Name            string
	Version         string
	Summary         string
	Description     string
	// DescriptionContentType is the raw Description-Content-Type field; e.g.
	// "text/markdown; variant=GFM".
	DescriptionContentType string
	License                string
	LicenseExpression      string
	Keywords               string
	Classifiers            []string
	RequiresPython         string
	RequiresDist           []string
	ProvidesExtra          []string
	ProjectURLs            []string
	Dynamic                []string

	// Fields is every header field of the file, including the typed ones
	// above.
	Fields textproto.MIMEHeader
}

// Parse reads a METADATA/PKG-INFO file.
//
// Since metadata version 2.1 the message body, if present, is the
// distribution's description; a Description header field (metadata <= 2.0)
// is honored when there is no body.
func Parse(reader io.Reader) (*Metadata, error) {
	// textproto.Reader.ReadMIMEHeader() expects a blank line to mark the end
	// of the header and the start of the body, but a body-less PKG-INFO may
	// end at the last header field.  Appending a few CRLFs keeps
	// ReadMIMEHeader happy no matter what the trailing newline situation is.
	bufReader := bufio.NewReader(io.MultiReader(reader, strings.NewReader("\r\n\r\n\r\n")))
	fields, err := textproto.NewReader(bufReader).ReadMIMEHeader()
	if err != nil {
		return nil, fmt.Errorf("metadata.Parse: %w", err)
	}

	bodyBytes, err := io.ReadAll(bufReader)
	if err != nil {
		return nil, fmt.Errorf("metadata.Parse: %w", err)
	}
	// The padding added above is all trailing CRLFs; trailing newlines are
	// not significant in a description.
	body := strings.TrimRight(string(bodyBytes), "\r\n")

	ret := &Metadata{
		MetadataVersion:        fields.Get("Metadata-Version"),
		Name:                   fields.Get("Name"),
		Version:                fields.Get("Version"),
		Summary:                fields.Get("Summary"),
		Description:            fields.Get("Description"),
		DescriptionContentType: fields.Get("Description-Content-Type"),
		License:                fields.Get("License"),
		LicenseExpression:      fields.Get("License-Expression"),
		Keywords:               fields.Get("Keywords"),
		Classifiers:            fields.Values("Classifier"),
		RequiresPython:         fields.Get("Requires-Python"),
		RequiresDist:           fields.Values("Requires-Dist"),
		ProvidesExtra:          fields.Values("Provides-Extra"),
		ProjectURLs:            fields.Values("Project-Url"),
		Dynamic:                fields.Values("Dynamic"),

		Fields: fields,
	}
	if body != "" {
		ret.Description = body
	}

	return ret, nil
}

// VersionKnown returns whether the file's Metadata-Version is one that has
// been defined.
func (md *Metadata) VersionKnown() bool {
	for _, known := range KnownVersions {
		if md.MetadataVersion == known {
			return true
		}
	}
	return false
}

// HaveRequiredPython returns whether the `requirement` from the
// "Requires-Python" field is satisfied by the interpreter version `have`.
func HaveRequiredPython(have pep440.Version, requirement string) (bool, error) {
	spec, err := pep440.ParseSpecifier(requirement)
	if err != nil {
		return false, err
	}
	return spec.Match(have), nil
}
