// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

// Package wheel implements the PyPA binary distribution format; the ".whl"
// file.
//
// https://packaging.python.org/en/latest/specifications/binary-distribution-format/
package wheel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pydist-tools/distcheck/pkg/python/pep425"
	"github.com/pydist-tools/distcheck/pkg/python/pep440"
)

// FileNameData is the information encoded in a wheel filename:
// "{distribution}-{version}(-{build tag})?-{python tag}-{abi tag}-{platform tag}.whl".
type FileNameData struct {
	Distribution     string
	Version          pep440.Version
	BuildTag         *BuildTag
	CompatibilityTag pep425.Tag
}

var reFilename = regexp.MustCompile(regexp.MustCompile(`\s+`).ReplaceAllString(`
		^(?P<distribution>[^-]+)
		-(?P<version>[^-]+)
		(?:-(?P<build_n>[0-9]+)(?P<build_l>[^-0-9][^-]*)?)?
		-(?P<python>[^-]+)
		-(?P<abi>[^-]+)
		-(?P<platform>[^-]+)
		\.whl$`, ``))

func ParseFilename(filename string) (*FileNameData, error) {
	match := reFilename.FindStringSubmatch(filename)
	if match == nil {
		return nil, fmt.Errorf("invalid wheel filename: %q", filename)
	}

	var ret FileNameData

	ret.Distribution = match[reFilename.SubexpIndex("distribution")]

	ver, err := pep440.ParseVersion(match[reFilename.SubexpIndex("version")])
	if err != nil {
		return nil, fmt.Errorf("invalid wheel filename: %q: %w", filename, err)
	}
	ret.Version = *ver

	if buildN := match[reFilename.SubexpIndex("build_n")]; buildN != "" {
		n, _ := strconv.Atoi(buildN)
		ret.BuildTag = &BuildTag{
			Int: n,
			Str: match[reFilename.SubexpIndex("build_l")],
		}
	}

	ret.CompatibilityTag = pep425.Tag{
		Python:   match[reFilename.SubexpIndex("python")],
		ABI:      match[reFilename.SubexpIndex("abi")],
		Platform: match[reFilename.SubexpIndex("platform")],
	}

	return &ret, nil
}

// GenerateFilename renders the canonical filename: the distribution name is
// escaped per PEP 503 normalization with "-" replaced by "_", and the version
// is normalized per PEP 440.
func GenerateFilename(data FileNameData) (string, error) {
	var ret strings.Builder
	ret.WriteString(regexp.MustCompile("[-_.]+").ReplaceAllLiteralString(data.Distribution, "_"))
	ret.WriteString("-")
	ret.WriteString(data.Version.String())
	if data.BuildTag != nil {
		build := data.BuildTag.String()
		if strings.Contains(build, "-") {
			return "", fmt.Errorf("invalid build tag: contains dash: %q", build)
		}
		ret.WriteString("-")
		ret.WriteString(build)
	}
	compat := data.CompatibilityTag.String()
	if strings.Count(compat, "-") != 2 {
		return "", fmt.Errorf("invalid compatibility tag: %q", compat)
	}
	ret.WriteString("-")
	ret.WriteString(compat)
	ret.WriteString(".whl")
	return ret.String(), nil
}

// BuildTag is the optional build number; it acts as a tie-breaker between
// wheels whose filenames agree in every other respect.
type BuildTag struct {
	Int int
	Str string
}

func (t BuildTag) String() string {
	return fmt.Sprintf("%d%s", t.Int, t.Str)
}

func (a *BuildTag) Cmp(b *BuildTag) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if d := a.Int - b.Int; d != 0 {
		return d
	}
	switch {
	case a.Str < b.Str:
		return -1
	case a.Str > b.Str:
		return 1
	default:
		return 0
	}
}
