// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

// Package pep440 implements the PEP 440 version scheme.
//
// https://www.python.org/dev/peps/pep-0440/
package pep440

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/intstr"
)

// Version is a parsed (and therefore normalized) PEP 440 version identifier.
type Version struct {
	// Epoch segment: "N!"
	Epoch int
	// Release segment: "N(.N)*"
	Release []int
	// Pre-release segment: "{a|b|rc}N"
	Pre *PreRelease
	// Post-release segment: ".postN"
	Post *int
	// Development release segment: ".devN"
	Dev *int
	// Local version label: "+foo.N"
	Local []intstr.IntOrString
}

type PreRelease struct {
	L string // "a", "b", or "rc"
	N int
}

// The "permissive" regular expression from PEP 440 Appendix B; it accepts
// every input that the normalization rules give a meaning to.
var reVersion = regexp.MustCompile(`^v?` +
	`(?:(?P<epoch>[0-9]+)!)?` +
	`(?P<release>[0-9]+(?:\.[0-9]+)*)` +
	`(?:[-_\.]?(?P<pre_l>a|b|c|rc|alpha|beta|pre|preview)[-_\.]?(?P<pre_n>[0-9]+)?)?` +
	`(?:(?:-(?P<post_n1>[0-9]+))|(?:[-_\.]?(?P<post_l>post|rev|r)[-_\.]?(?P<post_n2>[0-9]+)?))?` +
	`(?:[-_\.]?(?P<dev_l>dev)[-_\.]?(?P<dev_n>[0-9]+)?)?` +
	`(?:\+(?P<local>[a-z0-9]+(?:[-_\.][a-z0-9]+)*))?` +
	`$`)

// ParseVersion parses a string to a Version object, performing normalization.
func ParseVersion(str string) (*Version, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	match := reVersion.FindStringSubmatch(str)
	if match == nil {
		return nil, fmt.Errorf("pep440.ParseVersion: invalid version: %q", str)
	}
	group := func(name string) string {
		return match[reVersion.SubexpIndex(name)]
	}

	var ret Version

	if epoch := group("epoch"); epoch != "" {
		ret.Epoch, _ = strconv.Atoi(epoch)
	}

	for _, segment := range strings.Split(group("release"), ".") {
		n, err := strconv.Atoi(segment)
		if err != nil {
			return nil, fmt.Errorf("pep440.ParseVersion: invalid version: %q: %w", str, err)
		}
		ret.Release = append(ret.Release, n)
	}

	if preL := group("pre_l"); preL != "" {
		// Normalize the alternate pre-release spellings.
		switch preL {
		case "alpha":
			preL = "a"
		case "beta":
			preL = "b"
		case "c", "pre", "preview":
			preL = "rc"
		}
		preN, _ := strconv.Atoi(group("pre_n")) // absent => 0
		ret.Pre = &PreRelease{L: preL, N: preN}
	}

	// The "-N" spelling and the "{post|rev|r}N" spellings are distinct
	// alternatives in the grammar.
	if postN1 := group("post_n1"); postN1 != "" {
		n, _ := strconv.Atoi(postN1)
		ret.Post = &n
	} else if group("post_l") != "" {
		n, _ := strconv.Atoi(group("post_n2")) // absent => 0
		ret.Post = &n
	}

	if group("dev_l") != "" {
		n, _ := strconv.Atoi(group("dev_n")) // absent => 0
		ret.Dev = &n
	}

	if local := group("local"); local != "" {
		for _, segment := range strings.FieldsFunc(local, func(r rune) bool {
			return r == '-' || r == '_' || r == '.'
		}) {
			if n, err := strconv.Atoi(segment); err == nil {
				ret.Local = append(ret.Local, intstr.FromInt(n))
			} else {
				ret.Local = append(ret.Local, intstr.FromString(segment))
			}
		}
	}

	return &ret, nil
}

// MustParseVersion is like ParseVersion, but panics on error; for use with
// version literals in tests and initializers.
func MustParseVersion(str string) Version {
	ver, err := ParseVersion(str)
	if err != nil {
		panic(err)
	}
	return *ver
}

// String renders the normalized form of the version.
func (ver Version) String() string {
	var ret strings.Builder
	if ver.Epoch > 0 {
		fmt.Fprintf(&ret, "%d!", ver.Epoch)
	}
	for i, segment := range ver.Release {
		if i > 0 {
			ret.WriteString(".")
		}
		fmt.Fprintf(&ret, "%d", segment)
	}
	if ver.Pre != nil {
		fmt.Fprintf(&ret, "%s%d", ver.Pre.L, ver.Pre.N)
	}
	if ver.Post != nil {
		fmt.Fprintf(&ret, ".post%d", *ver.Post)
	}
	if ver.Dev != nil {
		fmt.Fprintf(&ret, ".dev%d", *ver.Dev)
	}
	if len(ver.Local) > 0 {
		ret.WriteString("+")
		for i, segment := range ver.Local {
			if i > 0 {
				ret.WriteString(".")
			}
			ret.WriteString(segment.String())
		}
	}
	return ret.String()
}

// BaseVersion returns just the epoch and release segments, with the pre, post,
// dev, and local segments stripped.
func (ver Version) BaseVersion() Version {
	return Version{
		Epoch:   ver.Epoch,
		Release: ver.Release,
	}
}

// Major returns the first release segment.
func (ver Version) Major() int {
	if len(ver.Release) == 0 {
		return 0
	}
	return ver.Release[0]
}

// IsPreRelease returns whether the version denotes a pre-release or
// developmental release.
func (ver Version) IsPreRelease() bool {
	return ver.Pre != nil || ver.Dev != nil
}

// IsPostRelease returns whether the version denotes a post-release.
func (ver Version) IsPostRelease() bool {
	return ver.Post != nil
}

// Cmp returns -1 if ver<other, 0 if ver==other, and 1 if ver>other, using the
// ordering defined by PEP 440.
func (ver Version) Cmp(other Version) int {
	if d := ver.Epoch - other.Epoch; d != 0 {
		return sign(d)
	}
	if d := cmpRelease(ver.Release, other.Release); d != 0 {
		return d
	}
	if d := cmpPre(ver, other); d != 0 {
		return d
	}
	if d := cmpIntPtr(ver.Post, other.Post, -1); d != 0 {
		return d
	}
	if d := cmpIntPtr(ver.Dev, other.Dev, 1); d != 0 {
		return d
	}
	return cmpLocal(ver.Local, other.Local)
}

func sign(d int) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}

// cmpRelease compares release segments, padding the shorter one with zeros.
func cmpRelease(a, b []int) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		var aSeg, bSeg int
		if i < len(a) {
			aSeg = a[i]
		}
		if i < len(b) {
			bSeg = b[i]
		}
		if aSeg != bSeg {
			return sign(aSeg - bSeg)
		}
	}
	return 0
}

// preRank assigns a sortable rank to the pre-release segment: a version with
// only a dev segment sorts before any pre-release, and a final release sorts
// after all pre-releases.
func preRank(ver Version) (rank, n int) {
	switch {
	case ver.Pre != nil:
		letters := map[string]int{"a": 1, "b": 2, "rc": 3}
		return letters[ver.Pre.L], ver.Pre.N
	case ver.Post == nil && ver.Dev != nil:
		return 0, 0
	default:
		return 4, 0
	}
}

func cmpPre(a, b Version) int {
	aRank, aN := preRank(a)
	bRank, bN := preRank(b)
	if aRank != bRank {
		return sign(aRank - bRank)
	}
	return sign(aN - bN)
}

// cmpIntPtr compares optional numeric segments; a nil segment sorts according
// to nilRank: -1 for "before any value" (post), +1 for "after any value" (dev).
func cmpIntPtr(a, b *int, nilRank int) int {
	aRank, bRank := 0, 0
	var aN, bN int
	if a == nil {
		aRank = nilRank
	} else {
		aN = *a
	}
	if b == nil {
		bRank = nilRank
	} else {
		bN = *b
	}
	if aRank != bRank {
		return sign(aRank - bRank)
	}
	return sign(aN - bN)
}

// cmpLocal compares local version labels: absent sorts first; numeric segments
// compare numerically and sort after alphanumeric segments; a prefix sorts
// before its extensions.
func cmpLocal(a, b []intstr.IntOrString) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		aSeg, bSeg := a[i], b[i]
		switch {
		case aSeg.Type == intstr.Int && bSeg.Type == intstr.Int:
			if d := sign(aSeg.IntValue() - bSeg.IntValue()); d != 0 {
				return d
			}
		case aSeg.Type == intstr.String && bSeg.Type == intstr.String:
			if aSeg.StrVal != bSeg.StrVal {
				if aSeg.StrVal < bSeg.StrVal {
					return -1
				}
				return 1
			}
		case aSeg.Type == intstr.Int:
			return 1
		default:
			return -1
		}
	}
	return sign(len(a) - len(b))
}
