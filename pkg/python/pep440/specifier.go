// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package pep440

import (
	"fmt"
	"strings"
)

// A Specifier is a comma-separated list of clauses, all of which must match;
// e.g. ">=3.8, <4".
type Specifier []SpecifierClause

type SpecifierClause struct {
	CmpOp   CmpOp
	Version Version
	// Prefix indicates a trailing ".*"; only valid with CmpOpEQ and CmpOpNE.
	Prefix bool
	// Arbitrary holds the raw string for the "===" operator, which compares
	// without interpreting the version.
	Arbitrary string
}

type CmpOp int

const (
	CmpOpCompatible CmpOp = iota // ~=
	CmpOpEQ                      // ==
	CmpOpNE                      // !=
	CmpOpLE                      // <=
	CmpOpGE                      // >=
	CmpOpLT                      // <
	CmpOpGT                      // >
	CmpOpArbitrary               // ===
)

func (op CmpOp) String() string {
	str, ok := map[CmpOp]string{
		CmpOpCompatible: "~=",
		CmpOpEQ:         "==",
		CmpOpNE:         "!=",
		CmpOpLE:         "<=",
		CmpOpGE:         ">=",
		CmpOpLT:         "<",
		CmpOpGT:         ">",
		CmpOpArbitrary:  "===",
	}[op]
	if !ok {
		panic(fmt.Errorf("invalid CmpOp: %d", int(op)))
	}
	return str
}

// ParseSpecifier parses a PEP 440 version specifier such as
// ">=1.0, !=1.3.4.*, <2.0".
func ParseSpecifier(str string) (Specifier, error) {
	clauseStrs := strings.FieldsFunc(str, func(r rune) bool { return r == ',' })
	ret := make(Specifier, 0, len(clauseStrs))
	for _, clauseStr := range clauseStrs {
		clause, err := parseSpecifierClause(clauseStr)
		if err != nil {
			return nil, fmt.Errorf("pep440.ParseSpecifier: %w", err)
		}
		ret = append(ret, clause)
	}
	return ret, nil
}

func parseSpecifierClause(str string) (SpecifierClause, error) {
	var ret SpecifierClause
	str = strings.TrimSpace(str)

	var verStr string
	switch {
	case strings.HasPrefix(str, "==="):
		ret.CmpOp = CmpOpArbitrary
		ret.Arbitrary = strings.TrimSpace(str[3:])
		return ret, nil
	case strings.HasPrefix(str, "~="):
		ret.CmpOp = CmpOpCompatible
		verStr = str[2:]
	case strings.HasPrefix(str, "=="):
		ret.CmpOp = CmpOpEQ
		verStr = str[2:]
	case strings.HasPrefix(str, "!="):
		ret.CmpOp = CmpOpNE
		verStr = str[2:]
	case strings.HasPrefix(str, "<="):
		ret.CmpOp = CmpOpLE
		verStr = str[2:]
	case strings.HasPrefix(str, ">="):
		ret.CmpOp = CmpOpGE
		verStr = str[2:]
	case strings.HasPrefix(str, "<"):
		ret.CmpOp = CmpOpLT
		verStr = str[1:]
	case strings.HasPrefix(str, ">"):
		ret.CmpOp = CmpOpGT
		verStr = str[1:]
	default:
		return ret, fmt.Errorf("invalid specifier clause: %q", str)
	}
	verStr = strings.TrimSpace(verStr)

	if strings.HasSuffix(verStr, ".*") {
		if ret.CmpOp != CmpOpEQ && ret.CmpOp != CmpOpNE {
			return ret, fmt.Errorf("invalid specifier clause: %q: \".*\" is only valid with == and !=", str)
		}
		ret.Prefix = true
		verStr = strings.TrimSuffix(verStr, ".*")
	}

	ver, err := ParseVersion(verStr)
	if err != nil {
		return ret, fmt.Errorf("invalid specifier clause: %q: %w", str, err)
	}
	ret.Version = *ver

	switch ret.CmpOp {
	case CmpOpCompatible:
		if len(ret.Version.Release) < 2 {
			return ret, fmt.Errorf("invalid specifier clause: %q: ~= requires at least two release segments", str)
		}
		fallthrough
	case CmpOpLE, CmpOpGE, CmpOpLT, CmpOpGT:
		if len(ret.Version.Local) > 0 {
			return ret, fmt.Errorf("invalid specifier clause: %q: local version label not permitted", str)
		}
	}

	return ret, nil
}

// Match returns whether the version satisfies every clause of the specifier.
func (spec Specifier) Match(ver Version) bool {
	for _, clause := range spec {
		if !clause.Match(ver) {
			return false
		}
	}
	return true
}

func (spec Specifier) String() string {
	clauses := make([]string, len(spec))
	for i, clause := range spec {
		clauses[i] = clause.String()
	}
	return strings.Join(clauses, ",")
}

func (spec SpecifierClause) String() string {
	if spec.CmpOp == CmpOpArbitrary {
		return "===" + spec.Arbitrary
	}
	suffix := ""
	if spec.Prefix {
		suffix = ".*"
	}
	return spec.CmpOp.String() + spec.Version.String() + suffix
}

func (spec SpecifierClause) Match(ver Version) bool {
	switch spec.CmpOp {
	case CmpOpCompatible:
		// "~= V.N" is ">= V.N, == V.*" with the last release segment of V
		// dropped.
		ge := SpecifierClause{CmpOp: CmpOpGE, Version: spec.Version}
		prefix := spec.Version
		prefix.Release = prefix.Release[:len(prefix.Release)-1]
		prefix.Pre = nil
		prefix.Post = nil
		prefix.Dev = nil
		eq := SpecifierClause{CmpOp: CmpOpEQ, Version: prefix, Prefix: true}
		return ge.Match(ver) && eq.Match(ver)
	case CmpOpEQ:
		if spec.Prefix {
			return matchPrefix(ver, spec.Version)
		}
		// Unless the clause pins a local version, comparison ignores the
		// candidate's local version label.
		if len(spec.Version.Local) == 0 {
			ver.Local = nil
		}
		return ver.Cmp(spec.Version) == 0
	case CmpOpNE:
		eq := spec
		eq.CmpOp = CmpOpEQ
		return !eq.Match(ver)
	case CmpOpLE:
		ver.Local = nil
		return ver.Cmp(spec.Version) <= 0
	case CmpOpGE:
		ver.Local = nil
		return ver.Cmp(spec.Version) >= 0
	case CmpOpLT:
		// Exclusive ordered comparison: does not match a pre-release of the
		// specified version unless the specified version is itself a
		// pre-release.
		ver.Local = nil
		if ver.Cmp(spec.Version) >= 0 {
			return false
		}
		if !spec.Version.IsPreRelease() && ver.IsPreRelease() &&
			cmpRelease(ver.Release, spec.Version.Release) == 0 && ver.Epoch == spec.Version.Epoch {
			return false
		}
		return true
	case CmpOpGT:
		// Exclusive ordered comparison: does not match a post-release or
		// local version of the specified version unless the specified
		// version is itself a post-release.
		hadLocal := len(ver.Local) > 0
		ver.Local = nil
		if ver.Cmp(spec.Version) <= 0 {
			return false
		}
		sameRelease := cmpRelease(ver.Release, spec.Version.Release) == 0 && ver.Epoch == spec.Version.Epoch
		if !spec.Version.IsPostRelease() && ver.IsPostRelease() && sameRelease {
			return false
		}
		if hadLocal && sameRelease {
			return false
		}
		return true
	case CmpOpArbitrary:
		return ver.String() == spec.Arbitrary
	default:
		panic(fmt.Errorf("invalid CmpOp: %d", int(spec.CmpOp)))
	}
}

// matchPrefix implements "== V.*": the candidate's release is zero-padded (or
// truncated) to the length of the specified prefix and compared segment-wise;
// pre/post/dev segments on the candidate are ignored.
func matchPrefix(ver, prefix Version) bool {
	if ver.Epoch != prefix.Epoch {
		return false
	}
	release := make([]int, len(prefix.Release))
	copy(release, ver.Release)
	for i := range prefix.Release {
		if release[i] != prefix.Release[i] {
			return false
		}
	}
	return true
}
