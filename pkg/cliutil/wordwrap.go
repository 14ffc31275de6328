// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package cliutil

import (
	"strings"
)

// Wrap the string `s` to a maximum width `w`.  Pass `w` == 0 to do no wrapping.
//
// In order to have some room for slop to avoid things like a short word being on a line by itself,
// most lines are actually wrapped to `w - 5`.
func Wrap(w int, s string) string {
	return wrap(0, w, s)
}

// WrapIndent wraps the string `s` to a maximum width `w` with leading indent `i`.  The first line
// is not indented (this is assumed to be done by the caller).  Pass `w` == 0 to do no wrapping.
//
// In order to have some room for slop to avoid things like a short word being on a line by itself,
// most lines are actually wrapped to `w - 5`.
func WrapIndent(i, w int, s string) string {
	return wrap(i, w, s)
}

func wrap(indent, width int, str string) string {
	if width == 0 {
		return str
	}
	limit := width - indent - 5
	if limit < 1 {
		return str
	}

	var out strings.Builder
	for i, paragraph := range strings.Split(str, "\n\n") {
		if i > 0 {
			out.WriteString("\n\n")
			out.WriteString(strings.Repeat(" ", indent))
		}

		lineLen := 0
		for j, word := range strings.Fields(paragraph) {
			switch {
			case j == 0:
				// nothing
			case lineLen+1+len(word) > limit:
				out.WriteString("\n")
				out.WriteString(strings.Repeat(" ", indent))
				lineLen = 0
			default:
				out.WriteString(" ")
				lineLen++
			}
			out.WriteString(word)
			lineLen += len(word)
		}
	}
	return out.String()
}
