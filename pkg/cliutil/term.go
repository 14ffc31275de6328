// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package cliutil

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

// GetTerminalWidth returns the width of the terminal that you should wrap text to.
func GetTerminalWidth() int {
	// Obey COLUMNS if the shell or user sets it.
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil {
		return cols
	}

	// Try to detect the size of the stdout file descriptor.
	if cols, _, err := term.GetSize(1); err == nil {
		return cols
	}

	// If stdout is a terminal but we were unable to get its size, fall back to assuming 80.
	if term.IsTerminal(1) {
		return 80
	}

	// If stdout isn't a terminal, then leave cols as 0, meaning "don't wrap it".
	return 0
}
