// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

// Package reproducible supports byte-reproducible output.
package reproducible

import (
	"os"
	"strconv"
	"sync"
	"time"
)

//nolint:gochecknoglobals // Process-wide clock snapshot.
var (
	nowOnce sync.Once
	now     time.Time
)

// Now returns the time from the SOURCE_DATE_EPOCH environment variable
// (https://reproducible-builds.org/docs/source-date-epoch/), falling back to
// the wall clock if it is unset or malformed.  The answer is fixed at first
// call.
func Now() time.Time {
	nowOnce.Do(func() {
		secs, err := strconv.ParseInt(os.Getenv("SOURCE_DATE_EPOCH"), 10, 64)
		if err == nil {
			now = time.Unix(secs, 0)
		} else {
			now = time.Now()
		}
	})
	return now
}
