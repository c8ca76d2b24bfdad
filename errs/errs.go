// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package errs holds the error classes shared by all pipeline stages.
// Stages wrap one of these sentinels, callers test with errors.Is.
package errs

import "errors"

var (
	// ErrConfiguration aborts a run: missing or malformed service area,
	// empty timetable category, invalid configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrRecord marks a single malformed input record. The record is skipped.
	ErrRecord = errors.New("malformed record")

	// ErrDegenerateGeometry is reported as a warning, the caller decides
	// whether to abort.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrLookup signals a nearest-feature query on an empty candidate set.
	ErrLookup = errors.New("lookup on empty candidate set")
)

// ExitCode maps an error returned by a pipeline stage to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrLookup):
		return 2
	case errors.Is(err, ErrDegenerateGeometry):
		return 3
	default:
		return 1
	}
}
