// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package timetable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/drt-scenarios/drtprep/codec"
	"github.com/drt-scenarios/drtprep/errs"
	"github.com/drt-scenarios/drtprep/population"
)

// Read parses a timetable CSV with a header row. The columns "type"
// (arrival or departure), "route" and "time" are looked up by name and
// default to the first three columns. Times are seconds since midnight or
// H:MM:SS. Route labels are assigned to classes of p; labels no class
// takes are dropped.
func Read(r io.Reader, p ClassPartition) (*Timetable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty timetable", errs.ErrConfiguration)
	}
	if err != nil {
		return nil, err
	}

	typeCol, routeCol, timeCol := 0, 1, 2
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "type":
			typeCol = i
		case "route":
			routeCol = i
		case "time":
			timeCol = i
		}
	}

	tt := New()
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: timetable line %d: %v", errs.ErrConfiguration, line, err)
		}
		if len(rec) <= typeCol || len(rec) <= routeCol || len(rec) <= timeCol {
			return nil, fmt.Errorf("%w: timetable line %d: too few columns", errs.ErrConfiguration, line)
		}

		ev, err := ParseEvent(rec[typeCol])
		if err != nil {
			return nil, fmt.Errorf("%w: timetable line %d: %v", errs.ErrConfiguration, line, err)
		}
		t, err := parseSeconds(rec[timeCol])
		if err != nil {
			return nil, fmt.Errorf("%w: timetable line %d: %v", errs.ErrConfiguration, line, err)
		}

		class := p.ClassOf(strings.TrimSpace(rec[routeCol]))
		if class == "" {
			continue
		}
		tt.Add(class, ev, t)
	}

	return tt, nil
}

// ReadFile reads a (possibly gzipped) timetable CSV.
func ReadFile(path string, p ClassPartition) (*Timetable, error) {
	r, err := codec.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrConfiguration, err)
	}
	defer r.Close()
	return Read(r, p)
}

func parseSeconds(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ":") {
		return population.ParseTime(s)
	}
	return strconv.ParseFloat(s, 64)
}
