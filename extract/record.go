// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/drt-scenarios/drtprep/errs"
	"github.com/drt-scenarios/drtprep/network"
)

// TripRecord is one observed trip of the input trips table.
type TripRecord struct {
	Line        int
	Mode        string
	Origin      network.Coord
	Destination network.Coord
	Departure   float64 // seconds since midnight, below 86400
	Duration    float64 // seconds
}

// Arrival is the observed arrival time, departure plus duration.
func (r TripRecord) Arrival() float64 {
	return r.Departure + r.Duration
}

var recordColumns = []string{"main_mode", "start_x", "start_y", "end_x", "end_y", "dep_time", "trav_time"}

// RecordReader reads the ';' separated trips table.
type RecordReader struct {
	cr   *csv.Reader
	cols map[string]int
	line int
}

// NewRecordReader reads the header row of r. A header lacking one of the
// required columns is a configuration error.
func NewRecordReader(r io.Reader) (*RecordReader, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: trips header: %v", errs.ErrConfiguration, err)
	}

	rr := &RecordReader{cr: cr, cols: make(map[string]int), line: 1}
	for i, h := range header {
		rr.cols[strings.TrimSpace(h)] = i
	}
	for _, c := range recordColumns {
		if _, ok := rr.cols[c]; !ok {
			return nil, fmt.Errorf("%w: trips table has no column %q", errs.ErrConfiguration, c)
		}
	}
	return rr, nil
}

// Next returns the next record, io.EOF at the end of input. A malformed
// row yields an error wrapping errs.ErrRecord; reading may continue.
func (rr *RecordReader) Next() (TripRecord, error) {
	row, err := rr.cr.Read()
	if errors.Is(err, io.EOF) {
		return TripRecord{}, io.EOF
	}
	rr.line++
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return TripRecord{}, fmt.Errorf("%w: line %d: %v", errs.ErrRecord, rr.line, err)
		}
		return TripRecord{}, err
	}

	rec := TripRecord{Line: rr.line}
	field := func(name string) string {
		i := rr.cols[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec.Mode = field("main_mode")

	coords := []*float64{&rec.Origin.X, &rec.Origin.Y, &rec.Destination.X, &rec.Destination.Y}
	for i, name := range []string{"start_x", "start_y", "end_x", "end_y"} {
		v, err := strconv.ParseFloat(field(name), 64)
		if err != nil {
			return TripRecord{}, fmt.Errorf("%w: line %d: %s: %v", errs.ErrRecord, rr.line, name, err)
		}
		*coords[i] = v
	}

	if rec.Departure, err = parseClock(field("dep_time")); err != nil {
		return TripRecord{}, fmt.Errorf("%w: line %d: dep_time: %v", errs.ErrRecord, rr.line, err)
	}
	if rec.Duration, err = parseClock(field("trav_time")); err != nil {
		return TripRecord{}, fmt.Errorf("%w: line %d: trav_time: %v", errs.ErrRecord, rr.line, err)
	}

	return rec, nil
}

// parseClock parses H:MM:SS, taking the hour modulo 24. Minutes and
// seconds must be below 60.
func parseClock(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		v[i] = n
	}
	if v[1] > 59 || v[2] > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return float64((v[0]%24)*3600 + v[1]*60 + v[2]), nil
}
