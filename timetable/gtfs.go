// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package timetable

import (
	"fmt"

	"github.com/drt-scenarios/drtprep/errs"
	"github.com/patrickbr/gtfsparser"
	gtfs "github.com/patrickbr/gtfsparser/gtfs"
)

// FromGTFS builds the timetable of the stop stopID (or any stop whose
// parent station chain contains it) from a GTFS feed directory or zip.
// Trips with frequencies are expanded. A trip contributes no arrival at
// its first stop and no departure at its last stop. Routes are labeled by
// short name, else by id.
func FromGTFS(feedPath, stopID string, p ClassPartition) (*Timetable, error) {
	feed := gtfsparser.NewFeed()
	opts := gtfsparser.ParseOptions{UseDefValueOnError: false, DropErroneous: false, DryRun: false}
	feed.SetParseOpts(opts)

	if err := feed.Parse(feedPath); err != nil {
		return nil, fmt.Errorf("%w: gtfs %s: %v", errs.ErrConfiguration, feedPath, err)
	}

	if _, ok := feed.Stops[stopID]; !ok {
		return nil, fmt.Errorf("%w: stop %q not in feed %s", errs.ErrConfiguration, stopID, feedPath)
	}

	tt := New()
	for _, t := range feed.Trips {
		if t.Route == nil || len(t.StopTimes) == 0 {
			continue
		}

		label := t.Route.Short_name
		if label == "" {
			label = t.Route.Id
		}
		class := p.ClassOf(label)
		if class == "" {
			continue
		}

		offsets := tripOffsets(t)
		first := float64(t.StopTimes[0].Departure_time().SecondsSinceMidnight())

		for i, st := range t.StopTimes {
			if !atStop(st.Stop(), stopID) {
				continue
			}
			arr := float64(st.Arrival_time().SecondsSinceMidnight())
			dep := float64(st.Departure_time().SecondsSinceMidnight())

			for _, start := range offsets {
				shift := 0.0
				if start >= 0 {
					shift = start - first
				}
				if i > 0 {
					tt.Add(class, EventArrival, arr+shift)
				}
				if i < len(t.StopTimes)-1 {
					tt.Add(class, EventDeparture, dep+shift)
				}
			}
		}
	}

	return tt, nil
}

// tripOffsets returns the start times of all runs of a frequency based
// trip, or a single -1 for a trip that runs as scheduled.
func tripOffsets(t *gtfs.Trip) []float64 {
	if t.Frequencies == nil || len(*t.Frequencies) == 0 {
		return []float64{-1}
	}

	ret := make([]float64, 0)
	for _, f := range *t.Frequencies {
		if f.Headway_secs <= 0 {
			continue
		}
		start := int(f.Start_time.SecondsSinceMidnight())
		end := int(f.End_time.SecondsSinceMidnight())
		for s := start; s < end; s += f.Headway_secs {
			ret = append(ret, float64(s))
		}
	}
	return ret
}

func atStop(s *gtfs.Stop, id string) bool {
	for ; s != nil; s = s.Parent_station {
		if s.Id == id {
			return true
		}
	}
	return false
}
