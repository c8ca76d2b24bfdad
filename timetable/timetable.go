// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package timetable holds the scheduled arrival and departure times at an
// interchange, grouped by route class, and snaps arbitrary times to them.
package timetable

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/drt-scenarios/drtprep/errs"
	"golang.org/x/exp/slices"
)

// ErrEmptyCategory is returned by Nearest for a (class, event) pair
// without any scheduled time.
var ErrEmptyCategory = errors.New("empty timetable category")

// Event is the kind of a scheduled time.
type Event int

const (
	EventArrival Event = iota
	EventDeparture
)

func (e Event) String() string {
	if e == EventArrival {
		return "arrival"
	}
	return "departure"
}

// ParseEvent parses "arrival" or "departure", case insensitive.
func ParseEvent(s string) (Event, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "arrival":
		return EventArrival, nil
	case "departure":
		return EventDeparture, nil
	}
	return 0, fmt.Errorf("unknown event type %q", s)
}

type category struct {
	class string
	event Event
}

// Timetable maps (route class, event) to a sorted list of times in
// seconds since midnight.
type Timetable struct {
	times map[category][]float64
}

// New returns an empty timetable.
func New() *Timetable {
	return &Timetable{times: make(map[category][]float64)}
}

// Add inserts a scheduled time. Duplicates are kept once.
func (tt *Timetable) Add(class string, ev Event, t float64) {
	k := category{class, ev}
	list := tt.times[k]
	i, found := slices.BinarySearch(list, t)
	if found {
		return
	}
	tt.times[k] = slices.Insert(list, i, t)
}

// Times returns the sorted times of a category. The slice must not be
// modified.
func (tt *Timetable) Times(class string, ev Event) []float64 {
	return tt.times[category{class, ev}]
}

// Len returns the total number of scheduled times.
func (tt *Timetable) Len() int {
	n := 0
	for _, l := range tt.times {
		n += len(l)
	}
	return n
}

// Nearest returns the scheduled time of (class, ev) closest to target.
// Ties go to the earlier time.
func (tt *Timetable) Nearest(class string, ev Event, target float64) (float64, error) {
	list := tt.times[category{class, ev}]
	if len(list) == 0 {
		return 0, fmt.Errorf("%w: %s %s", ErrEmptyCategory, class, ev)
	}

	i, _ := slices.BinarySearch(list, target)
	if i == 0 {
		return list[0], nil
	}
	if i == len(list) {
		return list[len(list)-1], nil
	}

	before, after := list[i-1], list[i]
	if math.Abs(target-before) <= math.Abs(after-target) {
		return before, nil
	}
	return after, nil
}

// Validate checks that every class of p that can be drawn has arrival and
// departure times.
func (tt *Timetable) Validate(p ClassPartition) error {
	if err := p.Validate(); err != nil {
		return err
	}
	for _, c := range p {
		if c.Share <= 0 {
			continue
		}
		for _, ev := range []Event{EventArrival, EventDeparture} {
			if len(tt.Times(c.Name, ev)) == 0 {
				return fmt.Errorf("%w: no %s times for route class %q", errs.ErrConfiguration, ev, c.Name)
			}
		}
	}
	return nil
}
