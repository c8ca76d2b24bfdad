// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package population

// Trip is the part of a plan between two non-stage activities.
type Trip struct {
	Origin      *Activity
	Destination *Activity
	Legs        []*Leg
}

// mode hierarchy for main mode identification, highest first
var modeRank = map[string]int{
	"drt":  6,
	"pt":   5,
	"car":  4,
	"ride": 3,
	"bike": 2,
	"walk": 1,
}

// Trips splits plan into trips. Stage activities are skipped, legs
// between them belong to the same trip.
func Trips(plan *Plan) []Trip {
	if plan == nil {
		return nil
	}

	ret := make([]Trip, 0)
	var cur *Trip
	for _, e := range plan.Elements {
		switch v := e.(type) {
		case *Activity:
			if v.IsStage() {
				continue
			}
			if cur != nil && len(cur.Legs) > 0 {
				cur.Destination = v
				ret = append(ret, *cur)
			}
			cur = &Trip{Origin: v}
		case *Leg:
			if cur != nil {
				cur.Legs = append(cur.Legs, v)
			}
		}
	}
	return ret
}

// MainMode returns the highest ranked mode of the trip's legs, using the
// hierarchy drt > pt > car > ride > bike > walk. Modes outside the
// hierarchy rank lowest; among them the first leg wins.
func (t Trip) MainMode() string {
	best := ""
	bestRank := -1
	for _, l := range t.Legs {
		r := modeRank[l.Mode]
		if r > bestRank {
			best, bestRank = l.Mode, r
		}
	}
	return best
}
