// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package processors

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/drt-scenarios/drtprep/area"
	"github.com/drt-scenarios/drtprep/errs"
	"github.com/drt-scenarios/drtprep/population"
	"github.com/drt-scenarios/drtprep/spatial"
)

// TripFilter collects the trips of a population that are candidates for
// conversion to DRT, one output person per trip. A trip is kept if its
// origin ends within [Start, End), both ends lie in Area and the beeline
// distance is at least MinDistance.
type TripFilter struct {
	// Area may be nil, every trip passes the area test then.
	Area        *area.ServiceArea
	Start       float64
	End         float64
	MinDistance float64

	// Snap, if set, assigns the nearest indexed link to both trip ends.
	// Otherwise the activity links are kept.
	Snap *spatial.Index

	// Prefix of the generated person ids, default "drt_person_".
	Prefix string

	Out    io.Writer
	Logger *slog.Logger
}

// Run this TripFilter on some population. The input is not modified.
func (f TripFilter) Run(pop *population.Population) (*population.Population, error) {
	out := writer(f.Out)
	log := logger(f.Logger)

	if f.End <= f.Start {
		return nil, fmt.Errorf("%w: empty service window [%.0f, %.0f)", errs.ErrConfiguration, f.Start, f.End)
	}
	if f.Area == nil {
		log.Warn("service area is not defined, trips are not filtered by location")
	}

	prefix := f.Prefix
	if prefix == "" {
		prefix = "drt_person_"
	}

	fmt.Fprintf(out, "Removing trips outside service area and hours...")

	ret := population.New()
	bef := 0

	for _, p := range pop.Persons() {
		for _, t := range population.Trips(p.SelectedPlan()) {
			bef++

			o, d := t.Origin, t.Destination
			if o.EndTime == nil || *o.EndTime < f.Start || *o.EndTime >= f.End {
				continue
			}
			if o.Coord == nil || d.Coord == nil {
				continue
			}
			if f.Area != nil && (!f.Area.Contains(*o.Coord) || !f.Area.Contains(*d.Coord)) {
				continue
			}
			if o.Coord.Dist(*d.Coord) < f.MinDistance {
				continue
			}

			from, to := o.Link, d.Link
			if f.Snap != nil {
				fl, _, err := f.Snap.Nearest(*o.Coord)
				if err != nil {
					return nil, err
				}
				tl, _, err := f.Snap.Nearest(*d.Coord)
				if err != nil {
					return nil, err
				}
				from, to = fl.ID, tl.ID
			}
			if from == "" || to == "" {
				continue
			}

			id := fmt.Sprintf("%s%d", prefix, ret.Len())
			if err := ret.Add(population.NewTripPerson(id, "dummy", from, *o.EndTime, t.MainMode(), to)); err != nil {
				return nil, err
			}
		}
	}

	fmt.Fprintf(out, "done. (-%d trips [-%.2f%%])\n",
		bef-ret.Len(),
		100.0*float64(bef-ret.Len())/(float64(bef)+0.001))

	log.Info("trips filtered", "trips", bef, "kept", ret.Len())

	return ret, nil
}
