// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package sampling

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/drt-scenarios/drtprep/errs"
	"github.com/drt-scenarios/drtprep/population"
)

// DefaultConvertSeed seeds ConvertByMode unless configured otherwise.
const DefaultConvertSeed = 4711

// ConvertStats counts the outcome of a mode conversion.
type ConvertStats struct {
	Trips     int
	Eligible  int
	Converted int
	NoEndTime int
}

// ModeConverter turns trips of the selected plans into single-trip DRT
// persons. A trip whose main mode has a share is converted with that
// probability.
type ModeConverter struct {
	Modes  []string
	Shares []float64
	Seed   int64
	Prefix string
	Logger *slog.Logger
}

// ConvertByMode runs a ModeConverter with the default person prefix.
func ConvertByMode(pop *population.Population, modes []string, shares []float64, seed int64) (*population.Population, ConvertStats, error) {
	c := ModeConverter{Modes: modes, Shares: shares, Seed: seed}
	return c.Run(pop)
}

func (c ModeConverter) shareMap() (map[string]float64, error) {
	if len(c.Modes) != len(c.Shares) {
		return nil, fmt.Errorf("%w: %d modes but %d shares", errs.ErrConfiguration, len(c.Modes), len(c.Shares))
	}
	if len(c.Modes) == 0 {
		return nil, fmt.Errorf("%w: no modes to convert", errs.ErrConfiguration)
	}
	ret := make(map[string]float64, len(c.Modes))
	for i, m := range c.Modes {
		if c.Shares[i] < 0 || c.Shares[i] > 1 {
			return nil, fmt.Errorf("%w: share %v of mode %s not in [0,1]", errs.ErrConfiguration, c.Shares[i], m)
		}
		ret[m] = c.Shares[i]
	}
	return ret, nil
}

// Run returns a new population of DRT persons. Persons are visited in
// population order, trips in plan order.
func (c ModeConverter) Run(pop *population.Population) (*population.Population, ConvertStats, error) {
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}
	prefix := c.Prefix
	if prefix == "" {
		prefix = "drt-person-"
	}

	shares, err := c.shareMap()
	if err != nil {
		return nil, ConvertStats{}, err
	}

	rnd := rand.New(rand.NewSource(c.Seed))
	out := population.New()
	st := ConvertStats{}

	for _, p := range pop.Persons() {
		for _, t := range population.Trips(p.SelectedPlan()) {
			st.Trips++
			share, ok := shares[t.MainMode()]
			if !ok {
				continue
			}
			st.Eligible++
			if rnd.Float64() >= share {
				continue
			}
			if t.Origin.EndTime == nil {
				st.NoEndTime++
				log.Warn("trip origin has no end time, not converted", "person", p.ID)
				continue
			}

			np := population.NewTripPerson(fmt.Sprintf("%s%d", prefix, st.Converted), "dummy",
				t.Origin.Link, *t.Origin.EndTime, "drt", t.Destination.Link)
			if err := out.Add(np); err != nil {
				return nil, st, err
			}
			st.Converted++
		}
	}

	log.Info("trips converted to drt",
		"trips", st.Trips,
		"eligible", st.Eligible,
		"converted", st.Converted)

	return out, st, nil
}
