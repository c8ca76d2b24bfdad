// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package extract turns observed feeder trips into DRT trip requests that
// are synchronized to the timetable at an interchange station.
package extract

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"

	"github.com/drt-scenarios/drtprep/area"
	"github.com/drt-scenarios/drtprep/errs"
	"github.com/drt-scenarios/drtprep/network"
	"github.com/drt-scenarios/drtprep/population"
	"github.com/drt-scenarios/drtprep/spatial"
	"github.com/drt-scenarios/drtprep/timetable"
)

// TravelTimeOracle estimates the travel time between the ends of two
// links for a given departure time.
type TravelTimeOracle interface {
	TravelTime(from, to *network.Link, departure float64) (float64, error)
}

// Case tells which trip ends lie inside the service area.
type Case int

const (
	CaseBothInside Case = iota
	CaseOriginInside
	CaseDestinationInside
)

func (c Case) String() string {
	switch c {
	case CaseBothInside:
		return "both-inside"
	case CaseOriginInside:
		return "origin-inside"
	case CaseDestinationInside:
		return "destination-inside"
	}
	return fmt.Sprintf("Case(%d)", int(c))
}

// Classify returns the case of a trip, false if neither end is inside.
func Classify(originInside, destinationInside bool) (Case, bool) {
	switch {
	case originInside && destinationInside:
		return CaseBothInside, true
	case originInside:
		return CaseOriginInside, true
	case destinationInside:
		return CaseDestinationInside, true
	}
	return 0, false
}

// Reason is why a trip was rejected.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonMode        Reason = "mode"
	ReasonOutside     Reason = "outside"
	ReasonDegenerate  Reason = "degenerate"
	ReasonTimetable   Reason = "timetable"
	ReasonUnreachable Reason = "unreachable"
)

// Config holds the tunables of an Extractor.
type Config struct {
	ConvertibleMode        string
	InterchangeLink        string
	Alpha                  float64
	Beta                   float64
	MinInterchangeDistance float64
	SlowLinkSpeed          float64
	Seed                   int64
	PersonPrefix           string
	ActivityType           string
	Partition              timetable.ClassPartition
}

// DefaultConfig returns the defaults for everything but the interchange
// link.
func DefaultConfig() Config {
	return Config{
		ConvertibleMode:        "pt",
		Alpha:                  2.0,
		Beta:                   900,
		MinInterchangeDistance: 1000,
		SlowLinkSpeed:          8.4,
		Seed:                   1234,
		PersonPrefix:           "drt_passenger_",
		ActivityType:           "dummy",
		Partition:              timetable.DefaultPartition(),
	}
}

// Stats counts the outcomes of an extraction run.
type Stats struct {
	Records  int
	Accepted int
	Skipped  int
	Rejected map[Reason]int
	ByCase   map[Case]int
}

// Extractor converts trip records, one at a time. It owns a seeded random
// source and the person counter and must not be used concurrently.
type Extractor struct {
	cfg         Config
	area        *area.ServiceArea
	index       *spatial.Index
	interchange *network.Link
	fallback    []*network.Link
	timetable   *timetable.Timetable
	oracle      TravelTimeOracle
	log         *slog.Logger

	rng     *rand.Rand
	counter int
	stats   Stats
}

// New prepares an extractor: builds the slow link index, resolves the
// interchange link and checks the timetable against the class partition.
func New(cfg Config, net *network.Network, sa *area.ServiceArea, tt *timetable.Timetable, oracle TravelTimeOracle, log *slog.Logger) (*Extractor, error) {
	if log == nil {
		log = slog.Default()
	}
	if sa == nil {
		return nil, fmt.Errorf("%w: no service area given", errs.ErrConfiguration)
	}
	if cfg.ConvertibleMode == "" {
		return nil, fmt.Errorf("%w: no convertible mode given", errs.ErrConfiguration)
	}
	if cfg.Alpha < 0 || cfg.Beta < 0 || cfg.MinInterchangeDistance < 0 {
		return nil, fmt.Errorf("%w: alpha, beta and interchange distance must not be negative", errs.ErrConfiguration)
	}
	if cfg.ActivityType == "" {
		cfg.ActivityType = "dummy"
	}

	interchange := net.Link(cfg.InterchangeLink)
	if interchange == nil {
		return nil, fmt.Errorf("%w: interchange link %q not in network", errs.ErrConfiguration, cfg.InterchangeLink)
	}

	if err := tt.Validate(cfg.Partition); err != nil {
		return nil, err
	}

	candidates := network.SlowLinks(net, cfg.SlowLinkSpeed)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no link slower than %.1f m/s: %w", cfg.SlowLinkSpeed, spatial.ErrNoCandidates)
	}
	index := spatial.NewIndex(candidates)

	e := &Extractor{
		cfg:         cfg,
		area:        sa,
		index:       index,
		interchange: interchange,
		fallback:    fallbackLinks(index, interchange, cfg.MinInterchangeDistance),
		timetable:   tt,
		oracle:      oracle,
		log:         log,
		rng:         rand.New(rand.NewSource(cfg.Seed)),
		stats: Stats{
			Rejected: make(map[Reason]int),
			ByCase:   make(map[Case]int),
		},
	}

	log.Info("extractor ready",
		"candidates", len(candidates),
		"fallback_candidates", len(e.fallback),
		"interchange", interchange.ID,
		"seed", cfg.Seed)
	if len(e.fallback) == 0 {
		log.Warn("no fallback link far enough from the interchange, short feeder trips will be rejected")
	}

	return e, nil
}

// fallbackLinks returns the candidates at least minDist away from the
// interchange, in candidate order.
func fallbackLinks(index *spatial.Index, interchange *network.Link, minDist float64) []*network.Link {
	center := interchange.To.Coord
	cands := index.Candidates()

	near := make(map[int]bool)
	for _, i := range index.Within(center, minDist) {
		if cands[i].To.Coord.Dist(center) < minDist {
			near[i] = true
		}
	}

	ret := make([]*network.Link, 0, len(cands)-len(near))
	for i, l := range cands {
		if near[i] || l == interchange {
			continue
		}
		ret = append(ret, l)
	}
	return ret
}

// Stats returns the counters collected so far.
func (e *Extractor) Stats() Stats {
	return e.stats
}

func (e *Extractor) reject(rec TripRecord, r Reason, err error) (*population.Person, Reason, error) {
	e.stats.Rejected[r]++
	if err != nil {
		e.log.Warn("trip rejected", "line", rec.Line, "reason", string(r), "error", err)
	}
	return nil, r, nil
}

// Extract converts one record. A rejected record yields a nil person and
// the reason. The returned error is set only for failures that should
// end the run.
func (e *Extractor) Extract(rec TripRecord) (*population.Person, Reason, error) {
	e.stats.Records++

	if rec.Mode != e.cfg.ConvertibleMode {
		return e.reject(rec, ReasonMode, nil)
	}

	c, ok := Classify(e.area.Contains(rec.Origin), e.area.Contains(rec.Destination))
	if !ok {
		return e.reject(rec, ReasonOutside, nil)
	}

	var from, to *network.Link
	var end float64

	switch c {
	case CaseBothInside:
		var err error
		if from, _, err = e.index.Nearest(rec.Origin); err != nil {
			return nil, ReasonNone, err
		}
		if to, _, err = e.index.Nearest(rec.Destination); err != nil {
			return nil, ReasonNone, err
		}
		end = rec.Departure

	case CaseOriginInside:
		var err error
		to = e.interchange
		if from, err = e.snapAwayFromInterchange(rec.Origin); err != nil {
			return e.rejectErr(rec, err)
		}
		budget, err := e.budget(from, to, rec.Departure)
		if err != nil {
			return e.reject(rec, ReasonUnreachable, err)
		}
		class := e.cfg.Partition.Pick(e.rng.Float64())
		dep, err := e.timetable.Nearest(class, timetable.EventDeparture, rec.Departure+budget)
		if err != nil {
			return e.reject(rec, ReasonTimetable, err)
		}
		end = dep - budget

	case CaseDestinationInside:
		var err error
		from = e.interchange
		if to, err = e.snapAwayFromInterchange(rec.Destination); err != nil {
			return e.rejectErr(rec, err)
		}
		budget, err := e.budget(from, to, rec.Departure)
		if err != nil {
			return e.reject(rec, ReasonUnreachable, err)
		}
		class := e.cfg.Partition.Pick(e.rng.Float64())
		arr, err := e.timetable.Nearest(class, timetable.EventArrival, rec.Arrival()-budget)
		if err != nil {
			return e.reject(rec, ReasonTimetable, err)
		}
		end = arr
	}

	id := fmt.Sprintf("%s%d", e.cfg.PersonPrefix, e.counter)
	e.counter++
	e.stats.Accepted++
	e.stats.ByCase[c]++

	return population.NewTripPerson(id, e.cfg.ActivityType, from.ID, end, "drt", to.ID), ReasonNone, nil
}

func (e *Extractor) rejectErr(rec TripRecord, err error) (*population.Person, Reason, error) {
	if errors.Is(err, errs.ErrDegenerateGeometry) {
		return e.reject(rec, ReasonDegenerate, err)
	}
	return nil, ReasonNone, err
}

// snapAwayFromInterchange snaps c to the nearest slow link. A link that is
// the interchange itself or ends too close to it is replaced by a uniform
// draw among the links far enough away.
func (e *Extractor) snapAwayFromInterchange(c network.Coord) (*network.Link, error) {
	l, _, err := e.index.Nearest(c)
	if err != nil {
		return nil, err
	}
	if l != e.interchange && l.To.Coord.Dist(e.interchange.To.Coord) >= e.cfg.MinInterchangeDistance {
		return l, nil
	}
	if len(e.fallback) == 0 {
		return nil, fmt.Errorf("%w: link %s is too close to the interchange and there is no fallback", errs.ErrDegenerateGeometry, l.ID)
	}
	return e.fallback[e.rng.Intn(len(e.fallback))], nil
}

// budget is the DRT travel time allowed for a leg: ceil(alpha*t + beta).
func (e *Extractor) budget(from, to *network.Link, departure float64) (float64, error) {
	t, err := e.oracle.TravelTime(from, to, departure)
	if err != nil {
		return 0, err
	}
	return math.Ceil(e.cfg.Alpha*t + e.cfg.Beta), nil
}

// Run extracts all records of rr into out. Malformed records are counted
// and skipped.
func (e *Extractor) Run(rr *RecordReader, out *population.Population) (Stats, error) {
	for {
		rec, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, errs.ErrRecord) {
			e.stats.Skipped++
			e.log.Warn("skipping malformed trip record", "error", err)
			continue
		}
		if err != nil {
			return e.stats, err
		}

		p, _, err := e.Extract(rec)
		if err != nil {
			return e.stats, err
		}
		if p == nil {
			continue
		}
		if err := out.Add(p); err != nil {
			return e.stats, err
		}
	}

	e.log.Info("trips extracted",
		"records", e.stats.Records,
		"accepted", e.stats.Accepted,
		"skipped", e.stats.Skipped,
		"rejected", e.stats.Rejected)

	return e.stats, nil
}
