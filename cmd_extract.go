// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package main

import (
	"fmt"

	"github.com/drt-scenarios/drtprep/area"
	"github.com/drt-scenarios/drtprep/codec"
	"github.com/drt-scenarios/drtprep/errs"
	"github.com/drt-scenarios/drtprep/extract"
	"github.com/drt-scenarios/drtprep/network"
	"github.com/drt-scenarios/drtprep/population"
	"github.com/drt-scenarios/drtprep/router"
	"github.com/drt-scenarios/drtprep/timetable"
)

func runExtract(args []string) error {
	fs := newFlagSet("extract")
	netPath := fs.StringP("network", "n", "", "network file the trips are snapped to")
	areaPath := fs.StringP("area", "a", "", "service area GeoJSON file")
	tripsPath := fs.StringP("trips", "t", "", "';' separated trips table (.csv or .csv.gz)")
	ttPath := fs.String("timetable", "", "interchange timetable CSV (type, route, time)")
	gtfsPath := fs.String("gtfs", "", "GTFS feed to read the interchange timetable from, instead of --timetable")
	stop := fs.String("stop", "", "interchange stop id in the GTFS feed (default from config)")
	interchange := fs.String("interchange-link", "", "link id of the interchange station (default from config)")
	seed := fs.Int64("seed", 0, "random seed (default from config)")
	outPath := fs.StringP("output", "o", "", "output plans file")
	common := addCommonFlags(fs)

	s, err := parse(fs, common, args)
	if err != nil {
		return err
	}
	if err := required(fs, "network", "area", "trips", "output"); err != nil {
		return err
	}

	cfg := s.cfg.ExtractorConfig()
	if fs.Changed("interchange-link") {
		cfg.InterchangeLink = *interchange
	}
	if fs.Changed("seed") {
		cfg.Seed = *seed
	}
	stopID := s.cfg.Extract.InterchangeStop
	if fs.Changed("stop") {
		stopID = *stop
	}

	var tt *timetable.Timetable
	switch {
	case *ttPath != "" && *gtfsPath != "":
		return fmt.Errorf("%w: --timetable and --gtfs are exclusive", errs.ErrConfiguration)
	case *ttPath != "":
		tt, err = timetable.ReadFile(*ttPath, cfg.Partition)
	case *gtfsPath != "":
		if stopID == "" {
			return fmt.Errorf("%w: --stop is required with --gtfs", errs.ErrConfiguration)
		}
		tt, err = timetable.FromGTFS(*gtfsPath, stopID, cfg.Partition)
	default:
		return fmt.Errorf("%w: one of --timetable or --gtfs is required", errs.ErrConfiguration)
	}
	if err != nil {
		return err
	}
	s.log.Info("timetable read", "entries", tt.Len())

	sa, err := area.Load(*areaPath)
	if err != nil {
		return err
	}

	net, err := network.ReadFile(*netPath)
	if err != nil {
		return err
	}

	oracle := router.New(net, s.cfg.Router.Mode, s.cfg.Router.CacheSize, s.log)

	ex, err := extract.New(cfg, net, sa, tt, oracle, s.log)
	if err != nil {
		return err
	}

	in, err := codec.Open(*tripsPath)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrConfiguration, err)
	}
	defer in.Close()

	rr, err := extract.NewRecordReader(in)
	if err != nil {
		return err
	}

	pop := population.New()
	st, err := ex.Run(rr, pop)
	s.metrics.ObserveExtract(st)
	if err != nil {
		return err
	}

	hits, misses := oracle.CacheStats()
	s.log.Debug("router cache", "hits", hits, "misses", misses)

	if err := population.WriteFile(*outPath, pop); err != nil {
		return err
	}
	s.log.Info("drt requests written", "file", *outPath, "persons", pop.Len())

	return s.finish()
}
