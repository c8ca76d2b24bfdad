// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package main

import (
	"fmt"
	"os"

	"github.com/drt-scenarios/drtprep/area"
	"github.com/drt-scenarios/drtprep/errs"
	"github.com/drt-scenarios/drtprep/network"
	"github.com/drt-scenarios/drtprep/population"
	"github.com/drt-scenarios/drtprep/processors"
	"github.com/drt-scenarios/drtprep/sampling"
	"github.com/drt-scenarios/drtprep/scenario"
	"github.com/drt-scenarios/drtprep/spatial"
)

func runConvert(args []string) error {
	fs := newFlagSet("convert")
	scen := fs.StringP("scenario", "s", "", "scenario from the built-in catalog, sets --plans to its manual sampling plans")
	root := fs.String("data", ".", "scenario data root the catalog paths are relative to")
	plansPath := fs.StringP("plans", "p", "", "input plans file")
	modes := fs.StringSlice("modes", nil, "main modes of the trips to convert")
	shares := fs.Float64Slice("shares", nil, "conversion probability per mode, in the order of --modes")
	seed := fs.Int64("seed", 0, "random seed (default from config)")
	outPath := fs.StringP("output", "o", "manual-sampled.plans.xml.gz", "output plans file")

	prepare := fs.Bool("prepare", false, "reduce the plans to single trips inside the service window first")
	areaPath := fs.StringP("area", "a", "", "service area GeoJSON file for --prepare")
	netPath := fs.StringP("network", "n", "", "network whose slow links trip ends are snapped to with --prepare")
	start := fs.String("start", "1:00:00", "service window start for --prepare")
	end := fs.String("end", "24:00:00", "service window end for --prepare")
	minDist := fs.Float64("min-distance", 500, "minimum euclidean trip distance in meters for --prepare")
	common := addCommonFlags(fs)

	s, err := parse(fs, common, args)
	if err != nil {
		return err
	}
	if len(*modes) == 0 {
		return fmt.Errorf("%w: --modes is required", errs.ErrConfiguration)
	}

	name := s.cfg.Sample.Scenario
	if fs.Changed("scenario") {
		name = *scen
	}
	if name != "" && !fs.Changed("plans") {
		cat, err := scenario.LoadCatalog()
		if err != nil {
			return err
		}
		sc, err := cat.Get(name)
		if err != nil {
			return err
		}
		if *plansPath, err = sc.PlansPath(*root, true); err != nil {
			return err
		}
	}
	if *plansPath == "" {
		return fmt.Errorf("%w: either --scenario or --plans is required", errs.ErrConfiguration)
	}

	sd := s.cfg.Sample.ConvertSeed
	if fs.Changed("seed") {
		sd = *seed
	}

	pop, err := population.ReadFile(*plansPath)
	if err != nil {
		return err
	}
	s.log.Info("plans read", "file", *plansPath, "persons", pop.Len())

	if *prepare {
		f := processors.TripFilter{MinDistance: *minDist, Out: os.Stdout, Logger: s.log}
		if f.Start, err = population.ParseTime(*start); err != nil {
			return fmt.Errorf("%w: --start: %v", errs.ErrConfiguration, err)
		}
		if f.End, err = population.ParseTime(*end); err != nil {
			return fmt.Errorf("%w: --end: %v", errs.ErrConfiguration, err)
		}
		if *areaPath != "" {
			if f.Area, err = area.Load(*areaPath); err != nil {
				return err
			}
		}
		if *netPath != "" {
			net, err := network.ReadFile(*netPath)
			if err != nil {
				return err
			}
			slow := network.SlowLinks(net, s.cfg.Extract.SlowLinkSpeed)
			if len(slow) == 0 {
				return fmt.Errorf("no link slower than %.1f m/s: %w", s.cfg.Extract.SlowLinkSpeed, spatial.ErrNoCandidates)
			}
			f.Snap = spatial.NewIndex(slow)
		}
		if pop, err = f.Run(pop); err != nil {
			return err
		}
	}

	conv := sampling.ModeConverter{Modes: *modes, Shares: *shares, Seed: sd, Logger: s.log}
	out, st, err := conv.Run(pop)
	if err != nil {
		return err
	}
	s.metrics.TripsConverted.Add(float64(st.Converted))

	if err := population.WriteFile(*outPath, out); err != nil {
		return err
	}
	s.log.Info("drt requests written", "file", *outPath, "persons", out.Len())

	return s.finish()
}
