// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/drt-scenarios/drtprep/errs"
	"github.com/drt-scenarios/drtprep/population"
	"github.com/drt-scenarios/drtprep/sampling"
	"github.com/drt-scenarios/drtprep/scenario"
)

func runSample(args []string) error {
	fs := newFlagSet("sample")
	scen := fs.StringP("scenario", "s", "", "scenario from the built-in catalog, sets --plans and --base")
	root := fs.String("data", ".", "scenario data root the catalog paths are relative to")
	plansPath := fs.StringP("plans", "p", "", "input plans file")
	base := fs.Float64("base", 0, "sample fraction of the input plans, in (0,1]")
	samples := fs.Float64Slice("samples", nil, "target sample fractions, in (0,1]")
	seed := fs.Int64("seed", 0, "random seed (default from config)")
	outDir := fs.StringP("output", "o", "plans", "output directory")
	common := addCommonFlags(fs)

	s, err := parse(fs, common, args)
	if err != nil {
		return err
	}
	if len(*samples) == 0 {
		return fmt.Errorf("%w: --samples is required", errs.ErrConfiguration)
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
		if *plansPath, err = sc.PlansPath(*root, false); err != nil {
			return err
		}
		if !fs.Changed("base") {
			*base = sc.BaseSample
		}
	}
	if *plansPath == "" || *base == 0 {
		return fmt.Errorf("%w: either --scenario or --plans and --base are required", errs.ErrConfiguration)
	}

	sd := s.cfg.Sample.Seed
	if fs.Changed("seed") {
		sd = *seed
	}

	pop, err := population.ReadFile(*plansPath)
	if err != nil {
		return err
	}
	s.log.Info("plans read", "file", *plansPath, "persons", pop.Len(), "base", *base)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	prev := pop.Len()
	emit := func(f float64, p *population.Population) error {
		s.metrics.PersonsSampled.WithLabelValues(strconv.FormatFloat(f, 'f', -1, 64)).Add(float64(p.Len()))
		s.metrics.PersonsRemoved.Add(float64(prev - p.Len()))
		prev = p.Len()

		path := filepath.Join(*outDir, sampling.FileName(filepath.Base(*plansPath), *base, f, sd))
		if filepath.Clean(path) == filepath.Clean(*plansPath) {
			return fmt.Errorf("%w: sample would overwrite the input %s", errs.ErrConfiguration, path)
		}
		fmt.Fprintf(os.Stdout, "Writing %.4g sample (%d persons) to %s...", f, p.Len(), path)
		if err := population.WriteFile(path, p); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "done.\n")
		return nil
	}

	if err := sampling.Chain(pop, *base, *samples, sd, emit, s.log); err != nil {
		return err
	}

	return s.finish()
}
