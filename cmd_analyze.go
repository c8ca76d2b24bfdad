// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package main

import (
	"fmt"
	"os"

	"github.com/drt-scenarios/drtprep/area"
	"github.com/drt-scenarios/drtprep/network"
	"github.com/drt-scenarios/drtprep/population"
)

func runAnalyze(args []string) error {
	fs := newFlagSet("analyze")
	netPath := fs.StringP("network", "n", "", "network file")
	areaPath := fs.StringP("area", "a", "", "service area GeoJSON file")
	plansPath := fs.StringP("plans", "p", "", "drt plans file")
	common := addCommonFlags(fs)

	s, err := parse(fs, common, args)
	if err != nil {
		return err
	}
	if err := required(fs, "network", "area", "plans"); err != nil {
		return err
	}

	sa, err := area.Load(*areaPath)
	if err != nil {
		return err
	}
	net, err := network.ReadFile(*netPath)
	if err != nil {
		return err
	}
	pop, err := population.ReadFile(*plansPath)
	if err != nil {
		return err
	}

	res := area.Analyze(sa, net, pop)
	s.log.Info("scenario analyzed",
		"area_km2", res.AreaKm2,
		"demands", res.Demands,
		"car_links", res.CarLinksInService)

	fmt.Fprintf(os.Stdout, "Service area:     %.2f km2\n", res.AreaKm2)
	fmt.Fprintf(os.Stdout, "Demands:          %d\n", res.Demands)
	fmt.Fprintf(os.Stdout, "Demand density:   %.2f 1/km2\n", res.DemandDensity)
	fmt.Fprintf(os.Stdout, "Network length:   %.2f km (%d car links)\n", res.NetworkLengthKm, res.CarLinksInService)
	fmt.Fprintf(os.Stdout, "Network density:  %.2f km/km2\n", res.NetworkDensity)

	return s.finish()
}
