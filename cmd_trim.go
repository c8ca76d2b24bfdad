// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package main

import (
	"errors"
	"os"

	"github.com/drt-scenarios/drtprep/area"
	"github.com/drt-scenarios/drtprep/errs"
	"github.com/drt-scenarios/drtprep/network"
	"github.com/drt-scenarios/drtprep/processors"
)

func runTrim(args []string) error {
	fs := newFlagSet("trim")
	netPath := fs.StringP("network", "n", "", "input network file (.xml or .xml.gz)")
	areaPath := fs.StringP("area", "a", "", "service area GeoJSON file")
	outPath := fs.StringP("output", "o", "", "output network file")
	policy := fs.String("policy", "", "removal policy, both-endpoints or destination (default from config)")
	mode := fs.String("mode", "", "only links with this mode are cut (default from config)")
	cleanerModes := fs.StringSlice("cleaner-modes", nil, "modes whose links must be strongly connected, empty for all")
	allowEmpty := fs.Bool("allow-empty", false, "write an empty network instead of failing")
	common := addCommonFlags(fs)

	s, err := parse(fs, common, args)
	if err != nil {
		return err
	}
	if err := required(fs, "network", "area", "output"); err != nil {
		return err
	}

	cfg := s.cfg.Trim
	if fs.Changed("policy") {
		cfg.Policy = *policy
	}
	if fs.Changed("mode") {
		cfg.Mode = *mode
	}
	if fs.Changed("cleaner-modes") {
		cfg.CleanerModes = *cleanerModes
	}
	if fs.Changed("allow-empty") {
		cfg.AllowEmpty = *allowEmpty
	}

	pol, err := processors.ParsePolicy(cfg.Policy)
	if err != nil {
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
	s.log.Info("network read", "file", *netPath, "nodes", net.NumNodes(), "links", net.NumLinks())

	trimmer := processors.NetworkTrimmer{
		Area:    sa,
		Policy:  pol,
		Mode:    cfg.Mode,
		Cleaner: processors.NetworkCleaner{Modes: cfg.CleanerModes},
		Out:     os.Stdout,
		Logger:  s.log,
	}

	st, err := trimmer.Run(net)
	s.metrics.ObserveTrim(st)
	if errors.Is(err, errs.ErrDegenerateGeometry) && cfg.AllowEmpty {
		s.log.Warn("trimmed network is empty", "error", err)
	} else if err != nil {
		return err
	}

	if err := network.WriteFile(*outPath, net); err != nil {
		return err
	}
	s.log.Info("network written", "file", *outPath, "nodes", net.NumNodes(), "links", net.NumLinks())

	return s.finish()
}
