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
	"github.com/drt-scenarios/drtprep/network"
)

// Policy decides which end nodes of a link must lie inside the service
// area for the link to be kept.
type Policy int

const (
	// PolicyBothEndpoints keeps a link only if both end nodes are inside.
	PolicyBothEndpoints Policy = iota
	// PolicyDestination keeps a link if its to-node is inside.
	PolicyDestination
)

func (p Policy) String() string {
	switch p {
	case PolicyBothEndpoints:
		return "both-endpoints"
	case PolicyDestination:
		return "destination"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses the names returned by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "both-endpoints", "both":
		return PolicyBothEndpoints, nil
	case "destination", "to-node":
		return PolicyDestination, nil
	}
	return 0, fmt.Errorf("%w: unknown trim policy %q", errs.ErrConfiguration, s)
}

// NetworkTrimmer cuts a network down to a service area and repairs it
type NetworkTrimmer struct {
	Area   *area.ServiceArea
	Policy Policy

	// Mode marks the links that may be removed, default network.ModeCar.
	// Links without it are always kept.
	Mode string

	// Cleaner restores strong connectivity after the cut. Its zero value
	// considers all links.
	Cleaner NetworkCleaner

	Out    io.Writer
	Logger *slog.Logger
}

// TrimStats reports the outcome of a NetworkTrimmer run.
type TrimStats struct {
	LinksBefore  int
	NodesBefore  int
	LinksCut     int
	OrphansCut   int
	Clean        CleanStats
	LinksRemoved int
	NodesRemoved int
}

func (t NetworkTrimmer) keeps(l *network.Link) bool {
	switch t.Policy {
	case PolicyDestination:
		return t.Area.Contains(l.To.Coord)
	default:
		return t.Area.Contains(l.From.Coord) && t.Area.Contains(l.To.Coord)
	}
}

// Run this NetworkTrimmer on some network. An empty result is reported as
// an error wrapping errs.ErrDegenerateGeometry; the network is left
// trimmed in that case as well.
func (t NetworkTrimmer) Run(net *network.Network) (TrimStats, error) {
	if t.Area == nil {
		return TrimStats{}, fmt.Errorf("%w: no service area given", errs.ErrConfiguration)
	}

	out := writer(t.Out)
	log := logger(t.Logger)

	mode := t.Mode
	if mode == "" {
		mode = network.ModeCar
	}

	stats := TrimStats{LinksBefore: net.NumLinks(), NodesBefore: net.NumNodes()}
	log.Info("trimming network", "policy", t.Policy.String(), "mode", mode,
		"links", stats.LinksBefore, "nodes", stats.NodesBefore)

	fmt.Fprintf(out, "Trimming network to service area (%s)...", t.Policy)

	for _, l := range net.Links() {
		if !l.AllowsMode(mode) {
			continue
		}
		if !t.keeps(l) {
			net.RemoveLink(l.ID)
		}
	}
	stats.LinksCut = stats.LinksBefore - net.NumLinks()

	fmt.Fprintf(out, "done. (-%d links [-%.2f%%])\n",
		stats.LinksCut,
		100.0*float64(stats.LinksCut)/(float64(stats.LinksBefore)+0.001))

	stats.OrphansCut = OrphanNodeRemover{Out: t.Out}.Run(net)

	cleaner := t.Cleaner
	if cleaner.Out == nil {
		cleaner.Out = t.Out
	}
	if cleaner.Logger == nil {
		cleaner.Logger = t.Logger
	}
	stats.Clean = cleaner.Run(net)

	stats.LinksRemoved = stats.LinksBefore - net.NumLinks()
	stats.NodesRemoved = stats.NodesBefore - net.NumNodes()

	log.Info("network trimmed",
		"links_removed", stats.LinksRemoved,
		"nodes_removed", stats.NodesRemoved,
		"links", net.NumLinks(),
		"nodes", net.NumNodes())

	if net.NumLinks() == 0 {
		return stats, fmt.Errorf("%w: trimmed network is empty", errs.ErrDegenerateGeometry)
	}
	return stats, nil
}
