// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package area

import (
	"github.com/drt-scenarios/drtprep/network"
	"github.com/drt-scenarios/drtprep/population"
)

// Analysis summarizes demand and road supply of a service area.
type Analysis struct {
	AreaKm2           float64
	Demands           int
	DemandDensity     float64 // demands per km²
	NetworkLengthKm   float64
	NetworkDensity    float64 // km per km²
	CarLinksInService int
}

// Analyze measures pop and the car links of net whose to-node lies in s.
func Analyze(s *ServiceArea, net *network.Network, pop *population.Population) Analysis {
	res := Analysis{
		AreaKm2: s.Area() / 1e6,
		Demands: pop.Len(),
	}

	length := 0.0
	for _, l := range net.Links() {
		if !l.AllowsMode(network.ModeCar) {
			continue
		}
		if s.Contains(l.To.Coord) {
			length += l.Length
			res.CarLinksInService++
		}
	}
	res.NetworkLengthKm = length / 1000

	if res.AreaKm2 > 0 {
		res.DemandDensity = float64(res.Demands) / res.AreaKm2
		res.NetworkDensity = res.NetworkLengthKm / res.AreaKm2
	}
	return res
}
