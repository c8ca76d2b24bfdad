// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package area holds the service area geometry and the containment test
// shared by the trimmer, the extractor and the analysis.
package area

import (
	"fmt"
	"math"
	"os"

	"github.com/drt-scenarios/drtprep/errs"
	"github.com/drt-scenarios/drtprep/network"
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ServiceArea is a validated planar (multi-)polygon. It is immutable after New.
type ServiceArea struct {
	geom  orb.MultiPolygon
	bound orb.Bound
	area  float64
}

// New validates geom and returns a service area for it.
func New(geom orb.MultiPolygon) (*ServiceArea, error) {
	if len(geom) == 0 {
		return nil, fmt.Errorf("%w: empty service area", errs.ErrConfiguration)
	}

	for i, poly := range geom {
		if len(poly) == 0 {
			return nil, fmt.Errorf("%w: polygon %d has no rings", errs.ErrConfiguration, i)
		}
		for j, ring := range poly {
			if len(ring) < 4 {
				return nil, fmt.Errorf("%w: polygon %d ring %d has %d points, need at least 4", errs.ErrConfiguration, i, j, len(ring))
			}
			if !ring.Closed() {
				return nil, fmt.Errorf("%w: polygon %d ring %d is not closed", errs.ErrConfiguration, i, j)
			}
			if math.Abs(planar.Area(ring)) == 0 {
				return nil, fmt.Errorf("%w: polygon %d ring %d has zero area", errs.ErrConfiguration, i, j)
			}
			if selfIntersects(ring) {
				return nil, fmt.Errorf("%w: polygon %d ring %d intersects itself", errs.ErrConfiguration, i, j)
			}
		}
	}

	a := 0.0
	for _, poly := range geom {
		a += math.Abs(planar.Area(poly))
	}

	return &ServiceArea{geom: geom, bound: geom.Bound(), area: a}, nil
}

// Load reads a GeoJSON FeatureCollection and merges all Polygon and
// MultiPolygon features into one service area. Other geometry types are
// ignored.
func Load(path string) (*ServiceArea, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrConfiguration, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrConfiguration, path, err)
	}

	mp := orb.MultiPolygon{}
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		switch {
		case f.Geometry.IsPolygon():
			mp = append(mp, toPolygon(f.Geometry.Polygon))
		case f.Geometry.IsMultiPolygon():
			for _, p := range f.Geometry.MultiPolygon {
				mp = append(mp, toPolygon(p))
			}
		}
	}

	sa, err := New(mp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sa, nil
}

func toPolygon(rings [][][]float64) orb.Polygon {
	poly := make(orb.Polygon, 0, len(rings))
	for _, r := range rings {
		ring := make(orb.Ring, 0, len(r))
		for _, p := range r {
			if len(p) < 2 {
				continue
			}
			ring = append(ring, orb.Point{p[0], p[1]})
		}
		poly = append(poly, ring)
	}
	return poly
}

// Contains reports whether c lies inside the area. Points on the
// boundary are contained, including the boundary of a hole.
func (s *ServiceArea) Contains(c network.Coord) bool {
	p := orb.Point{c.X, c.Y}
	if !s.bound.Contains(p) {
		return false
	}
	for _, poly := range s.geom {
		if polygonContains(poly, p) {
			return true
		}
	}
	return false
}

func polygonContains(poly orb.Polygon, p orb.Point) bool {
	if !planar.RingContains(poly[0], p) {
		return false
	}
	for _, hole := range poly[1:] {
		if !onRing(hole, p) && planar.RingContains(hole, p) {
			return false
		}
	}
	return true
}

func onRing(r orb.Ring, p orb.Point) bool {
	for i := 0; i+1 < len(r); i++ {
		if orient(r[i], r[i+1], p) == 0 && onSegment(r[i], r[i+1], p) {
			return true
		}
	}
	return false
}

// Area returns the area in squared CRS units.
func (s *ServiceArea) Area() float64 { return s.area }

// Geometry returns the underlying multi-polygon.
func (s *ServiceArea) Geometry() orb.MultiPolygon { return s.geom }

// selfIntersects checks every pair of non-adjacent ring edges.
func selfIntersects(r orb.Ring) bool {
	n := len(r) - 1
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if segmentsIntersect(r[i], r[i+1], r[j], r[j+1]) {
				return true
			}
		}
	}
	return false
}

func orient(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p orb.Point) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}

func segmentsIntersect(p1, p2, q1, q2 orb.Point) bool {
	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}
