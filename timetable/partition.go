// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package timetable

import (
	"fmt"
	"math"

	"github.com/drt-scenarios/drtprep/errs"
	"golang.org/x/exp/slices"
)

// Class is a route class: a set of route labels and the probability that
// a trip is synchronized to this class. A class without routes collects
// all labels no other class names.
type Class struct {
	Name   string   `yaml:"name" validate:"required"`
	Routes []string `yaml:"routes"`
	Share  float64  `yaml:"share" validate:"gte=0,lte=1"`
}

// ClassPartition is an ordered, closed set of route classes whose shares
// sum to one.
type ClassPartition []Class

// DefaultPartition is the RE5 line against all other services, 50/50.
func DefaultPartition() ClassPartition {
	return ClassPartition{
		{Name: "primary", Routes: []string{"RE5"}, Share: 0.5},
		{Name: "other", Share: 0.5},
	}
}

// Validate checks names, shares and the catch-all class.
func (p ClassPartition) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: no route classes", errs.ErrConfiguration)
	}

	sum := 0.0
	names := make(map[string]bool, len(p))
	catchAll := 0
	for _, c := range p {
		if c.Name == "" {
			return fmt.Errorf("%w: route class without name", errs.ErrConfiguration)
		}
		if names[c.Name] {
			return fmt.Errorf("%w: duplicate route class %q", errs.ErrConfiguration, c.Name)
		}
		names[c.Name] = true
		if c.Share < 0 || c.Share > 1 {
			return fmt.Errorf("%w: share %v of route class %q out of [0,1]", errs.ErrConfiguration, c.Share, c.Name)
		}
		if len(c.Routes) == 0 {
			catchAll++
		}
		sum += c.Share
	}
	if catchAll > 1 {
		return fmt.Errorf("%w: more than one route class without routes", errs.ErrConfiguration)
	}
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("%w: route class shares sum to %v, not 1", errs.ErrConfiguration, sum)
	}
	return nil
}

// Pick maps a uniform draw u in [0,1) to a class by cumulative share.
func (p ClassPartition) Pick(u float64) string {
	cum := 0.0
	last := ""
	for _, c := range p {
		if c.Share <= 0 {
			continue
		}
		cum += c.Share
		last = c.Name
		if u < cum {
			return c.Name
		}
	}
	// rounding of the share sum
	return last
}

// ClassOf returns the class a route label belongs to, or "" if no class
// takes it.
func (p ClassPartition) ClassOf(route string) string {
	catchAll := ""
	for _, c := range p {
		if len(c.Routes) == 0 {
			catchAll = c.Name
			continue
		}
		if slices.Contains(c.Routes, route) {
			return c.Name
		}
	}
	return catchAll
}
