// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package sampling down-samples demand populations reproducibly and
// converts trips of selected modes into DRT requests.
package sampling

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/drt-scenarios/drtprep/errs"
	"github.com/drt-scenarios/drtprep/population"
)

// Spec requests a sample of Fraction of the full demand from a population
// that currently holds Base of it.
type Spec struct {
	Fraction float64
	Base     float64
	Seed     int64
}

// Validate checks 0 < Fraction <= Base <= 1.
func (s Spec) Validate() error {
	if s.Base <= 0 || s.Base > 1 {
		return fmt.Errorf("%w: base fraction %v not in (0,1]", errs.ErrConfiguration, s.Base)
	}
	if s.Fraction <= 0 || s.Fraction > 1 {
		return fmt.Errorf("%w: sample fraction %v not in (0,1]", errs.ErrConfiguration, s.Fraction)
	}
	if s.Fraction > s.Base {
		return fmt.Errorf("%w: sample fraction %v exceeds base %v", errs.ErrConfiguration, s.Fraction, s.Base)
	}
	return nil
}

// ToRemove is the number of persons to drop from a population of n.
func (s Spec) ToRemove(n int) int {
	return int(math.Round((1 - s.Fraction/s.Base) * float64(n)))
}

// Sample removes persons from pop in place until it holds the requested
// fraction. Ids are shuffled in population order with a source seeded by
// s.Seed, the first ones are removed. Returns the number removed.
func Sample(pop *population.Population, s Spec) (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}

	ids := pop.IDs()
	toRemove := s.ToRemove(len(ids))

	rnd := rand.New(rand.NewSource(s.Seed))
	rnd.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	for _, id := range ids[:toRemove] {
		pop.Remove(id)
	}
	return toRemove, nil
}

// EmitFunc receives each sample of a chain. The population is reduced
// further after it returns.
type EmitFunc func(fraction float64, pop *population.Population) error

// Chain samples pop down to every fraction in descending order. Each step
// samples the result of the previous one, so the samples are nested.
// Fractions above the base are skipped with a warning.
func Chain(pop *population.Population, base float64, fractions []float64, seed int64, emit EmitFunc, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	fs := make([]float64, len(fractions))
	copy(fs, fractions)
	sort.Sort(sort.Reverse(sort.Float64Slice(fs)))

	for _, f := range fs {
		if f > base {
			log.Warn("sample larger than the available base sample, skipping", "sample", f, "base", base)
			continue
		}

		before := pop.Len()
		removed, err := Sample(pop, Spec{Fraction: f, Base: base, Seed: seed})
		if err != nil {
			return err
		}
		log.Info("population sampled", "sample", f, "base", base, "before", before, "removed", removed)

		base = f
		if err := emit(f, pop); err != nil {
			return err
		}
	}
	return nil
}

// FileName derives the output plans file name of a sample by replacing the
// "<base>pct" part of original, e.g. "x-10pct.plans.xml.gz" becomes
// "x-5pct-seed-4711.plans.xml.gz".
func FileName(original string, base, sample float64, seed int64) string {
	orig := fmt.Sprintf("%dpct", int(math.Round(base*100)))

	pct := math.Round(sample*100*1e6) / 1e6
	var repl string
	if pct == math.Trunc(pct) {
		repl = fmt.Sprintf("%dpct-seed-%d", int(pct), seed)
	} else {
		repl = fmt.Sprintf("%spct-seed-%d", strconv.FormatFloat(pct, 'f', -1, 64), seed)
	}

	return strings.Replace(original, orig, repl, -1)
}
