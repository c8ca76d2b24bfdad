// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package spatial finds network links near a coordinate. Distances are
// measured to the link's to-node.
package spatial

import (
	"fmt"

	"github.com/drt-scenarios/drtprep/errs"
	"github.com/drt-scenarios/drtprep/network"
	"golang.org/x/exp/slices"
)

// ErrNoCandidates is returned for a query on an empty candidate set.
var ErrNoCandidates = fmt.Errorf("%w: no candidate links", errs.ErrLookup)

// Nearest returns the candidate whose to-node is closest to c, together
// with its position in candidates. Ties go to the earlier candidate.
func Nearest(c network.Coord, candidates []*network.Link) (*network.Link, int, error) {
	if len(candidates) == 0 {
		return nil, -1, ErrNoCandidates
	}

	best := -1
	bestD := 0.0
	for i, l := range candidates {
		d := dist2(c.X, c.Y, l.To.Coord.X, l.To.Coord.Y)
		if best < 0 || d < bestD {
			best, bestD = i, d
		}
	}
	return candidates[best], best, nil
}

// Index is a KD-tree over a fixed candidate set. Its answers are those of
// Nearest on the same candidates, tie breaking included.
type Index struct {
	root       *Node[*network.Link]
	candidates []*network.Link
}

// NewIndex builds an index over candidates. The slice is not modified.
func NewIndex(candidates []*network.Link) *Index {
	pts := make([]Point[*network.Link], len(candidates))
	for i, l := range candidates {
		pts[i] = Point[*network.Link]{X: l.To.Coord.X, Y: l.To.Coord.Y, Data: l, Seq: i}
	}
	return &Index{
		root:       BuildKDTree(pts, 0),
		candidates: candidates,
	}
}

// Len returns the number of indexed candidates.
func (idx *Index) Len() int { return len(idx.candidates) }

// Candidates returns the indexed links in their original order.
func (idx *Index) Candidates() []*network.Link { return idx.candidates }

// Nearest returns the indexed link closest to c and its candidate position.
func (idx *Index) Nearest(c network.Coord) (*network.Link, int, error) {
	if idx.root == nil {
		return nil, -1, ErrNoCandidates
	}

	var best *Point[*network.Link]
	bestD := 0.0
	SearchNearest(idx.root, c.X, c.Y, &best, &bestD)
	return best.Data, best.Seq, nil
}

// Within returns the candidate positions of all links whose to-node is at
// most radius away from c, in ascending order.
func (idx *Index) Within(c network.Coord, radius float64) []int {
	res := make([]Point[*network.Link], 0)
	SearchRange(idx.root, c.X, c.Y, radius, &res)

	seqs := make([]int, len(res))
	for i, p := range res {
		seqs[i] = p.Seq
	}
	slices.Sort(seqs)
	return seqs
}
