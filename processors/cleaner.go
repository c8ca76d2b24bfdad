// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package processors

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/drt-scenarios/drtprep/network"
)

// NetworkCleaner reduces a network to its largest strongly connected
// component over the links carrying Modes (nil: all links). With Modes set,
// links of other modes and nodes reached only through them are kept, so
// strong connectivity holds for the Modes subgraph only, not for the whole
// network.
type NetworkCleaner struct {
	Modes  []string
	Out    io.Writer
	Logger *slog.Logger
}

// CleanStats reports what a NetworkCleaner run removed.
type CleanStats struct {
	Components   int
	LargestNodes int
	LinksRemoved int
	NodesRemoved int
}

// Run this NetworkCleaner on some network
func (c NetworkCleaner) Run(net *network.Network) CleanStats {
	out := writer(c.Out)
	log := logger(c.Logger)

	fmt.Fprintf(out, "Removing links outside the largest strongly connected component...")

	befLinks := net.NumLinks()
	nodes := net.Nodes()
	comps := c.components(net, nodes)

	largest := -1
	for i := range nodes {
		if largest < 0 || comps.SizeOfSet(i) > comps.SizeOfSet(largest) {
			largest = i
		}
	}

	stats := CleanStats{Components: comps.NumDisjointSets()}
	if largest >= 0 {
		stats.LargestNodes = comps.SizeOfSet(largest)
	}

	inLargest := make(map[*network.Node]bool, stats.LargestNodes)
	for i, n := range nodes {
		if comps.IsSameSet(i, largest) {
			inLargest[n] = true
		}
	}

	for _, l := range net.Links() {
		if !l.AllowsAny(c.Modes) {
			continue
		}
		if !inLargest[l.From] || !inLargest[l.To] {
			net.RemoveLink(l.ID)
		}
	}
	stats.LinksRemoved = befLinks - net.NumLinks()

	fmt.Fprintf(out, "done. (-%d links [-%.2f%%])\n",
		stats.LinksRemoved,
		100.0*float64(stats.LinksRemoved)/(float64(befLinks)+0.001))

	stats.NodesRemoved = OrphanNodeRemover{Out: c.Out}.Run(net)

	log.Info("network cleaned",
		"components", stats.Components,
		"largest", stats.LargestNodes,
		"links_removed", stats.LinksRemoved,
		"nodes_removed", stats.NodesRemoved)

	return stats
}

// components computes the strongly connected components (Kosaraju) of
// the graph formed by nodes and the links carrying c.Modes. Node i of
// nodes is key i of the returned partition.
func (c NetworkCleaner) components(net *network.Network, nodes []*network.Node) *UnionFind {
	idx := make(map[*network.Node]int, len(nodes))
	for i, n := range nodes {
		idx[n] = i
	}

	fwd := make([][]int, len(nodes))
	bwd := make([][]int, len(nodes))
	for _, l := range net.Links() {
		if !l.AllowsAny(c.Modes) {
			continue
		}
		from, to := idx[l.From], idx[l.To]
		fwd[from] = append(fwd[from], to)
		bwd[to] = append(bwd[to], from)
	}

	// first pass: nodes in order of DFS completion
	order := make([]int, 0, len(nodes))
	visited := make([]bool, len(nodes))
	type frame struct{ v, next int }
	stack := make([]frame, 0)

	for s := range nodes {
		if visited[s] {
			continue
		}
		visited[s] = true
		stack = append(stack, frame{v: s})
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(fwd[top.v]) {
				w := fwd[top.v][top.next]
				top.next++
				if !visited[w] {
					visited[w] = true
					stack = append(stack, frame{v: w})
				}
				continue
			}
			order = append(order, top.v)
			stack = stack[:len(stack)-1]
		}
	}

	// second pass: reverse graph in reverse completion order
	uf := NewUnionFind(len(nodes))
	assigned := make([]bool, len(nodes))
	todo := make([]int, 0)

	for i := len(order) - 1; i >= 0; i-- {
		root := order[i]
		if assigned[root] {
			continue
		}
		assigned[root] = true
		todo = append(todo[:0], root)
		for len(todo) > 0 {
			v := todo[len(todo)-1]
			todo = todo[:len(todo)-1]
			for _, w := range bwd[v] {
				if !assigned[w] {
					assigned[w] = true
					uf.UnionSet(root, w)
					todo = append(todo, w)
				}
			}
		}
	}

	return uf
}
