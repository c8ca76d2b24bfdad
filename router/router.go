// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package router estimates link to link travel times on an empty network.
package router

import (
	"container/heap"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/bluele/gcache"
	"github.com/drt-scenarios/drtprep/network"
)

// ErrUnreachable is returned when no path connects two links.
var ErrUnreachable = errors.New("destination unreachable")

// DefaultCacheSize is the number of shortest path trees kept.
const DefaultCacheSize = 256

// Router computes free speed travel times over the links carrying Mode.
// Shortest path trees are cached per source node. The network must not be
// modified while a Router is in use.
type Router struct {
	net   *network.Network
	mode  string
	cache gcache.Cache
	log   *slog.Logger
}

// New returns a router over the links of net allowing mode. An empty mode
// routes over all links.
func New(net *network.Network, mode string, cacheSize int, log *slog.Logger) *Router {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		net:   net,
		mode:  mode,
		cache: gcache.New(cacheSize).LRU().Build(),
		log:   log,
	}
}

// LinkTime is the free speed travel time of l in whole seconds plus one.
func LinkTime(l *network.Link) float64 {
	return math.Floor(l.Length/l.FreeSpeed) + 1
}

func (r *Router) usable(l *network.Link) bool {
	if l.FreeSpeed <= 0 {
		return false
	}
	return r.mode == "" || l.AllowsMode(r.mode)
}

// TravelTime returns the time from the end of from to the end of to. The
// departure time is ignored on an uncongested network.
func (r *Router) TravelTime(from, to *network.Link, departure float64) (float64, error) {
	if from == to {
		return 0, nil
	}

	tree, err := r.tree(from.To)
	if err != nil {
		return 0, err
	}

	d, ok := tree[to.From.ID]
	if !ok {
		return 0, fmt.Errorf("%w: %s to %s", ErrUnreachable, from.ID, to.ID)
	}
	return d + LinkTime(to), nil
}

// CacheStats returns the number of tree cache hits and misses.
func (r *Router) CacheStats() (hits, misses uint64) {
	return r.cache.HitCount(), r.cache.MissCount()
}

func (r *Router) tree(src *network.Node) (map[string]float64, error) {
	v, err := r.cache.Get(src.ID)
	if err == nil {
		return v.(map[string]float64), nil
	}
	if !errors.Is(err, gcache.KeyNotFoundError) {
		return nil, err
	}

	tree := r.dijkstra(src)
	if err := r.cache.Set(src.ID, tree); err != nil {
		return nil, err
	}
	r.log.Debug("shortest path tree built", "source", src.ID, "reached", len(tree))
	return tree, nil
}

type item struct {
	node *network.Node
	dist float64
}

type nodeHeap []item

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	return h[i].dist < h[j].dist
}
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(item)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// dijkstra returns the travel time from src to every reachable node.
func (r *Router) dijkstra(src *network.Node) map[string]float64 {
	dist := map[string]float64{src.ID: 0}
	done := make(map[string]bool)

	h := &nodeHeap{{node: src}}
	heap.Init(h)

	for h.Len() > 0 {
		cur := heap.Pop(h).(item)
		if done[cur.node.ID] {
			continue
		}
		done[cur.node.ID] = true

		for _, l := range cur.node.OutLinks() {
			if !r.usable(l) {
				continue
			}
			d := cur.dist + LinkTime(l)
			if old, ok := dist[l.To.ID]; ok && old <= d {
				continue
			}
			dist[l.To.ID] = d
			heap.Push(h, item{node: l.To, dist: d})
		}
	}

	return dist
}
