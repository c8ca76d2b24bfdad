// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package network holds the road network model: nodes with planar
// coordinates and directed links with a set of allowed modes.
package network

import (
	"fmt"
	"math"

	"golang.org/x/exp/slices"
)

// ModeCar is the car-equivalent mode, the only one the trimmer prunes.
const ModeCar = "car"

// Coord is a planar coordinate in the network's projected CRS.
type Coord struct {
	X, Y float64
}

// Dist returns the Euclidean distance between two coordinates.
func (c Coord) Dist(o Coord) float64 {
	return math.Hypot(c.X-o.X, c.Y-o.Y)
}

// Node is a network vertex.
type Node struct {
	ID    string
	Coord Coord

	in  []*Link
	out []*Link
}

// InLinks returns the links ending at n.
func (n *Node) InLinks() []*Link { return n.in }

// OutLinks returns the links starting at n.
func (n *Node) OutLinks() []*Link { return n.out }

// Degree is the number of incident links, in and out.
func (n *Node) Degree() int { return len(n.in) + len(n.out) }

// Link is a directed network edge.
type Link struct {
	ID        string
	From      *Node
	To        *Node
	Length    float64 // meters
	FreeSpeed float64 // meters per second
	Capacity  float64 // vehicles per capacity period
	Lanes     float64
	Modes     []string // sorted, no duplicates
}

// AllowsMode reports whether mode is in the link's mode set.
func (l *Link) AllowsMode(mode string) bool {
	_, ok := slices.BinarySearch(l.Modes, mode)
	return ok
}

// AllowsAny reports whether the link carries at least one of modes.
// An empty modes list matches every link.
func (l *Link) AllowsAny(modes []string) bool {
	if len(modes) == 0 {
		return true
	}
	for _, m := range modes {
		if l.AllowsMode(m) {
			return true
		}
	}
	return false
}

// SetModes normalizes and stores the mode set.
func (l *Link) SetModes(modes []string) {
	ms := make([]string, 0, len(modes))
	for _, m := range modes {
		if m != "" {
			ms = append(ms, m)
		}
	}
	slices.Sort(ms)
	l.Modes = slices.Compact(ms)
}

// Network is a directed graph of nodes and links. Iteration order of
// Nodes and Links is insertion order.
type Network struct {
	Name      string
	CapPeriod string

	nodes     map[string]*Node
	links     map[string]*Link
	nodeOrder []string
	linkOrder []string
}

// New returns an empty network.
func New() *Network {
	return &Network{
		nodes: make(map[string]*Node),
		links: make(map[string]*Link),
	}
}

// AddNode adds a node. Node ids must be unique.
func (n *Network) AddNode(id string, c Coord) (*Node, error) {
	if _, ok := n.nodes[id]; ok {
		return nil, fmt.Errorf("duplicate node %q", id)
	}
	n.compact()
	node := &Node{ID: id, Coord: c}
	n.nodes[id] = node
	n.nodeOrder = append(n.nodeOrder, id)
	return node, nil
}

// AddLink adds a link between two existing nodes.
func (n *Network) AddLink(id, from, to string, length, freeSpeed, capacity, lanes float64, modes []string) (*Link, error) {
	if _, ok := n.links[id]; ok {
		return nil, fmt.Errorf("duplicate link %q", id)
	}
	n.compact()
	fromNode, ok := n.nodes[from]
	if !ok {
		return nil, fmt.Errorf("link %q: unknown from node %q", id, from)
	}
	toNode, ok := n.nodes[to]
	if !ok {
		return nil, fmt.Errorf("link %q: unknown to node %q", id, to)
	}
	l := &Link{
		ID:        id,
		From:      fromNode,
		To:        toNode,
		Length:    length,
		FreeSpeed: freeSpeed,
		Capacity:  capacity,
		Lanes:     lanes,
	}
	l.SetModes(modes)
	fromNode.out = append(fromNode.out, l)
	toNode.in = append(toNode.in, l)
	n.links[id] = l
	n.linkOrder = append(n.linkOrder, id)
	return l, nil
}

// Node returns the node with the given id, or nil.
func (n *Network) Node(id string) *Node { return n.nodes[id] }

// Link returns the link with the given id, or nil.
func (n *Network) Link(id string) *Link { return n.links[id] }

// NumNodes returns the number of nodes.
func (n *Network) NumNodes() int { return len(n.nodes) }

// NumLinks returns the number of links.
func (n *Network) NumLinks() int { return len(n.links) }

// Nodes returns all nodes in insertion order.
func (n *Network) Nodes() []*Node {
	n.compact()
	ret := make([]*Node, len(n.nodeOrder))
	for i, id := range n.nodeOrder {
		ret[i] = n.nodes[id]
	}
	return ret
}

// Links returns all links in insertion order.
func (n *Network) Links() []*Link {
	n.compact()
	ret := make([]*Link, len(n.linkOrder))
	for i, id := range n.linkOrder {
		ret[i] = n.links[id]
	}
	return ret
}

// RemoveLink deletes a link and detaches it from its end nodes.
func (n *Network) RemoveLink(id string) bool {
	l, ok := n.links[id]
	if !ok {
		return false
	}
	l.From.out = removeFrom(l.From.out, l)
	l.To.in = removeFrom(l.To.in, l)
	delete(n.links, id)
	return true
}

// RemoveNode deletes a node together with all incident links.
func (n *Network) RemoveNode(id string) bool {
	node, ok := n.nodes[id]
	if !ok {
		return false
	}
	for len(node.out) > 0 {
		n.RemoveLink(node.out[0].ID)
	}
	for len(node.in) > 0 {
		n.RemoveLink(node.in[0].ID)
	}
	delete(n.nodes, id)
	return true
}

// Clone returns a deep copy of the network.
func (n *Network) Clone() *Network {
	c := New()
	c.Name = n.Name
	c.CapPeriod = n.CapPeriod
	for _, node := range n.Nodes() {
		c.AddNode(node.ID, node.Coord)
	}
	for _, l := range n.Links() {
		c.AddLink(l.ID, l.From.ID, l.To.ID, l.Length, l.FreeSpeed, l.Capacity, l.Lanes, l.Modes)
	}
	return c
}

// SlowLinks returns the links whose free-flow speed is strictly below
// maxSpeed, in network order. Low speed roads are the local streets of
// the populated area, which makes them suitable to snap trip endpoints to.
func SlowLinks(n *Network, maxSpeed float64) []*Link {
	ret := make([]*Link, 0)
	for _, l := range n.Links() {
		if l.FreeSpeed < maxSpeed {
			ret = append(ret, l)
		}
	}
	return ret
}

// compact drops ids of removed entities from the order slices.
func (n *Network) compact() {
	if len(n.nodeOrder) != len(n.nodes) {
		ids := n.nodeOrder[:0]
		for _, id := range n.nodeOrder {
			if _, ok := n.nodes[id]; ok {
				ids = append(ids, id)
			}
		}
		n.nodeOrder = ids
	}
	if len(n.linkOrder) != len(n.links) {
		ids := n.linkOrder[:0]
		for _, id := range n.linkOrder {
			if _, ok := n.links[id]; ok {
				ids = append(ids, id)
			}
		}
		n.linkOrder = ids
	}
}

func removeFrom(ls []*Link, l *Link) []*Link {
	for i, x := range ls {
		if x == l {
			return append(ls[:i], ls[i+1:]...)
		}
	}
	return ls
}
