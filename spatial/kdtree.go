// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package spatial

import (
	"sort"
)

// Point holds planar x/y and a generic payload of type T. Seq is the
// position of the point in the input slice and breaks distance ties.
type Point[T any] struct {
	X, Y float64
	Data T
	Seq  int
}

// Node in a KD-tree
type Node[T any] struct {
	Point Point[T]
	Left  *Node[T]
	Right *Node[T]
	Axis  int // 0 = x, 1 = y
}

// BuildKDTree builds a balanced KD-tree from points slice. The slice is
// reordered.
func BuildKDTree[T any](points []Point[T], depth int) *Node[T] {
	if len(points) == 0 {
		return nil
	}

	axis := depth % 2

	sort.SliceStable(points, func(i, j int) bool {
		if axis == 0 {
			return points[i].X < points[j].X
		}
		return points[i].Y < points[j].Y
	})

	median := len(points) / 2

	node := &Node[T]{
		Point: points[median],
		Axis:  axis,
	}

	node.Left = BuildKDTree(points[:median], depth+1)
	node.Right = BuildKDTree(points[median+1:], depth+1)

	return node
}

func dist2(ax, ay, bx, by float64) float64 {
	dx, dy := ax-bx, ay-by
	return dx*dx + dy*dy
}

func coord[T any](p Point[T], axis int) float64 {
	if axis == 0 {
		return p.X
	}
	return p.Y
}

// SearchNearest descends into node and updates best (and its squared
// distance bestD) whenever a point is closer, or equally close with a
// smaller Seq.
func SearchNearest[T any](node *Node[T], x, y float64, best **Point[T], bestD *float64) {
	if node == nil {
		return
	}

	d := dist2(x, y, node.Point.X, node.Point.Y)
	if *best == nil || d < *bestD || (d == *bestD && node.Point.Seq < (*best).Seq) {
		p := node.Point
		*best = &p
		*bestD = d
	}

	q := x
	if node.Axis == 1 {
		q = y
	}
	diff := q - coord(node.Point, node.Axis)

	near, far := node.Left, node.Right
	if diff >= 0 {
		near, far = node.Right, node.Left
	}

	SearchNearest(near, x, y, best, bestD)

	// equal distances must be visited too, for the Seq tie break
	if diff*diff <= *bestD {
		SearchNearest(far, x, y, best, bestD)
	}
}

// SearchRange appends all points within radius of (x, y) to results.
func SearchRange[T any](node *Node[T], x, y, radius float64, results *[]Point[T]) {
	if node == nil {
		return
	}

	if dist2(x, y, node.Point.X, node.Point.Y) <= radius*radius {
		*results = append(*results, node.Point)
	}

	q := x
	if node.Axis == 1 {
		q = y
	}
	nodeCoord := coord(node.Point, node.Axis)

	// Search left subtree if it may contain points within radius
	if q-radius <= nodeCoord {
		SearchRange(node.Left, x, y, radius, results)
	}
	// Search right subtree if it may contain points within radius
	if q+radius >= nodeCoord {
		SearchRange(node.Right, x, y, radius, results)
	}
}
