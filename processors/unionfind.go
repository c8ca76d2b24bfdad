// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package processors

// UnionFind over the dense keys 0..n-1.
type UnionFind struct {
	parent  []int
	rank    []int
	size    []int
	numSets int
}

func NewUnionFind(n int) *UnionFind {
	uf := &UnionFind{
		parent:  make([]int, n),
		rank:    make([]int, n),
		size:    make([]int, n),
		numSets: n,
	}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *UnionFind) FindSet(i int) int {
	root := i
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[i] != root {
		i, uf.parent[i] = uf.parent[i], root
	}
	return root
}

func (uf *UnionFind) IsSameSet(i, j int) bool {
	return uf.FindSet(i) == uf.FindSet(j)
}

func (uf *UnionFind) UnionSet(x, y int) {
	xRoot := uf.FindSet(x)
	yRoot := uf.FindSet(y)

	if xRoot == yRoot {
		return
	}

	uf.numSets--

	if uf.rank[xRoot] > uf.rank[yRoot] {
		uf.parent[yRoot] = xRoot
		uf.size[xRoot] += uf.size[yRoot]
	} else {
		uf.parent[xRoot] = yRoot
		uf.size[yRoot] += uf.size[xRoot]
		if uf.rank[xRoot] == uf.rank[yRoot] {
			uf.rank[yRoot]++
		}
	}
}

func (uf *UnionFind) NumDisjointSets() int {
	return uf.numSets
}

func (uf *UnionFind) SizeOfSet(i int) int {
	return uf.size[uf.FindSet(i)]
}
