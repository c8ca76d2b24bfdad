// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package processors holds the in-place network and population passes of
// the pipeline. Every processor prints a one line progress summary.
package processors

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/drt-scenarios/drtprep/network"
)

// OrphanNodeRemover removes nodes without incident links
type OrphanNodeRemover struct {
	Out io.Writer
}

// Run this OrphanNodeRemover on some network, returns the number of
// removed nodes
func (o OrphanNodeRemover) Run(net *network.Network) int {
	out := writer(o.Out)
	fmt.Fprintf(out, "Removing orphan nodes...")

	bef := net.NumNodes()

	for _, n := range net.Nodes() {
		if n.Degree() == 0 {
			net.RemoveNode(n.ID)
		}
	}

	removed := bef - net.NumNodes()
	fmt.Fprintf(out, "done. (-%d nodes [-%.2f%%])\n",
		removed,
		100.0*float64(removed)/(float64(bef)+0.001))

	return removed
}

func writer(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
