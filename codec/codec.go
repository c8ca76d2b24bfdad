// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package codec opens input and output files, transparently handling
// gzip compression for paths ending in ".gz".
package codec

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open returns a reader for path, decompressing if the name ends in .gz.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gzip %s: %w", path, err)
	}
	return &readCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
}

type writeCloser struct {
	io.Writer
	flush   func() error
	closers []io.Closer
}

func (w *writeCloser) Close() error {
	first := w.flush()
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Create truncates or creates path and returns a buffered writer, gzip
// compressed if the name ends in .gz. Close must be called to flush.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		bw := bufio.NewWriter(f)
		return &writeCloser{Writer: bw, flush: bw.Flush, closers: []io.Closer{f}}, nil
	}
	zw := gzip.NewWriter(f)
	bw := bufio.NewWriter(zw)
	return &writeCloser{Writer: bw, flush: bw.Flush, closers: []io.Closer{zw, f}}, nil
}
