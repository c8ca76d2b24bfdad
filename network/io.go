// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package network

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/drt-scenarios/drtprep/codec"
)

const networkDocType = `<!DOCTYPE network SYSTEM "http://www.matsim.org/files/dtd/network_v2.dtd">` + "\n"

type xmlNetwork struct {
	XMLName xml.Name  `xml:"network"`
	Name    string    `xml:"name,attr,omitempty"`
	Nodes   []xmlNode `xml:"nodes>node"`
	Links   xmlLinks  `xml:"links"`
}

type xmlNode struct {
	ID string  `xml:"id,attr"`
	X  float64 `xml:"x,attr"`
	Y  float64 `xml:"y,attr"`
}

type xmlLinks struct {
	CapPeriod string    `xml:"capperiod,attr,omitempty"`
	Links     []xmlLink `xml:"link"`
}

type xmlLink struct {
	ID        string  `xml:"id,attr"`
	From      string  `xml:"from,attr"`
	To        string  `xml:"to,attr"`
	Length    float64 `xml:"length,attr"`
	FreeSpeed float64 `xml:"freespeed,attr"`
	Capacity  float64 `xml:"capacity,attr"`
	PermLanes float64 `xml:"permlanes,attr"`
	Oneway    string  `xml:"oneway,attr,omitempty"`
	Modes     string  `xml:"modes,attr"`
}

// Read decodes a network XML document.
func Read(r io.Reader) (*Network, error) {
	var doc xmlNetwork
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode network: %w", err)
	}

	n := New()
	n.Name = doc.Name
	n.CapPeriod = doc.Links.CapPeriod

	for _, xn := range doc.Nodes {
		if _, err := n.AddNode(xn.ID, Coord{X: xn.X, Y: xn.Y}); err != nil {
			return nil, err
		}
	}
	for _, xl := range doc.Links.Links {
		modes := strings.Split(xl.Modes, ",")
		for i := range modes {
			modes[i] = strings.TrimSpace(modes[i])
		}
		if _, err := n.AddLink(xl.ID, xl.From, xl.To, xl.Length, xl.FreeSpeed, xl.Capacity, xl.PermLanes, modes); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Write encodes n as a network XML document.
func Write(w io.Writer, n *Network) error {
	doc := xmlNetwork{Name: n.Name}
	doc.Links.CapPeriod = n.CapPeriod
	if doc.Links.CapPeriod == "" {
		doc.Links.CapPeriod = "01:00:00"
	}
	for _, node := range n.Nodes() {
		doc.Nodes = append(doc.Nodes, xmlNode{ID: node.ID, X: node.Coord.X, Y: node.Coord.Y})
	}
	for _, l := range n.Links() {
		doc.Links.Links = append(doc.Links.Links, xmlLink{
			ID:        l.ID,
			From:      l.From.ID,
			To:        l.To.ID,
			Length:    l.Length,
			FreeSpeed: l.FreeSpeed,
			Capacity:  l.Capacity,
			PermLanes: l.Lanes,
			Oneway:    "1",
			Modes:     strings.Join(l.Modes, ","),
		})
	}

	if _, err := io.WriteString(w, xml.Header+networkDocType); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode network: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ReadFile reads a (possibly gzipped) network file.
func ReadFile(path string) (*Network, error) {
	r, err := codec.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Read(r)
}

// WriteFile writes n to path, gzipped if path ends in .gz.
func WriteFile(path string, n *Network) error {
	w, err := codec.Create(path)
	if err != nil {
		return err
	}
	if err := Write(w, n); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
