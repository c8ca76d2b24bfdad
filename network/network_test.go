// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package network

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func triangle(t *testing.T) *Network {
	t.Helper()
	n := New()
	for _, nd := range []struct {
		id   string
		x, y float64
	}{{"a", 0, 0}, {"b", 100, 0}, {"c", 0, 100}} {
		if _, err := n.AddNode(nd.id, Coord{nd.x, nd.y}); err != nil {
			t.Fatal(err)
		}
	}
	links := []struct {
		id, from, to string
		speed        float64
		modes        []string
	}{
		{"ab", "a", "b", 13.9, []string{"car"}},
		{"bc", "b", "c", 5, []string{"pt", "car", "car"}},
		{"ca", "c", "a", 8.4, []string{"bike"}},
	}
	for _, l := range links {
		if _, err := n.AddLink(l.id, l.from, l.to, 100, l.speed, 600, 1, l.modes); err != nil {
			t.Fatal(err)
		}
	}
	return n
}

func TestAddLinkUnknownNode(t *testing.T) {
	n := triangle(t)
	if _, err := n.AddLink("x", "a", "zz", 1, 1, 1, 1, nil); err == nil {
		t.Error("expected error for unknown to node")
	}
	if _, err := n.AddNode("a", Coord{}); err == nil {
		t.Error("expected error for duplicate node")
	}
}

func TestModes(t *testing.T) {
	n := triangle(t)
	bc := n.Link("bc")
	if len(bc.Modes) != 2 {
		t.Fatalf("modes not deduplicated: %v", bc.Modes)
	}
	if !bc.AllowsMode("car") || !bc.AllowsMode("pt") || bc.AllowsMode("bike") {
		t.Errorf("unexpected mode set %v", bc.Modes)
	}
	if !n.Link("ca").AllowsAny(nil) {
		t.Error("empty mode filter should match every link")
	}
	if n.Link("ca").AllowsAny([]string{"car"}) {
		t.Error("bike link must not match car")
	}
}

func TestRemoveNodeDropsIncidentLinks(t *testing.T) {
	n := triangle(t)
	n.RemoveNode("b")

	if n.NumNodes() != 2 || n.NumLinks() != 1 {
		t.Fatalf("got %d nodes, %d links, want 2, 1", n.NumNodes(), n.NumLinks())
	}
	if n.Link("ca") == nil {
		t.Error("link ca should survive")
	}
	if d := n.Node("a").Degree(); d != 1 {
		t.Errorf("degree of a = %d, want 1", d)
	}

	// order is kept after removal and re-insertion
	n.AddNode("b", Coord{1, 1})
	ids := []string{}
	for _, nd := range n.Nodes() {
		ids = append(ids, nd.ID)
	}
	if strings.Join(ids, ",") != "a,c,b" {
		t.Errorf("node order = %v", ids)
	}
}

func TestSlowLinks(t *testing.T) {
	n := triangle(t)
	slow := SlowLinks(n, 8.4)
	if len(slow) != 1 || slow[0].ID != "bc" {
		t.Errorf("SlowLinks = %v, want [bc]", slow)
	}
}

func TestReadWrite(t *testing.T) {
	n := triangle(t)
	for _, name := range []string{"net.xml", "net.xml.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := WriteFile(path, n); err != nil {
				t.Fatal(err)
			}
			got, err := ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if got.NumNodes() != 3 || got.NumLinks() != 3 {
				t.Fatalf("got %d nodes, %d links", got.NumNodes(), got.NumLinks())
			}
			bc := got.Link("bc")
			if bc.From.ID != "b" || bc.To.ID != "c" || bc.FreeSpeed != 5 || !bc.AllowsMode("pt") {
				t.Errorf("link bc not preserved: %+v", bc)
			}
			if got.Node("b").Coord != (Coord{100, 0}) {
				t.Errorf("node b coord = %v", got.Node("b").Coord)
			}
		})
	}
}

func TestReadMatsimNetwork(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE network SYSTEM "http://www.matsim.org/files/dtd/network_v2.dtd">
<network name="test">
	<nodes>
		<node id="1" x="0.0" y="0.0" />
		<node id="2" x="1000.0" y="0.0" />
	</nodes>
	<links capperiod="01:00:00" effectivecellsize="7.5" effectivelanewidth="3.75">
		<link id="1_2" from="1" to="2" length="1000.0" freespeed="27.78" capacity="3600.0" permlanes="2.0" oneway="1" modes="car,ride" />
	</links>
</network>`
	n, err := Read(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	l := n.Link("1_2")
	if l == nil || l.Lanes != 2 || !l.AllowsMode("ride") || n.Name != "test" {
		t.Errorf("unexpected link %+v", l)
	}

	var buf bytes.Buffer
	if err := Write(&buf, n); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `modes="car,ride"`) {
		t.Errorf("modes not written: %s", buf.String())
	}
}
