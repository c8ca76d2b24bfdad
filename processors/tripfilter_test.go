// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package processors

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/drt-scenarios/drtprep/errs"
	"github.com/drt-scenarios/drtprep/network"
	"github.com/drt-scenarios/drtprep/population"
	"github.com/drt-scenarios/drtprep/spatial"
)

func act(typ, link string, x, y float64, end float64) *population.Activity {
	a := &population.Activity{Type: typ, Link: link, Coord: &network.Coord{X: x, Y: y}}
	if end >= 0 {
		a.EndTime = &end
	}
	return a
}

func tripPopulation() *population.Population {
	pop := population.New()
	add := func(id string, els ...population.Element) {
		pop.Add(&population.Person{ID: id, Plans: []*population.Plan{{Selected: true, Elements: els}}})
	}

	add("p1", act("home", "l1", 100, 100, 28800), &population.Leg{Mode: "walk"},
		act("pt interaction", "l7", 150, 100, -1), &population.Leg{Mode: "car"},
		act("work", "l2", 900, 900, 61200), &population.Leg{Mode: "car"},
		act("home", "l1", 100, 100, -1))
	add("p2", act("home", "l1", 100, 100, 1800), &population.Leg{Mode: "car"}, act("work", "l2", 900, 900, -1))
	add("p3", act("home", "l1", 100, 100, 32400), &population.Leg{Mode: "walk"}, act("shop", "l3", 200, 100, -1))
	add("p4", act("home", "l1", 100, 100, 36000), &population.Leg{Mode: "pt"}, act("visit", "l4", 5000, 5000, -1))
	add("p5", &population.Activity{Type: "home", Link: "l1"}, &population.Leg{Mode: "car"}, &population.Activity{Type: "work", Link: "l2"})
	return pop
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTripFilter(t *testing.T) {
	pop := tripPopulation()
	f := TripFilter{
		Area:        testArea(t, 0, 0, 1000),
		Start:       3600,
		End:         86400,
		MinDistance: 500,
		Out:         io.Discard,
		Logger:      quiet(),
	}

	res, err := f.Run(pop)
	if err != nil {
		t.Fatal(err)
	}

	// p1 contributes both of its trips
	if got := strings.Join(res.IDs(), ","); got != "drt_person_0,drt_person_1" {
		t.Fatalf("ids = %s", got)
	}
	plan := res.Get("drt_person_0").SelectedPlan()
	orig := plan.Elements[0].(*population.Activity)
	if orig.Link != "l1" || *orig.EndTime != 28800 || plan.Elements[2].(*population.Activity).Link != "l2" {
		t.Errorf("unexpected plan %+v", plan.Elements)
	}
	if m := plan.Elements[1].(*population.Leg).Mode; m != "car" {
		t.Errorf("mode = %s, want main mode car", m)
	}
	if back := res.Get("drt_person_1").SelectedPlan().Elements[0].(*population.Activity); *back.EndTime != 61200 {
		t.Errorf("return trip end time = %v", *back.EndTime)
	}

	if pop.Len() != 5 {
		t.Error("input population was modified")
	}
}

func TestTripFilterWithoutArea(t *testing.T) {
	f := TripFilter{Start: 3600, End: 86400, MinDistance: 500, Out: io.Discard, Logger: quiet(), Prefix: "t"}
	res, err := f.Run(tripPopulation())
	if err != nil {
		t.Fatal(err)
	}
	if res.Len() != 3 || res.Get("t2") == nil {
		t.Errorf("got %v, want three trips", res.IDs())
	}
}

func TestTripFilterSnap(t *testing.T) {
	net := network.New()
	net.AddNode("o", network.Coord{X: 0, Y: 0})
	net.AddNode("n1", network.Coord{X: 120, Y: 90})
	net.AddNode("n2", network.Coord{X: 880, Y: 910})
	net.AddLink("s1", "o", "n1", 100, 5, 600, 1, []string{"car"})
	net.AddLink("s2", "o", "n2", 100, 5, 600, 1, []string{"car"})

	f := TripFilter{
		Area:        testArea(t, 0, 0, 1000),
		Start:       3600,
		End:         30000,
		MinDistance: 500,
		Snap:        spatial.NewIndex(net.Links()),
		Out:         io.Discard,
		Logger:      quiet(),
	}
	res, err := f.Run(tripPopulation())
	if err != nil {
		t.Fatal(err)
	}
	if res.Len() != 1 {
		t.Fatalf("got %v, want one trip", res.IDs())
	}
	plan := res.Persons()[0].SelectedPlan()
	if plan.Elements[0].(*population.Activity).Link != "s1" || plan.Elements[2].(*population.Activity).Link != "s2" {
		t.Errorf("trip not snapped: %+v %+v", plan.Elements[0], plan.Elements[2])
	}
}

func TestTripFilterWindow(t *testing.T) {
	_, err := TripFilter{Start: 5000, End: 5000, Out: io.Discard, Logger: quiet()}.Run(population.New())
	if !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("got %v, want configuration error", err)
	}
}
