// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package population

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestTimes(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		bad  bool
	}{
		{"08:00:00", 28800, false},
		{"8:05:30", 29130, false},
		{"25:00:00", 90000, false},
		{"07:30", 27000, false},
		{"7:61:00", 0, true},
		{"-00:05:00", -300, false},
		{"-01:05:00", -3900, false},
		{"8:-05:00", 0, true},
		{"--1:00:00", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTime(tt.in)
			if tt.bad {
				if err == nil {
					t.Errorf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseTime(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
			}
		})
	}

	if s := FormatTime(30900); s != "08:35:00" {
		t.Errorf("FormatTime(30900) = %s", s)
	}
	if s := FormatTime(90061.7); s != "25:01:01" {
		t.Errorf("FormatTime(90061.7) = %s", s)
	}

	for _, sec := range []float64{-300, -3900, 0, 86399} {
		got, err := ParseTime(FormatTime(sec))
		if err != nil || got != sec {
			t.Errorf("ParseTime(FormatTime(%v)) = %v, %v", sec, got, err)
		}
	}
}

func TestOrderAfterRemove(t *testing.T) {
	pop := New()
	for _, id := range []string{"a", "b", "c", "d"} {
		if err := pop.Add(&Person{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := pop.Add(&Person{ID: "a"}); err == nil {
		t.Error("expected duplicate error")
	}

	pop.Remove("b")
	pop.Remove("zz")
	if pop.Len() != 3 {
		t.Errorf("Len = %d, want 3", pop.Len())
	}
	if got := strings.Join(pop.IDs(), ","); got != "a,c,d" {
		t.Errorf("IDs = %s", got)
	}
}

const samplePlans = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE population SYSTEM "http://www.matsim.org/files/dtd/population_v6.dtd">
<population>
	<attributes>
		<attribute name="coordinateReferenceSystem" class="java.lang.String">EPSG:25832</attribute>
	</attributes>
	<person id="p1">
		<attributes>
			<attribute name="subpopulation" class="java.lang.String">person</attribute>
		</attributes>
		<plan score="12.3" selected="no">
			<activity type="home" link="l1" x="1.0" y="2.0" end_time="07:00:00" />
			<leg mode="walk" />
			<activity type="work" link="l2" />
		</plan>
		<plan selected="yes">
			<activity type="home" link="l1" x="1.0" y="2.0" end_time="08:00:00" />
			<leg mode="walk" />
			<activity type="pt interaction" link="l5" />
			<leg mode="pt">
				<route type="default_pt">ignored</route>
			</leg>
			<activity type="work" link="l2" x="500.5" y="20.0" />
		</plan>
	</person>
	<person id="p2">
		<plan selected="yes">
			<activity type="home" link="l3" end_time="09:30:00" />
			<leg mode="car" />
			<activity type="shop" link="l4" />
		</plan>
	</person>
</population>`

func TestReadPlans(t *testing.T) {
	pop, err := Read(strings.NewReader(samplePlans))
	if err != nil {
		t.Fatal(err)
	}
	if pop.Len() != 2 {
		t.Fatalf("Len = %d, want 2", pop.Len())
	}

	p1 := pop.Get("p1")
	plan := p1.SelectedPlan()
	if plan != p1.Plans[1] {
		t.Fatal("second plan should be selected")
	}
	if len(plan.Elements) != 5 {
		t.Fatalf("got %d elements, want 5", len(plan.Elements))
	}
	first := plan.Elements[0].(*Activity)
	if first.EndTime == nil || *first.EndTime != 28800 || first.Coord == nil || first.Coord.Y != 2 {
		t.Errorf("unexpected first activity %+v", first)
	}
	if leg := plan.Elements[3].(*Leg); leg.Mode != "pt" {
		t.Errorf("leg mode = %s", leg.Mode)
	}
	if !plan.Elements[2].(*Activity).IsStage() {
		t.Error("pt interaction is a stage activity")
	}
}

func TestWriteRead(t *testing.T) {
	pop := New()
	pop.Add(NewTripPerson("drt_passenger_0", "dummy", "l1", 28730, "drt", "l9"))
	pop.Add(NewTripPerson("drt_passenger_1", "dummy", "l2", 30000, "drt", "l8"))

	var buf bytes.Buffer
	if err := Write(&buf, pop); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `end_time="07:58:50"`) {
		t.Errorf("end time missing in output:\n%s", buf.String())
	}

	path := filepath.Join(t.TempDir(), "plans.xml.gz")
	if err := WriteFile(path, pop); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got.IDs(), ",") != "drt_passenger_0,drt_passenger_1" {
		t.Fatalf("ids = %v", got.IDs())
	}

	plan := got.Get("drt_passenger_1").SelectedPlan()
	if !plan.Selected || len(plan.Elements) != 3 {
		t.Fatalf("unexpected plan %+v", plan)
	}
	orig := plan.Elements[0].(*Activity)
	dest := plan.Elements[2].(*Activity)
	if orig.Link != "l2" || *orig.EndTime != 30000 || dest.Link != "l8" || dest.EndTime != nil {
		t.Errorf("activities not preserved: %+v %+v", orig, dest)
	}
	if plan.Elements[1].(*Leg).Mode != "drt" {
		t.Error("leg mode not preserved")
	}
}

func TestTrips(t *testing.T) {
	pop, err := Read(strings.NewReader(samplePlans))
	if err != nil {
		t.Fatal(err)
	}

	trips := Trips(pop.Get("p1").SelectedPlan())
	if len(trips) != 1 {
		t.Fatalf("got %d trips, want 1", len(trips))
	}
	tr := trips[0]
	if tr.Origin.Type != "home" || tr.Destination.Type != "work" || len(tr.Legs) != 2 {
		t.Errorf("unexpected trip %+v", tr)
	}
	if m := tr.MainMode(); m != "pt" {
		t.Errorf("MainMode = %s, want pt", m)
	}

	tests := []struct {
		modes []string
		want  string
	}{
		{[]string{"walk", "car", "walk"}, "car"},
		{[]string{"bike"}, "bike"},
		{[]string{"walk", "ride"}, "ride"},
		{[]string{"walk", "drt", "pt"}, "drt"},
		{[]string{"ferry", "walk"}, "walk"},
		{[]string{"ferry", "airplane"}, "ferry"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.modes, "+"), func(t *testing.T) {
			tr := Trip{}
			for _, m := range tt.modes {
				tr.Legs = append(tr.Legs, &Leg{Mode: m})
			}
			if got := tr.MainMode(); got != tt.want {
				t.Errorf("MainMode = %s, want %s", got, tt.want)
			}
		})
	}
}
