// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package sampling

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/drt-scenarios/drtprep/errs"
	"github.com/drt-scenarios/drtprep/population"
)

func testPopulation(t *testing.T, n int) *population.Population {
	t.Helper()
	pop := population.New()
	for i := 0; i < n; i++ {
		if err := pop.Add(population.NewTripPerson(fmt.Sprintf("p%d", i), "home", "l1", float64(i), "car", "l2")); err != nil {
			t.Fatal(err)
		}
	}
	return pop
}

func TestSample(t *testing.T) {
	tests := []struct {
		n              int
		fraction, base float64
		want           int
	}{
		{100, 0.05, 0.1, 50},
		{100, 0.1, 0.1, 100},
		{10, 0.25, 1, 2}, // 7.5 removed rounds to 8
		{7, 0.01, 0.25, 0},
		{0, 0.5, 1, 0},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d-%v-%v", test.n, test.fraction, test.base), func(t *testing.T) {
			pop := testPopulation(t, test.n)
			removed, err := Sample(pop, Spec{Fraction: test.fraction, Base: test.base, Seed: 4711})
			if err != nil {
				t.Fatal(err)
			}
			if pop.Len() != test.want || removed != test.n-test.want {
				t.Errorf("got %d persons (%d removed), want %d", pop.Len(), removed, test.want)
			}

			seen := make(map[string]bool)
			for _, id := range pop.IDs() {
				if seen[id] {
					t.Errorf("duplicate id %s", id)
				}
				seen[id] = true
			}
		})
	}
}

func TestSampleDeterministic(t *testing.T) {
	a := testPopulation(t, 200)
	b := a.Clone()
	c := a.Clone()

	for _, x := range []struct {
		pop  *population.Population
		seed int64
	}{{a, 1}, {b, 1}, {c, 2}} {
		if _, err := Sample(x.pop, Spec{Fraction: 0.3, Base: 1, Seed: x.seed}); err != nil {
			t.Fatal(err)
		}
	}

	if strings.Join(a.IDs(), ",") != strings.Join(b.IDs(), ",") {
		t.Error("same seed gave different samples")
	}
	if strings.Join(a.IDs(), ",") == strings.Join(c.IDs(), ",") {
		t.Error("different seeds gave the same sample")
	}
}

func TestSpecValidate(t *testing.T) {
	bad := []Spec{
		{Fraction: 0.2, Base: 0.1},
		{Fraction: 0, Base: 0.1},
		{Fraction: 0.1, Base: 0},
		{Fraction: 0.5, Base: 1.5},
	}
	for _, s := range bad {
		if _, err := Sample(testPopulation(t, 3), s); !errors.Is(err, errs.ErrConfiguration) {
			t.Errorf("%+v: got %v, want configuration error", s, err)
		}
	}
}

func TestChain(t *testing.T) {
	pop := testPopulation(t, 1000)

	var got []string
	var prev map[string]bool
	emit := func(f float64, p *population.Population) error {
		got = append(got, fmt.Sprintf("%v:%d", f, p.Len()))

		cur := make(map[string]bool)
		for _, id := range p.IDs() {
			if prev != nil && !prev[id] {
				t.Errorf("sample %v is not nested in the previous one", f)
			}
			cur[id] = true
		}
		prev = cur
		return nil
	}

	if err := Chain(pop, 0.25, []float64{0.01, 0.5, 0.1, 0.25}, 4711, emit, nil); err != nil {
		t.Fatal(err)
	}

	if want := "0.25:1000,0.1:400,0.01:40"; strings.Join(got, ",") != want {
		t.Errorf("got %s, want %s", strings.Join(got, ","), want)
	}

	stop := errors.New("stop")
	if err := Chain(testPopulation(t, 10), 1, []float64{0.5}, 1, func(float64, *population.Population) error { return stop }, nil); err != stop {
		t.Errorf("emit error not returned: %v", err)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		orig         string
		base, sample float64
		want         string
	}{
		{"berlin-10pct-trips.plans.xml.gz", 0.1, 0.05, "berlin-5pct-seed-4711-trips.plans.xml.gz"},
		{"leipzig-25pct-trips.plans.xml.gz", 0.25, 0.125, "leipzig-12.5pct-seed-4711-trips.plans.xml.gz"},
		{"manhattan-taxi-100pct.plans.xml.gz", 1, 0.07, "manhattan-taxi-7pct-seed-4711.plans.xml.gz"},
		{"plans.xml.gz", 1, 0.5, "plans.xml.gz"},
	}
	for _, test := range tests {
		if got := FileName(test.orig, test.base, test.sample, 4711); got != test.want {
			t.Errorf("FileName(%s) = %s, want %s", test.orig, got, test.want)
		}
	}
}

const manualPlans = `<?xml version="1.0" encoding="utf-8"?>
<population>
	<person id="a">
		<plan selected="yes">
			<activity type="home" link="l1" end_time="08:00:00" />
			<leg mode="walk" />
			<activity type="pt interaction" link="l5" />
			<leg mode="pt" />
			<activity type="work" link="l2" end_time="17:00:00" />
			<leg mode="car" />
			<activity type="home" link="l1" />
		</plan>
	</person>
	<person id="b">
		<plan selected="yes">
			<activity type="home" link="l3" end_time="09:00:00" />
			<leg mode="bike" />
			<activity type="shop" link="l4" end_time="10:00:00" />
			<leg mode="pt" />
			<activity type="home" link="l3" />
		</plan>
	</person>
</population>`

func TestConvertByMode(t *testing.T) {
	pop, err := population.Read(strings.NewReader(manualPlans))
	if err != nil {
		t.Fatal(err)
	}

	out, st, err := ConvertByMode(pop, []string{"pt", "car"}, []float64{1, 0}, DefaultConvertSeed)
	if err != nil {
		t.Fatal(err)
	}
	if st.Trips != 4 || st.Eligible != 3 || st.Converted != 2 {
		t.Errorf("stats = %+v", st)
	}
	if got := strings.Join(out.IDs(), ","); got != "drt-person-0,drt-person-1" {
		t.Fatalf("ids = %s", got)
	}

	el := out.Get("drt-person-1").SelectedPlan().Elements
	o := el[0].(*population.Activity)
	if o.Type != "dummy" || o.Link != "l4" || *o.EndTime != 36000 || el[1].(*population.Leg).Mode != "drt" || el[2].(*population.Activity).Link != "l3" {
		t.Errorf("unexpected trip %+v %+v %+v", el[0], el[1], el[2])
	}

	if _, _, err := ConvertByMode(pop, []string{"pt", "car"}, []float64{1}, 1); !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("length mismatch: got %v", err)
	}
	if _, _, err := ConvertByMode(pop, []string{"pt"}, []float64{1.5}, 1); !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("share out of range: got %v", err)
	}
}

func TestConvertDeterministic(t *testing.T) {
	pop := population.New()
	for i := 0; i < 100; i++ {
		pop.Add(population.NewTripPerson(fmt.Sprintf("p%d", i), "home", fmt.Sprintf("l%d", i), 0, "pt", "l0"))
	}

	a, _, err := ConvertByMode(pop, []string{"pt"}, []float64{0.5}, DefaultConvertSeed)
	if err != nil {
		t.Fatal(err)
	}
	b, _, _ := ConvertByMode(pop, []string{"pt"}, []float64{0.5}, DefaultConvertSeed)

	if a.Len() == 0 || a.Len() == 100 || a.Len() != b.Len() {
		t.Fatalf("got %d and %d converted trips", a.Len(), b.Len())
	}
	for _, id := range a.IDs() {
		if a.Get(id).SelectedPlan().Elements[0].(*population.Activity).Link != b.Get(id).SelectedPlan().Elements[0].(*population.Activity).Link {
			t.Errorf("%s differs between runs", id)
		}
	}
}
