// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package population holds the demand model: persons with plans made of
// activities and legs.
package population

import (
	"fmt"
	"strings"

	"github.com/drt-scenarios/drtprep/network"
)

// Element is a plan element, either an *Activity or a *Leg.
type Element interface {
	isElement()
}

// Activity is a stay at a link and/or coordinate.
type Activity struct {
	Type    string
	Link    string
	Coord   *network.Coord
	EndTime *float64 // seconds since midnight
}

// Leg is a movement between two activities.
type Leg struct {
	Mode string
}

func (*Activity) isElement() {}
func (*Leg) isElement() {}

// IsStage reports whether the activity is a stage activity inserted
// between legs of one trip, such as "pt interaction".
func (a *Activity) IsStage() bool {
	return strings.HasSuffix(a.Type, "interaction")
}

// Plan is an ordered sequence of activities and legs.
type Plan struct {
	Selected bool
	Elements []Element
}

// Person is a member of the population.
type Person struct {
	ID    string
	Plans []*Plan
}

// SelectedPlan returns the plan marked as selected, or the first plan if
// none is marked.
func (p *Person) SelectedPlan() *Plan {
	for _, pl := range p.Plans {
		if pl.Selected {
			return pl
		}
	}
	if len(p.Plans) > 0 {
		return p.Plans[0]
	}
	return nil
}

// NewTripPerson returns a person with a single selected plan: an origin
// activity at from ending at endTime, one leg in mode and a destination
// activity at to.
func NewTripPerson(id, actType, from string, endTime float64, mode, to string) *Person {
	end := endTime
	return &Person{
		ID: id,
		Plans: []*Plan{{
			Selected: true,
			Elements: []Element{
				&Activity{Type: actType, Link: from, EndTime: &end},
				&Leg{Mode: mode},
				&Activity{Type: actType, Link: to},
			},
		}},
	}
}

// Population is an ordered collection of persons.
type Population struct {
	persons map[string]*Person
	order   []string
}

// New returns an empty population.
func New() *Population {
	return &Population{persons: make(map[string]*Person)}
}

// Add appends p. Person ids must be unique.
func (pop *Population) Add(p *Person) error {
	if _, ok := pop.persons[p.ID]; ok {
		return fmt.Errorf("duplicate person %q", p.ID)
	}
	pop.compact()
	pop.persons[p.ID] = p
	pop.order = append(pop.order, p.ID)
	return nil
}

// Get returns the person with the given id, or nil.
func (pop *Population) Get(id string) *Person { return pop.persons[id] }

// Remove deletes the person with the given id.
func (pop *Population) Remove(id string) bool {
	if _, ok := pop.persons[id]; !ok {
		return false
	}
	delete(pop.persons, id)
	return true
}

// Len returns the number of persons.
func (pop *Population) Len() int { return len(pop.persons) }

// IDs returns the person ids in population order.
func (pop *Population) IDs() []string {
	pop.compact()
	ret := make([]string, len(pop.order))
	copy(ret, pop.order)
	return ret
}

// Persons returns the persons in population order.
func (pop *Population) Persons() []*Person {
	pop.compact()
	ret := make([]*Person, len(pop.order))
	for i, id := range pop.order {
		ret[i] = pop.persons[id]
	}
	return ret
}

// Clone returns a population holding the same persons in the same order.
// Persons are shared, not copied.
func (pop *Population) Clone() *Population {
	pop.compact()
	ret := &Population{
		persons: make(map[string]*Person, len(pop.persons)),
		order:   make([]string, len(pop.order)),
	}
	copy(ret.order, pop.order)
	for id, p := range pop.persons {
		ret.persons[id] = p
	}
	return ret
}

func (pop *Population) compact() {
	if len(pop.order) == len(pop.persons) {
		return
	}
	ids := pop.order[:0]
	for _, id := range pop.order {
		if _, ok := pop.persons[id]; ok {
			ids = append(ids, id)
		}
	}
	pop.order = ids
}
