// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

package population

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/drt-scenarios/drtprep/codec"
	"github.com/drt-scenarios/drtprep/network"
)

const populationDocType = `<!DOCTYPE population SYSTEM "http://www.matsim.org/files/dtd/population_v6.dtd">` + "\n"

type xmlPerson struct {
	XMLName xml.Name  `xml:"person"`
	ID      string    `xml:"id,attr"`
	Plans   []xmlPlan `xml:"plan"`
}

type xmlActivity struct {
	XMLName xml.Name `xml:"activity"`
	Type    string   `xml:"type,attr"`
	Link    string   `xml:"link,attr,omitempty"`
	X       *float64 `xml:"x,attr"`
	Y       *float64 `xml:"y,attr"`
	EndTime string   `xml:"end_time,attr,omitempty"`
}

type xmlLeg struct {
	XMLName xml.Name `xml:"leg"`
	Mode    string   `xml:"mode,attr"`
}

// xmlPlan keeps the interleaved order of activities and legs, which the
// default struct mapping would split into two lists.
type xmlPlan struct {
	plan *Plan
}

func (p *xmlPlan) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	p.plan = &Plan{}
	for _, a := range start.Attr {
		if a.Name.Local == "selected" {
			p.plan.Selected = a.Value == "yes" || a.Value == "true"
		}
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "activity":
				var xa xmlActivity
				if err := d.DecodeElement(&xa, &t); err != nil {
					return err
				}
				act, err := xa.activity()
				if err != nil {
					return err
				}
				p.plan.Elements = append(p.plan.Elements, act)
			case "leg":
				var xl xmlLeg
				if err := d.DecodeElement(&xl, &t); err != nil {
					return err
				}
				p.plan.Elements = append(p.plan.Elements, &Leg{Mode: xl.Mode})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p xmlPlan) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	sel := "no"
	if p.plan.Selected {
		sel = "yes"
	}
	start.Name = xml.Name{Local: "plan"}
	start.Attr = []xml.Attr{{Name: xml.Name{Local: "selected"}, Value: sel}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, el := range p.plan.Elements {
		var err error
		switch v := el.(type) {
		case *Activity:
			err = e.Encode(fromActivity(v))
		case *Leg:
			err = e.Encode(xmlLeg{Mode: v.Mode})
		}
		if err != nil {
			return err
		}
	}

	return e.EncodeToken(start.End())
}

func (xa xmlActivity) activity() (*Activity, error) {
	a := &Activity{Type: xa.Type, Link: xa.Link}
	if xa.X != nil && xa.Y != nil {
		a.Coord = &network.Coord{X: *xa.X, Y: *xa.Y}
	}
	if xa.EndTime != "" {
		t, err := ParseTime(xa.EndTime)
		if err != nil {
			return nil, err
		}
		a.EndTime = &t
	}
	return a, nil
}

func fromActivity(a *Activity) xmlActivity {
	xa := xmlActivity{Type: a.Type, Link: a.Link}
	if a.Coord != nil {
		x, y := a.Coord.X, a.Coord.Y
		xa.X, xa.Y = &x, &y
	}
	if a.EndTime != nil {
		xa.EndTime = FormatTime(*a.EndTime)
	}
	return xa
}

// Read decodes a population XML document, person by person.
func Read(r io.Reader) (*Population, error) {
	pop := New()
	d := xml.NewDecoder(r)

	for {
		tok, err := d.Token()
		if err == io.EOF {
			return pop, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode population: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "person" {
			continue
		}

		var xp xmlPerson
		if err := d.DecodeElement(&xp, &start); err != nil {
			return nil, fmt.Errorf("decode person: %w", err)
		}
		p := &Person{ID: xp.ID, Plans: make([]*Plan, 0, len(xp.Plans))}
		for _, pl := range xp.Plans {
			p.Plans = append(p.Plans, pl.plan)
		}
		if err := pop.Add(p); err != nil {
			return nil, err
		}
	}
}

// Write encodes pop as a population XML document.
func Write(w io.Writer, pop *Population) error {
	if _, err := io.WriteString(w, xml.Header+populationDocType+"<population>\n"); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("\t", "\t")
	for _, p := range pop.Persons() {
		xp := xmlPerson{ID: p.ID}
		for _, pl := range p.Plans {
			xp.Plans = append(xp.Plans, xmlPlan{plan: pl})
		}
		if err := enc.Encode(xp); err != nil {
			return fmt.Errorf("encode person %s: %w", p.ID, err)
		}
	}
	if err := enc.Flush(); err != nil {
		return err
	}

	_, err := io.WriteString(w, "\n</population>\n")
	return err
}

// ReadFile reads a (possibly gzipped) population file.
func ReadFile(path string) (*Population, error) {
	r, err := codec.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Read(r)
}

// WriteFile writes pop to path, gzipped if path ends in .gz.
func WriteFile(path string, pop *Population) error {
	w, err := codec.Create(path)
	if err != nil {
		return err
	}
	if err := Write(w, pop); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
