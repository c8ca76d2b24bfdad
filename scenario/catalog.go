// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package scenario knows the input files and base sample sizes of the
// supported DRT scenarios.
package scenario

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/drt-scenarios/drtprep/errs"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yml
var catalogYAML []byte

// Scenario describes the inputs of one scenario. ManualPlans is empty for
// scenarios without a manual sampling variant.
type Scenario struct {
	Name        string  `yaml:"-"`
	Config      string  `yaml:"config" validate:"required"`
	Plans       string  `yaml:"plans" validate:"required"`
	ManualPlans string  `yaml:"manual_plans"`
	BaseSample  float64 `yaml:"base_sample" validate:"gt=0,lte=1"`
}

// Catalog maps scenario names to scenarios.
type Catalog struct {
	Scenarios map[string]*Scenario `yaml:"scenarios" validate:"required,min=1,dive"`
}

// LoadCatalog parses the built-in catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog parses and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("%w: scenario catalog: %v", errs.ErrConfiguration, err)
	}
	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("%w: scenario catalog: %v", errs.ErrConfiguration, err)
	}
	for name, s := range c.Scenarios {
		s.Name = name
	}
	return c, nil
}

// Names returns the scenario names, sorted.
func (c *Catalog) Names() []string {
	ret := make([]string, 0, len(c.Scenarios))
	for n := range c.Scenarios {
		ret = append(ret, n)
	}
	sort.Strings(ret)
	return ret
}

// Get returns the named scenario.
func (c *Catalog) Get(name string) (*Scenario, error) {
	s, ok := c.Scenarios[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown scenario %q, choose from %v", errs.ErrConfiguration, name, c.Names())
	}
	return s, nil
}

// PlansPath returns the plans file of s below root. With manual set, the
// manual sampling plans are returned.
func (s *Scenario) PlansPath(root string, manual bool) (string, error) {
	if !manual {
		return filepath.Join(root, s.Plans), nil
	}
	if s.ManualPlans == "" {
		return "", fmt.Errorf("%w: scenario %s has no manual sampling plans", errs.ErrConfiguration, s.Name)
	}
	return filepath.Join(root, s.ManualPlans), nil
}
