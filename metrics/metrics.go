// Copyright 2025 Patrick Steil
//
// Use of this source code is governed by a GPL v2
// license that can be found in the LICENSE file

// Package metrics collects run counters and writes them in the
// node exporter textfile format.
package metrics

import (
	"github.com/drt-scenarios/drtprep/extract"
	"github.com/drt-scenarios/drtprep/processors"
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	reg *prometheus.Registry

	LinksRemoved prometheus.Counter
	NodesRemoved prometheus.Counter
	Components   prometheus.Gauge

	TripRecords  prometheus.Counter
	TripsSkipped prometheus.Counter
	TripOutcomes *prometheus.CounterVec // outcome label: accepted|<reject reason>
	TripCases    *prometheus.CounterVec // case label

	PersonsSampled *prometheus.CounterVec // fraction label
	PersonsRemoved prometheus.Counter

	TripsConverted prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		LinksRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drtprep_trim_links_removed_total",
			Help: "Links removed by trimming and cleaning.",
		}),
		NodesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drtprep_trim_nodes_removed_total",
			Help: "Nodes removed by trimming and cleaning.",
		}),
		Components: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "drtprep_trim_components",
			Help: "Strongly connected components found before cleaning.",
		}),
		TripRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drtprep_extract_records_total",
			Help: "Trip records examined.",
		}),
		TripsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drtprep_extract_records_skipped_total",
			Help: "Malformed trip records skipped.",
		}),
		TripOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "drtprep_extract_trips_total",
			Help: "Trip records by outcome.",
		}, []string{"outcome"}),
		TripCases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "drtprep_extract_accepted_by_case_total",
			Help: "Accepted trips by service area case.",
		}, []string{"case"}),
		PersonsSampled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "drtprep_sample_persons_total",
			Help: "Persons written per sample.",
		}, []string{"fraction"}),
		PersonsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drtprep_sample_persons_removed_total",
			Help: "Persons removed by down sampling.",
		}),
		TripsConverted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drtprep_convert_trips_total",
			Help: "Trips converted to drt persons.",
		}),
	}

	reg.MustRegister(
		c.LinksRemoved, c.NodesRemoved, c.Components,
		c.TripRecords, c.TripsSkipped, c.TripOutcomes, c.TripCases,
		c.PersonsSampled, c.PersonsRemoved,
		c.TripsConverted,
	)

	return c
}

// Registry returns the collector's private registry.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// ObserveTrim records the outcome of a trimmer run.
func (c *Collector) ObserveTrim(st processors.TrimStats) {
	c.LinksRemoved.Add(float64(st.LinksRemoved))
	c.NodesRemoved.Add(float64(st.NodesRemoved))
	c.Components.Set(float64(st.Clean.Components))
}

// ObserveExtract records the outcome of an extraction run.
func (c *Collector) ObserveExtract(st extract.Stats) {
	c.TripRecords.Add(float64(st.Records))
	c.TripsSkipped.Add(float64(st.Skipped))
	c.TripOutcomes.WithLabelValues("accepted").Add(float64(st.Accepted))
	for r, n := range st.Rejected {
		c.TripOutcomes.WithLabelValues(string(r)).Add(float64(n))
	}
	for cs, n := range st.ByCase {
		c.TripCases.WithLabelValues(cs.String()).Add(float64(n))
	}
}

// WriteFile writes all metrics to path, replacing it atomically.
func (c *Collector) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, c.reg)
}
