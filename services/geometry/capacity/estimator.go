// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package capacity estimates per-road throughput from network geometry.
package capacity

import (
	"math"
	"sort"

	"github.com/harshith74p/roadgraph/services/geometry/graph"
)

// Estimation constants. Capacity scales linearly with the speed limit
// against a 50 km/h / 2000 veh/h baseline.
const (
	// BaseSpeedKPH is the reference speed limit.
	BaseSpeedKPH = 50.0

	// BaseCapacityVPH is the reference capacity in vehicles per hour.
	BaseCapacityVPH = 2000.0

	// HighCapacityVPH is the strict lower bound for the high-capacity class.
	HighCapacityVPH = 3000.0

	// LowCapacityVPH is the strict upper bound for the low-capacity class.
	LowCapacityVPH = 1000.0
)

// RoadInfo describes one classified road segment.
type RoadInfo struct {
	// Edge is the "from-to" edge identifier.
	Edge string `json:"edge"`

	// LengthM is the segment length in meters.
	LengthM float64 `json:"length_m"`

	// SpeedKPH is the speed limit in km/h.
	SpeedKPH float64 `json:"speed_kph"`

	// EstimatedCapacity is the throughput estimate in vehicles per hour.
	EstimatedCapacity float64 `json:"estimated_capacity"`
}

// Distribution holds aggregate statistics over all edge capacities.
type Distribution struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Analysis is the capacity report for a network.
type Analysis struct {
	// HighCapacityRoads lists edges with capacity above HighCapacityVPH.
	HighCapacityRoads []RoadInfo `json:"high_capacity_roads"`

	// LowCapacityRoads lists edges with capacity below LowCapacityVPH.
	LowCapacityRoads []RoadInfo `json:"low_capacity_roads"`

	// Distribution is nil when the network has no edges.
	Distribution *Distribution `json:"capacity_distribution,omitempty"`
}

// EstimateEdge returns the capacity estimate for a single edge.
func EstimateEdge(e *graph.Edge) float64 {
	return e.SpeedKPH / BaseSpeedKPH * BaseCapacityVPH
}

// Estimate derives per-edge capacity estimates and aggregate statistics
// for the whole network.
//
// A network with zero edges yields empty classification lists and a nil
// Distribution rather than a division error.
func Estimate(n *graph.Network) *Analysis {
	analysis := &Analysis{
		HighCapacityRoads: []RoadInfo{},
		LowCapacityRoads:  []RoadInfo{},
	}

	edges := n.Edges()
	if len(edges) == 0 {
		return analysis
	}

	capacities := make([]float64, 0, len(edges))
	for _, e := range edges {
		est := EstimateEdge(e)
		capacities = append(capacities, est)

		info := RoadInfo{
			Edge:              e.Key(),
			LengthM:           e.LengthM,
			SpeedKPH:          e.SpeedKPH,
			EstimatedCapacity: est,
		}
		switch {
		case est > HighCapacityVPH:
			analysis.HighCapacityRoads = append(analysis.HighCapacityRoads, info)
		case est < LowCapacityVPH:
			analysis.LowCapacityRoads = append(analysis.LowCapacityRoads, info)
		}
	}

	analysis.Distribution = distribution(capacities)
	return analysis
}

// distribution computes mean, median, population standard deviation, min
// and max over a non-empty sample.
func distribution(values []float64) *Distribution {
	n := float64(len(values))

	var sum float64
	min, max := values[0], values[0]
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := sum / n

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	return &Distribution{
		Mean:   mean,
		Median: median,
		Std:    math.Sqrt(sq / n),
		Min:    min,
		Max:    max,
	}
}
