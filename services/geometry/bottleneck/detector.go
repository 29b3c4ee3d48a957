// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package bottleneck flags structurally critical nodes and road segments.
package bottleneck

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"

	"github.com/harshith74p/roadgraph/services/geometry/graph"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var detectorTracer = otel.Tracer("geometry.bottleneck")

// Detection constants.
const (
	// MaxReports caps the combined node+edge report list.
	MaxReports = 10

	// PercentileThreshold is the centrality percentile above which an
	// entity is flagged. Computed independently for nodes and edges.
	// On small or sparse networks this may select very few or zero
	// bottlenecks; that is expected.
	PercentileThreshold = 90.0
)

// Report describes one flagged entity, ranked by centrality.
type Report struct {
	// Type is "node" or "edge".
	Type string `json:"type"`

	// ID is the node ID or "from-to" edge identifier.
	ID string `json:"id"`

	// Latitude and Longitude are set for node reports.
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`

	// CentralityScore is the raw weighted betweenness value.
	CentralityScore float64 `json:"centrality_score"`

	// Degree is set for node reports.
	Degree int `json:"degree,omitempty"`

	// LengthM and SpeedKPH are set for edge reports.
	LengthM  float64 `json:"length_m,omitempty"`
	SpeedKPH float64 `json:"speed_kph,omitempty"`

	// Description is a human-readable summary.
	Description string `json:"description"`
}

// Find computes weighted betweenness centrality over the network and
// returns the entities above the per-kind 90th-percentile threshold,
// sorted by descending score and truncated to MaxReports.
//
// Travel time is the edge weight, so fast segments that attract shortest
// paths surface as bottleneck candidates. Thresholding is strict-greater,
// computed independently for nodes and edges.
func Find(ctx context.Context, n *graph.Network) []Report {
	ctx, span := detectorTracer.Start(ctx, "bottleneck.Find",
		trace.WithAttributes(
			attribute.Int("node_count", n.NodeCount()),
			attribute.Int("edge_count", n.EdgeCount()),
		),
	)
	defer span.End()

	reports := []Report{}
	if n.NodeCount() == 0 {
		return reports
	}

	result := graph.Betweenness(ctx, n, nil)

	nodeScores := make([]float64, 0, len(result.NodeScores))
	for _, score := range result.NodeScores {
		nodeScores = append(nodeScores, score)
	}
	nodeThreshold := percentile(nodeScores, PercentileThreshold)

	for _, id := range n.NodeIDs() {
		score := result.NodeScores[id]
		if score <= nodeThreshold {
			continue
		}
		node, _ := n.Node(id)
		reports = append(reports, Report{
			Type:            "node",
			ID:              strconv.FormatInt(id, 10),
			Latitude:        node.Lat,
			Longitude:       node.Lon,
			CentralityScore: score,
			Degree:          n.Degree(id),
			Description:     fmt.Sprintf("High-traffic intersection (centrality: %.3f)", score),
		})
	}

	if n.EdgeCount() > 0 {
		edgeThreshold := percentile(append([]float64(nil), result.EdgeScores...), PercentileThreshold)
		for i, score := range result.EdgeScores {
			if score <= edgeThreshold {
				continue
			}
			e := n.Edge(i)
			reports = append(reports, Report{
				Type:            "edge",
				ID:              e.Key(),
				CentralityScore: score,
				LengthM:         e.LengthM,
				SpeedKPH:        e.SpeedKPH,
				Description:     fmt.Sprintf("Critical road segment (centrality: %.3f)", score),
			})
		}
	}

	// Descending by score, tie-break by ID for stable output.
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].CentralityScore != reports[j].CentralityScore {
			return reports[i].CentralityScore > reports[j].CentralityScore
		}
		return reports[i].ID < reports[j].ID
	})
	if len(reports) > MaxReports {
		reports = reports[:MaxReports]
	}

	slog.Debug("Bottleneck detection completed",
		slog.Int("reports", len(reports)),
		slog.Int("node_count", n.NodeCount()),
	)
	span.SetAttributes(attribute.Int("reports", len(reports)))

	return reports
}

// percentile returns the p-th percentile of values using linear
// interpolation between closest ranks. The input slice is sorted in place.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	if len(values) == 1 {
		return values[0]
	}
	rank := p / 100 * float64(len(values)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return values[lo]
	}
	frac := rank - float64(lo)
	return values[lo] + frac*(values[hi]-values[lo])
}
