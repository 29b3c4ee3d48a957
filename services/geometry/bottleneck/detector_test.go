// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package bottleneck

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/harshith74p/roadgraph/services/geometry/graph"
	"github.com/harshith74p/roadgraph/services/geometry/provider"
)

func TestFind_StarGraph(t *testing.T) {
	// A star: every path between leaves crosses the hub, so only the hub
	// clears the node threshold.
	net := graph.NewNetwork(graph.Point{Lat: 37.77, Lon: -122.41}, 1000)
	_ = net.AddNode(0, 37.77, -122.41)
	for i := int64(1); i <= 4; i++ {
		_ = net.AddNode(i, 37.77+float64(i)*0.001, -122.41)
		_ = net.AddEdge(0, i, 500, 50)
		_ = net.AddEdge(i, 0, 500, 50)
	}
	net.Freeze()

	reports := Find(context.Background(), net)

	var hub *Report
	for i := range reports {
		if reports[i].Type == "node" {
			if hub != nil {
				t.Fatalf("multiple node reports: %+v", reports)
			}
			hub = &reports[i]
		}
	}
	if hub == nil {
		t.Fatal("hub node not flagged")
	}
	if hub.ID != "0" {
		t.Errorf("flagged node = %s, expected 0", hub.ID)
	}
	if hub.Degree != 8 {
		t.Errorf("hub degree = %d, expected 8", hub.Degree)
	}
	if hub.Latitude != 37.77 || hub.Longitude != -122.41 {
		t.Errorf("hub coordinates = (%v, %v)", hub.Latitude, hub.Longitude)
	}
	if !strings.HasPrefix(hub.Description, "High-traffic intersection") {
		t.Errorf("hub description = %q", hub.Description)
	}
}

func TestFind_GridNetwork(t *testing.T) {
	net := provider.SynthesizeGrid(graph.Point{Lat: 37.7749, Lon: -122.4194}, 2000)

	reports := Find(context.Background(), net)

	if len(reports) == 0 {
		t.Fatal("no bottlenecks on a 5x5 grid")
	}
	if len(reports) > MaxReports {
		t.Fatalf("reports = %d, expected at most %d", len(reports), MaxReports)
	}

	for i, r := range reports {
		if r.Type != "node" && r.Type != "edge" {
			t.Errorf("report %d has type %q", i, r.Type)
		}
		if r.Description == "" {
			t.Errorf("report %d has empty description", i)
		}
		if r.Type == "edge" && !strings.HasPrefix(r.Description, "Critical road segment") {
			t.Errorf("edge description = %q", r.Description)
		}
		if i > 0 && reports[i-1].CentralityScore < r.CentralityScore {
			t.Errorf("reports not sorted descending at %d: %v < %v",
				i, reports[i-1].CentralityScore, r.CentralityScore)
		}
	}
}

func TestFind_EmptyNetwork(t *testing.T) {
	net := graph.NewNetwork(graph.Point{}, 1000)
	net.Freeze()

	reports := Find(context.Background(), net)
	if len(reports) != 0 {
		t.Errorf("reports = %v, expected none", reports)
	}
	if reports == nil {
		t.Error("reports should be an empty slice, not nil")
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"empty", nil, 90, 0},
		{"single", []float64{5}, 90, 5},
		{"interpolated", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 90, 9.1},
		{"median", []float64{1, 2, 3}, 50, 2},
		{"max", []float64{1, 2, 3}, 100, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := percentile(append([]float64(nil), tc.values...), tc.p)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("percentile(%v, %v) = %v, expected %v", tc.values, tc.p, got, tc.want)
			}
		})
	}
}
