// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import (
	"errors"
	"math"
	"testing"
)

// buildLine creates a frozen bidirectional line network 0-1-...-(n-1)
// with uniform 500 m / 50 km/h edges.
func buildLine(t *testing.T, n int) *Network {
	t.Helper()
	net := NewNetwork(Point{Lat: 37.77, Lon: -122.41}, 2000)
	for i := 0; i < n; i++ {
		if err := net.AddNode(int64(i), 37.77+float64(i)*0.005, -122.41); err != nil {
			t.Fatalf("AddNode(%d): %v", i, err)
		}
	}
	for i := 0; i+1 < n; i++ {
		if err := net.AddEdge(int64(i), int64(i+1), 500, 50); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
		if err := net.AddEdge(int64(i+1), int64(i), 500, 50); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	net.Freeze()
	return net
}

func TestNetwork_AddNode(t *testing.T) {
	net := NewNetwork(Point{}, 1000)

	if err := net.AddNode(1, 37.77, -122.41); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := net.AddNode(1, 37.78, -122.42); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("duplicate AddNode error = %v, expected ErrDuplicateNode", err)
	}

	node, ok := net.Node(1)
	if !ok || node.Lat != 37.77 || node.Lon != -122.41 {
		t.Errorf("Node(1) = %+v, %v", node, ok)
	}
}

func TestNetwork_AddEdge(t *testing.T) {
	net := NewNetwork(Point{}, 1000)
	if err := net.AddNode(1, 37.77, -122.41); err != nil {
		t.Fatal(err)
	}
	if err := net.AddNode(2, 37.78, -122.41); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		from, to int64
		length   float64
		speed    float64
		wantErr  error
	}{
		{"valid", 1, 2, 500, 50, nil},
		{"missing source", 9, 2, 500, 50, ErrNodeNotFound},
		{"missing target", 1, 9, 500, 50, ErrNodeNotFound},
		{"zero length", 1, 2, 0, 50, ErrInvalidEdge},
		{"negative speed", 1, 2, 500, -1, ErrInvalidEdge},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := net.AddEdge(tc.from, tc.to, tc.length, tc.speed)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("AddEdge: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("AddEdge error = %v, expected %v", err, tc.wantErr)
			}
		})
	}
}

func TestNetwork_TravelTimeDerivation(t *testing.T) {
	net := NewNetwork(Point{}, 1000)
	_ = net.AddNode(1, 0, 0)
	_ = net.AddNode(2, 0, 0.005)

	tests := []struct {
		length, speed, wantSeconds float64
	}{
		{500, 50, 36},
		{1000, 100, 36},
		{500, 25, 72},
	}

	for _, tc := range tests {
		if err := net.AddEdge(1, 2, tc.length, tc.speed); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
		e := net.Edge(net.EdgeCount() - 1)
		if math.Abs(e.TravelTimeS-tc.wantSeconds) > 1e-9 {
			t.Errorf("travel time for %vm @ %vkm/h = %v, expected %v",
				tc.length, tc.speed, e.TravelTimeS, tc.wantSeconds)
		}
	}
}

func TestNetwork_Freeze(t *testing.T) {
	net := buildLine(t, 3)

	if !net.IsFrozen() {
		t.Fatal("network not frozen after Freeze()")
	}
	if err := net.AddNode(99, 0, 0); !errors.Is(err, ErrFrozen) {
		t.Errorf("AddNode after Freeze = %v, expected ErrFrozen", err)
	}
	if err := net.AddEdge(0, 1, 500, 50); !errors.Is(err, ErrFrozen) {
		t.Errorf("AddEdge after Freeze = %v, expected ErrFrozen", err)
	}

	ids := net.NodeIDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("NodeIDs not ascending: %v", ids)
		}
	}
	if net.BuiltAtMilli == 0 {
		t.Error("BuiltAtMilli not set by Freeze()")
	}
}

func TestNetwork_DegreeAndLength(t *testing.T) {
	net := buildLine(t, 3)

	// Middle node: 2 out + 2 in.
	if d := net.Degree(1); d != 4 {
		t.Errorf("Degree(1) = %d, expected 4", d)
	}
	if d := net.Degree(0); d != 2 {
		t.Errorf("Degree(0) = %d, expected 2", d)
	}
	if total := net.TotalLengthM(); total != 4*500 {
		t.Errorf("TotalLengthM = %v, expected 2000", total)
	}
}

func TestView_ExcludeEdge(t *testing.T) {
	net := buildLine(t, 3)
	v := net.View()

	if v.Excluded(0) {
		t.Error("fresh view has exclusions")
	}
	v.ExcludeEdge(0)
	if !v.Excluded(0) {
		t.Error("ExcludeEdge(0) not visible")
	}
	if v.Excluded(1) {
		t.Error("unrelated edge excluded")
	}

	// Overlay must not touch the network.
	if net.EdgeCount() != 4 {
		t.Errorf("EdgeCount changed to %d", net.EdgeCount())
	}
	if net.View().Excluded(0) {
		t.Error("exclusion leaked into a fresh view")
	}
}

func TestEdge_Key(t *testing.T) {
	e := &Edge{From: 3, To: 8}
	if e.Key() != "3-8" {
		t.Errorf("Key = %q, expected 3-8", e.Key())
	}
}
