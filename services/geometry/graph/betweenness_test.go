// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import (
	"context"
	"math"
	"testing"
)

func TestBetweenness_PathGraph(t *testing.T) {
	// Bidirectional line 0-1-2. Every shortest path between the outer
	// nodes crosses node 1, so its normalized score is exactly 1.
	net := buildLine(t, 3)

	result := Betweenness(context.Background(), net, nil)

	if result.Sources != 3 {
		t.Fatalf("Sources = %d, expected 3", result.Sources)
	}
	if got := result.NodeScores[1]; math.Abs(got-1.0) > 1e-9 {
		t.Errorf("NodeScores[1] = %v, expected 1.0", got)
	}
	for _, id := range []int64{0, 2} {
		if got := result.NodeScores[id]; got != 0 {
			t.Errorf("NodeScores[%d] = %v, expected 0", id, got)
		}
	}
	if len(result.EdgeScores) != net.EdgeCount() {
		t.Fatalf("EdgeScores has %d entries, expected %d", len(result.EdgeScores), net.EdgeCount())
	}
}

func TestBetweenness_EdgeScores(t *testing.T) {
	net := buildLine(t, 3)

	result := Betweenness(context.Background(), net, &BetweennessOptions{Normalized: false})

	// Edge 0 is 0->1. It carries the paths 0->1 and 0->2: raw score 2.
	if got := result.EdgeScores[0]; math.Abs(got-2) > 1e-9 {
		t.Errorf("EdgeScores[0] = %v, expected 2", got)
	}
}

func TestBetweenness_EqualPathSplit(t *testing.T) {
	// Diamond 0->{1,2}->3 with equal weights: the pair (0,3) has two
	// shortest paths, so each middle node accumulates 0.5.
	net := NewNetwork(Point{}, 1000)
	for i := int64(0); i < 4; i++ {
		_ = net.AddNode(i, float64(i)*0.001, 0)
	}
	_ = net.AddEdge(0, 1, 500, 50)
	_ = net.AddEdge(0, 2, 500, 50)
	_ = net.AddEdge(1, 3, 500, 50)
	_ = net.AddEdge(2, 3, 500, 50)
	net.Freeze()

	result := Betweenness(context.Background(), net, &BetweennessOptions{Normalized: false})

	for _, id := range []int64{1, 2} {
		if got := result.NodeScores[id]; math.Abs(got-0.5) > 1e-9 {
			t.Errorf("NodeScores[%d] = %v, expected 0.5", id, got)
		}
	}
}

func TestBetweenness_Normalization(t *testing.T) {
	// Same diamond, normalized: node scores scale by 1/((n-1)(n-2)) = 1/6.
	net := NewNetwork(Point{}, 1000)
	for i := int64(0); i < 4; i++ {
		_ = net.AddNode(i, float64(i)*0.001, 0)
	}
	_ = net.AddEdge(0, 1, 500, 50)
	_ = net.AddEdge(0, 2, 500, 50)
	_ = net.AddEdge(1, 3, 500, 50)
	_ = net.AddEdge(2, 3, 500, 50)
	net.Freeze()

	result := Betweenness(context.Background(), net, nil)

	want := 0.5 / 6
	for _, id := range []int64{1, 2} {
		if got := result.NodeScores[id]; math.Abs(got-want) > 1e-9 {
			t.Errorf("NodeScores[%d] = %v, expected %v", id, got, want)
		}
	}
}

func TestBetweenness_Cancelled(t *testing.T) {
	net := buildLine(t, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Betweenness(ctx, net, nil)
	if result.Sources != 0 {
		t.Errorf("Sources = %d on cancelled context, expected 0", result.Sources)
	}
}
