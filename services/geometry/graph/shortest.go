// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import (
	"container/heap"
	"fmt"
)

// Path is the result of a shortest-path computation.
type Path struct {
	// Nodes is the ordered node sequence from origin to destination,
	// both endpoints included.
	Nodes []int64

	// EdgeIndexes holds the arena index of each traversed edge,
	// len(Nodes)-1 entries.
	EdgeIndexes []int

	// TravelTimeS is the summed travel time in seconds.
	TravelTimeS float64

	// DistanceM is the summed edge length in meters.
	DistanceM float64
}

// pqItem is a priority-queue entry for Dijkstra searches.
type pqItem struct {
	node int64
	dist float64
}

// pq is a min-heap of pqItem ordered by dist.
type pq []pqItem

func (q pq) Len() int            { return len(q) }
func (q pq) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q pq) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *pq) Push(x interface{}) { *q = append(*q, x.(pqItem)) }
func (q *pq) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// ShortestPath computes the minimum-travel-time path between two nodes on
// a view, using Dijkstra's algorithm (all travel times are non-negative).
//
// Edges excluded from the view are treated as absent. The underlying
// network is never modified.
//
// Errors:
//
//	ErrNodeNotFound - origin or dest is not a node of the network
//	ErrNoPath - dest is not reachable from origin
func ShortestPath(v *View, origin, dest int64) (*Path, error) {
	net := v.net
	if _, ok := net.nodes[origin]; !ok {
		return nil, fmt.Errorf("%w: origin %d", ErrNodeNotFound, origin)
	}
	if _, ok := net.nodes[dest]; !ok {
		return nil, fmt.Errorf("%w: destination %d", ErrNodeNotFound, dest)
	}

	dist := map[int64]float64{origin: 0}
	prevEdge := make(map[int64]int)
	settled := make(map[int64]bool)

	q := &pq{{node: origin, dist: 0}}
	for q.Len() > 0 {
		item := heap.Pop(q).(pqItem)
		u := item.node
		if settled[u] {
			continue
		}
		settled[u] = true
		if u == dest {
			break
		}

		for _, ei := range net.out[u] {
			if v.Excluded(ei) {
				continue
			}
			e := net.edges[ei]
			nd := dist[u] + e.TravelTimeS
			if cur, ok := dist[e.To]; !ok || nd < cur {
				dist[e.To] = nd
				prevEdge[e.To] = ei
				heap.Push(q, pqItem{node: e.To, dist: nd})
			}
		}
	}

	total, ok := dist[dest]
	if !ok || (!settled[dest] && origin != dest) {
		return nil, ErrNoPath
	}

	// Walk predecessor edges back from dest.
	var edgeIdxs []int
	for at := dest; at != origin; {
		ei, ok := prevEdge[at]
		if !ok {
			return nil, ErrNoPath
		}
		edgeIdxs = append(edgeIdxs, ei)
		at = net.edges[ei].From
	}
	// Reverse into origin->dest order.
	for i, j := 0, len(edgeIdxs)-1; i < j; i, j = i+1, j-1 {
		edgeIdxs[i], edgeIdxs[j] = edgeIdxs[j], edgeIdxs[i]
	}

	nodes := make([]int64, 0, len(edgeIdxs)+1)
	nodes = append(nodes, origin)
	var distanceM float64
	for _, ei := range edgeIdxs {
		e := net.edges[ei]
		nodes = append(nodes, e.To)
		distanceM += e.LengthM
	}

	return &Path{
		Nodes:       nodes,
		EdgeIndexes: edgeIdxs,
		TravelTimeS: total,
		DistanceM:   distanceM,
	}, nil
}
