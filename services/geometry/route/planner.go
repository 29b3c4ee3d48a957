// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package route snaps geocoordinates to network nodes and plans routes.
package route

import (
	"errors"
	"math"

	"github.com/harshith74p/roadgraph/services/geometry/graph"
)

// Route is one computed route over a network.
type Route struct {
	// NodeIDs is the ordered node sequence, origin to destination.
	NodeIDs []int64

	// EdgeIndexes holds the arena index of each traversed edge. Used
	// for structural operations like midpoint-edge removal.
	EdgeIndexes []int

	// TravelTimeS is the total travel time in seconds.
	TravelTimeS float64

	// DistanceM is the total distance in meters.
	DistanceM float64

	// Coordinates is the [lon, lat] pair per node, for rendering.
	Coordinates [][]float64
}

// Planner computes routes over a single frozen network.
//
// All operations are read-only with respect to the network; "edge removed"
// computations run on throwaway View overlays.
//
// Thread Safety: safe for concurrent use.
type Planner struct {
	net *graph.Network
}

// NewPlanner creates a planner over a frozen network.
func NewPlanner(net *graph.Network) *Planner {
	return &Planner{net: net}
}

// NearestNode returns the ID of the network node closest to the point by
// great-circle distance (linear scan).
//
// Errors:
//
//	graph.ErrEmptyNetwork - the network has no nodes
func (p *Planner) NearestNode(lat, lon float64) (int64, error) {
	if p.net.NodeCount() == 0 {
		return 0, graph.ErrEmptyNetwork
	}

	best := int64(0)
	bestDist := math.Inf(1)
	for _, id := range p.net.NodeIDs() {
		node, _ := p.net.Node(id)
		d := graph.HaversineKm(lat, lon, node.Lat, node.Lon)
		if d < bestDist {
			bestDist = d
			best = id
		}
	}
	return best, nil
}

// Shortest snaps origin and destination to their nearest nodes and
// returns the minimum-travel-time route between them.
//
// Errors:
//
//	graph.ErrEmptyNetwork - the network has no nodes
//	graph.ErrNoPath - the snapped nodes are not connected
func (p *Planner) Shortest(origin, dest graph.Point) (*Route, error) {
	originNode, err := p.NearestNode(origin.Lat, origin.Lon)
	if err != nil {
		return nil, err
	}
	destNode, err := p.NearestNode(dest.Lat, dest.Lon)
	if err != nil {
		return nil, err
	}
	return p.ShortestBetween(originNode, destNode)
}

// ShortestBetween returns the minimum-travel-time route between two
// network nodes.
func (p *Planner) ShortestBetween(origin, dest int64) (*Route, error) {
	path, err := graph.ShortestPath(p.net.View(), origin, dest)
	if err != nil {
		return nil, err
	}
	return p.toRoute(path), nil
}

// AvoidingMidpoint recomputes the route with the midpoint edge of the
// primary path removed from a throwaway overlay.
//
// The avoid-segment IDs accepted by the service have no mapping onto
// graph edges, so this is the whole "avoiding" computation: one
// structural edge at the midpoint of the primary path is excluded and the
// search re-run. A 2-node primary has its single edge removed. Returns
// (nil, nil) when the primary path traverses no edges or when no path
// exists after removal; the shared network is never mutated.
func (p *Planner) AvoidingMidpoint(primary *Route) (*Route, error) {
	if primary == nil || len(primary.EdgeIndexes) == 0 {
		return nil, nil
	}

	mid := len(primary.NodeIDs) / 2
	if mid >= len(primary.EdgeIndexes) {
		mid = len(primary.EdgeIndexes) - 1
	}

	v := p.net.View()
	v.ExcludeEdge(primary.EdgeIndexes[mid])

	origin := primary.NodeIDs[0]
	dest := primary.NodeIDs[len(primary.NodeIDs)-1]
	path, err := graph.ShortestPath(v, origin, dest)
	if err != nil {
		if errors.Is(err, graph.ErrNoPath) {
			return nil, nil
		}
		return nil, err
	}
	return p.toRoute(path), nil
}

// toRoute converts a graph path into a Route with coordinates.
func (p *Planner) toRoute(path *graph.Path) *Route {
	coords := make([][]float64, 0, len(path.Nodes))
	for _, id := range path.Nodes {
		if node, ok := p.net.Node(id); ok {
			// GeoJSON ordering: [lon, lat].
			coords = append(coords, []float64{node.Lon, node.Lat})
		}
	}
	return &Route{
		NodeIDs:     path.Nodes,
		EdgeIndexes: path.EdgeIndexes,
		TravelTimeS: path.TravelTimeS,
		DistanceM:   path.DistanceM,
		Coordinates: coords,
	}
}
