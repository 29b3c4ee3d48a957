// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import (
	"fmt"
	"sort"
	"time"
)

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Node is an intersection in the road network.
//
// Nodes are immutable once added to a Network.
type Node struct {
	// ID is the stable identifier within the owning network.
	// Provider-backed networks use the upstream OSM node ID; synthesized
	// grids use row*size+col.
	ID int64

	// Lat is the latitude in decimal degrees.
	Lat float64

	// Lon is the longitude in decimal degrees.
	Lon float64
}

// Edge is a directed road segment between two nodes.
//
// A bidirectional road is represented as two opposing edges. Edges are
// immutable once added; TravelTimeS is derived from LengthM and SpeedKPH
// at AddEdge time and never updated afterward.
type Edge struct {
	// From is the source node ID.
	From int64

	// To is the target node ID.
	To int64

	// LengthM is the segment length in meters.
	LengthM float64

	// SpeedKPH is the speed limit in km/h.
	SpeedKPH float64

	// TravelTimeS is the free-flow traversal time in seconds,
	// LengthM / (SpeedKPH * 1000 / 3600).
	TravelTimeS float64
}

// Key returns the "from-to" identifier used in reports and responses.
func (e *Edge) Key() string {
	return fmt.Sprintf("%d-%d", e.From, e.To)
}

// Network is an immutable-after-Freeze road network built around a center
// point and radius.
//
// Thread Safety:
//
//	Network is NOT safe for concurrent use during building. After
//	Freeze() it is read-only and safe for concurrent readers.
type Network struct {
	center  Point
	radiusM float64

	// nodes maps node ID to Node.
	nodes map[int64]*Node

	// nodeIDs holds all node IDs in ascending order. Populated by
	// Freeze() for deterministic iteration.
	nodeIDs []int64

	// edges is the append-only edge arena. Edge indexes into this slice
	// are the unit of exclusion for View overlays.
	edges []*Edge

	// out and in map node ID to indexes into edges.
	out map[int64][]int
	in  map[int64][]int

	frozen bool

	// BuiltAtMilli is the Unix timestamp in milliseconds when Freeze()
	// was called. Zero if the network has not been frozen.
	BuiltAtMilli int64
}

// NewNetwork creates an empty network for the given center and radius.
func NewNetwork(center Point, radiusM float64) *Network {
	return &Network{
		center:  center,
		radiusM: radiusM,
		nodes:   make(map[int64]*Node),
		out:     make(map[int64][]int),
		in:      make(map[int64][]int),
	}
}

// Center returns the center point the network was built for.
func (n *Network) Center() Point { return n.center }

// RadiusM returns the radius in meters the network was built for.
func (n *Network) RadiusM() float64 { return n.radiusM }

// IsFrozen reports whether the network is read-only.
func (n *Network) IsFrozen() bool { return n.frozen }

// AddNode adds an intersection to the network.
//
// Errors:
//
//	ErrFrozen - the network has been frozen
//	ErrDuplicateNode - a node with this ID already exists
func (n *Network) AddNode(id int64, lat, lon float64) error {
	if n.frozen {
		return ErrFrozen
	}
	if _, ok := n.nodes[id]; ok {
		return ErrDuplicateNode
	}
	n.nodes[id] = &Node{ID: id, Lat: lat, Lon: lon}
	return nil
}

// AddEdge adds a directed road segment. Travel time is derived here and
// never recomputed.
//
// Errors:
//
//	ErrFrozen - the network has been frozen
//	ErrNodeNotFound - from or to does not exist
//	ErrInvalidEdge - non-positive length or speed
func (n *Network) AddEdge(from, to int64, lengthM, speedKPH float64) error {
	if n.frozen {
		return ErrFrozen
	}
	if _, ok := n.nodes[from]; !ok {
		return fmt.Errorf("%w: edge source %d", ErrNodeNotFound, from)
	}
	if _, ok := n.nodes[to]; !ok {
		return fmt.Errorf("%w: edge target %d", ErrNodeNotFound, to)
	}
	if lengthM <= 0 || speedKPH <= 0 {
		return fmt.Errorf("%w: length=%.1f speed=%.1f", ErrInvalidEdge, lengthM, speedKPH)
	}

	idx := len(n.edges)
	n.edges = append(n.edges, &Edge{
		From:        from,
		To:          to,
		LengthM:     lengthM,
		SpeedKPH:    speedKPH,
		TravelTimeS: lengthM / (speedKPH * 1000 / 3600),
	})
	n.out[from] = append(n.out[from], idx)
	n.in[to] = append(n.in[to], idx)
	return nil
}

// Freeze transitions the network to read-only mode.
//
// After Freeze(), AddNode and AddEdge return ErrFrozen and the network can
// be read from multiple goroutines concurrently. Node iteration order is
// fixed to ascending ID. Irreversible.
func (n *Network) Freeze() {
	if n.frozen {
		return
	}
	n.nodeIDs = make([]int64, 0, len(n.nodes))
	for id := range n.nodes {
		n.nodeIDs = append(n.nodeIDs, id)
	}
	sort.Slice(n.nodeIDs, func(i, j int) bool { return n.nodeIDs[i] < n.nodeIDs[j] })
	n.frozen = true
	n.BuiltAtMilli = time.Now().UnixMilli()
}

// Node returns the node with the given ID.
func (n *Network) Node(id int64) (*Node, bool) {
	node, ok := n.nodes[id]
	return node, ok
}

// NodeIDs returns all node IDs in ascending order. Only valid after
// Freeze(); returns nil on an unfrozen network.
//
// The returned slice is shared and must not be modified.
func (n *Network) NodeIDs() []int64 { return n.nodeIDs }

// NodeCount returns the number of nodes.
func (n *Network) NodeCount() int { return len(n.nodes) }

// EdgeCount returns the number of directed edges.
func (n *Network) EdgeCount() int { return len(n.edges) }

// Edge returns the edge at the given arena index.
func (n *Network) Edge(i int) *Edge { return n.edges[i] }

// Edges returns the edge arena. The returned slice is shared and must not
// be modified.
func (n *Network) Edges() []*Edge { return n.edges }

// OutEdges returns the arena indexes of edges leaving the given node.
// The returned slice is shared and must not be modified.
func (n *Network) OutEdges(id int64) []int { return n.out[id] }

// InEdges returns the arena indexes of edges entering the given node.
// The returned slice is shared and must not be modified.
func (n *Network) InEdges(id int64) []int { return n.in[id] }

// Degree returns the total degree (in + out) of the given node.
func (n *Network) Degree(id int64) int {
	return len(n.out[id]) + len(n.in[id])
}

// TotalLengthM returns the summed length of all directed edges in meters.
func (n *Network) TotalLengthM() float64 {
	var total float64
	for _, e := range n.edges {
		total += e.LengthM
	}
	return total
}

// View returns a read-only overlay of the network with no exclusions.
//
// Views exist so that "what if this edge were gone" computations (alternate
// routing) never touch the shared Network: exclusion is a bitset over the
// edge arena, not a structural mutation.
type View struct {
	net      *Network
	excluded []bool
}

// View creates an overlay over the network. The network should be frozen.
func (n *Network) View() *View {
	return &View{net: n}
}

// Network returns the underlying network.
func (v *View) Network() *Network { return v.net }

// ExcludeEdge marks the edge at the given arena index as absent in this
// view. The underlying network is not modified.
func (v *View) ExcludeEdge(i int) {
	if v.excluded == nil {
		v.excluded = make([]bool, len(v.net.edges))
	}
	if i >= 0 && i < len(v.excluded) {
		v.excluded[i] = true
	}
}

// Excluded reports whether the edge at the given index is excluded.
func (v *View) Excluded(i int) bool {
	return v.excluded != nil && i < len(v.excluded) && v.excluded[i]
}
