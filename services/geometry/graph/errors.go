// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package graph provides the road-network graph model and algorithms.
//
// The graph package contains types for representing a drivable road network
// as a directed graph where nodes are intersections with geographic
// coordinates and edges are road segments carrying length, speed limit and
// a derived travel time.
//
// # Ownership Model
//
// A Network owns its nodes and edges. Nodes and edges MUST NOT be mutated
// after being added; edges are stored in an append-only arena and addressed
// by index so that overlays (see View) can exclude individual edges without
// copying or mutating the shared Network.
//
// # Thread Safety
//
// Network is NOT safe for concurrent use during building. It is designed
// for:
//   - Single-writer access during the build phase (AddNode, AddEdge calls)
//   - Read-only access after Freeze() is called
//
// After Freeze(), the network can be safely read from multiple goroutines.
//
// # Lifecycle
//
// A typical network lifecycle:
//  1. Create with NewNetwork(center, radiusM)
//  2. Build with AddNode() and AddEdge() calls
//  3. Call Freeze() to finalize
//  4. Query with Node(), ShortestPath(), Betweenness(), etc.
package graph

import "errors"

// Sentinel errors for network operations.
var (
	// ErrFrozen is returned when attempting to modify a frozen network.
	// Once Freeze() is called, the network becomes read-only and no
	// further nodes or edges can be added.
	ErrFrozen = errors.New("network is frozen and cannot be modified")

	// ErrNodeNotFound is returned when an edge or query references a
	// node that does not exist in the network.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNode is returned when adding a node with an ID that
	// already exists in the network.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrInvalidEdge is returned when an edge has a non-positive length
	// or speed. Travel time is derived from length and speed, so both
	// must be strictly positive.
	ErrInvalidEdge = errors.New("invalid edge attributes")

	// ErrEmptyNetwork is returned when an operation requires at least
	// one node (for example nearest-node snapping) and the network has
	// none.
	ErrEmptyNetwork = errors.New("network has no nodes")

	// ErrNoPath is returned when the origin and destination nodes are
	// not connected by any directed path.
	ErrNoPath = errors.New("no path between origin and destination")
)
