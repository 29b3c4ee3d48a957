// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package provider

import (
	"github.com/harshith74p/roadgraph/services/geometry/graph"
)

// Grid synthesis constants. The fallback must stay deterministic: a 5x5
// lattice with uniform 500 m / 50 km/h edges, so a synthesized network
// always has 25 nodes and 80 directed edges.
const (
	// GridSize is the lattice dimension (GridSize x GridSize nodes).
	GridSize = 5

	// GridEdgeLengthM is the uniform edge length in meters.
	GridEdgeLengthM = 500.0

	// GridSpeedKPH is the uniform speed limit in km/h.
	GridSpeedKPH = 50.0

	// gridBaseRadiusM and gridBaseSpacingDeg fix the angular spacing:
	// 0.005 degrees (roughly 500 m) at a 2000 m radius, scaled
	// proportionally for other radii.
	gridBaseRadiusM    = 2000.0
	gridBaseSpacingDeg = 0.005
)

// SynthesizeGrid builds the deterministic fallback network around a center
// point.
//
// Node IDs are row*GridSize+col, coordinates offset from the center by
// (row-2, col-2) spacing steps. Every horizontal and vertical neighbor
// pair is connected in both directions. The returned network is frozen.
func SynthesizeGrid(center graph.Point, radiusM float64) *graph.Network {
	n := graph.NewNetwork(center, radiusM)
	spacing := gridBaseSpacingDeg * radiusM / gridBaseRadiusM

	for i := 0; i < GridSize; i++ {
		for j := 0; j < GridSize; j++ {
			id := int64(i*GridSize + j)
			lat := center.Lat + float64(i-GridSize/2)*spacing
			lon := center.Lon + float64(j-GridSize/2)*spacing
			// AddNode cannot fail here: IDs are unique by construction.
			_ = n.AddNode(id, lat, lon)
		}
	}

	for i := 0; i < GridSize; i++ {
		for j := 0; j < GridSize; j++ {
			id := int64(i*GridSize + j)
			if j < GridSize-1 {
				east := int64(i*GridSize + j + 1)
				_ = n.AddEdge(id, east, GridEdgeLengthM, GridSpeedKPH)
				_ = n.AddEdge(east, id, GridEdgeLengthM, GridSpeedKPH)
			}
			if i < GridSize-1 {
				south := int64((i+1)*GridSize + j)
				_ = n.AddEdge(id, south, GridEdgeLengthM, GridSpeedKPH)
				_ = n.AddEdge(south, id, GridEdgeLengthM, GridSpeedKPH)
			}
		}
	}

	n.Freeze()
	return n
}
