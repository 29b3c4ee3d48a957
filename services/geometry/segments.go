// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package geometry

// segmentGeometries is the static table of managed traffic segments.
// Segment definitions come from the traffic-management side and are not
// part of the graph engine; the table is a stand-in until that
// integration exists.
var segmentGeometries = map[string]SegmentGeometry{
	"SEG001": {
		SegmentID:    "SEG001",
		StartPoint:   Location{Latitude: 37.7749, Longitude: -122.4194},
		EndPoint:     Location{Latitude: 37.7759, Longitude: -122.4184},
		LengthMeters: 1200,
		Lanes:        4,
		SpeedLimit:   65,
		RoadType:     "highway",
	},
}
