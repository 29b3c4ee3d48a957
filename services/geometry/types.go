// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package geometry

import (
	"github.com/harshith74p/roadgraph/services/geometry/bottleneck"
	"github.com/harshith74p/roadgraph/services/geometry/capacity"
)

// Location is a latitude/longitude pair in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NetworkAnalysisRequest is the request body for POST
// /v1/geometry/analyze-network.
type NetworkAnalysisRequest struct {
	// Latitude of the analysis center. Degrees, [-90, 90].
	Latitude float64 `json:"latitude"`

	// Longitude of the analysis center. Degrees, [-180, 180].
	Longitude float64 `json:"longitude"`

	// RadiusM is the analysis radius in meters. Default: 2000.
	RadiusM float64 `json:"radius_m"`
}

// NetworkStats summarizes the structure of an acquired network.
type NetworkStats struct {
	TotalNodes    int     `json:"total_nodes"`
	TotalEdges    int     `json:"total_edges"`
	TotalLengthKm float64 `json:"total_length_km"`
	AverageDegree float64 `json:"average_degree"`
	Density       float64 `json:"density"`

	// Connected reports whether the network is connected when edge
	// directions are ignored.
	Connected bool `json:"connectivity"`
}

// RouteSummary is a compact path+time pair used inside sampled
// alternative routes.
type RouteSummary struct {
	Path       []string `json:"path"`
	TravelTime float64  `json:"travel_time"`
}

// AlternativeRoute pairs a sampled primary route with its
// midpoint-edge-removed alternative.
type AlternativeRoute struct {
	OriginNode       string       `json:"origin_node"`
	DestinationNode  string       `json:"destination_node"`
	PrimaryRoute     RouteSummary `json:"primary_route"`
	AlternativeRoute RouteSummary `json:"alternative_route"`

	// TimeDifference is alternative minus primary travel time, seconds.
	TimeDifference float64 `json:"time_difference"`
}

// NetworkAnalysisResponse is the response for POST
// /v1/geometry/analyze-network.
type NetworkAnalysisResponse struct {
	Location          Location            `json:"location"`
	RadiusM           float64             `json:"radius_m"`
	NetworkStats      *NetworkStats       `json:"network_stats"`
	CapacityAnalysis  *capacity.Analysis  `json:"capacity_analysis"`
	Bottlenecks       []bottleneck.Report `json:"bottlenecks"`
	AlternativeRoutes []AlternativeRoute  `json:"alternative_routes"`
	Timestamp         string              `json:"timestamp"`
}

// RouteRequest is the request body for POST /v1/geometry/find-routes.
type RouteRequest struct {
	OriginLatitude       float64 `json:"origin_latitude"`
	OriginLongitude      float64 `json:"origin_longitude"`
	DestinationLatitude  float64 `json:"destination_latitude"`
	DestinationLongitude float64 `json:"destination_longitude"`

	// AvoidSegments lists segment IDs to route around. There is no
	// segment-to-edge mapping; see Service.FindOptimalRoutes for the
	// actual behavior when this is non-empty.
	AvoidSegments []string `json:"avoid_segments"`
}

// RouteInfo is one computed route in a RouteResponse.
type RouteInfo struct {
	// RouteType is "fastest" or "avoiding_congestion".
	RouteType string `json:"route_type"`

	// PathNodes is the ordered node ID sequence.
	PathNodes []string `json:"path_nodes"`

	// TravelTimeSeconds is the total travel time.
	TravelTimeSeconds float64 `json:"travel_time_seconds"`

	// DistanceMeters is the total distance.
	DistanceMeters float64 `json:"distance_meters"`

	// Coordinates is the [lon, lat] pair per path node.
	Coordinates [][]float64 `json:"coordinates"`
}

// RouteResponse is the response for POST /v1/geometry/find-routes.
//
// Routes is empty (not an error) when the snapped origin and destination
// are disconnected.
type RouteResponse struct {
	Origin            Location    `json:"origin"`
	Destination       Location    `json:"destination"`
	Routes            []RouteInfo `json:"routes"`
	AnalysisTimestamp string      `json:"analysis_timestamp"`
}

// SegmentGeometry is a static geometry record for a managed traffic
// segment.
type SegmentGeometry struct {
	SegmentID    string   `json:"segment_id"`
	StartPoint   Location `json:"start_point"`
	EndPoint     Location `json:"end_point"`
	LengthMeters float64  `json:"length_meters"`
	Lanes        int      `json:"lanes"`
	SpeedLimit   float64  `json:"speed_limit"`
	RoadType     string   `json:"road_type"`
}

// BottlenecksResponse is the response for GET
// /v1/geometry/network/:lat/:lon/bottlenecks.
type BottlenecksResponse struct {
	Location    Location            `json:"location"`
	Bottlenecks []bottleneck.Report `json:"bottlenecks"`
	Timestamp   string              `json:"timestamp"`
}

// ErrorResponse is the error body returned by all handlers.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the response for GET /v1/geometry/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
