// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package geometry provides the road-network geometry and routing service.
//
// The service exposes operations for:
//   - Analyzing road-network capacity and bottlenecks around a point
//   - Computing shortest and alternative routes between two points
//   - Looking up static segment geometry records
//
// Networks come from the provider package (external map data with a
// deterministic grid fallback); full analyses are cached with a TTL so
// nearby repeated queries do not recompute centrality.
package geometry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/harshith74p/roadgraph/services/geometry/bottleneck"
	"github.com/harshith74p/roadgraph/services/geometry/cache"
	"github.com/harshith74p/roadgraph/services/geometry/capacity"
	"github.com/harshith74p/roadgraph/services/geometry/graph"
	"github.com/harshith74p/roadgraph/services/geometry/provider"
	"github.com/harshith74p/roadgraph/services/geometry/route"
)

// ServiceConfig configures the geometry service.
type ServiceConfig struct {
	// DefaultRadiusM is the analysis radius used when a request does
	// not specify one. Default: 2000
	DefaultRadiusM float64

	// AnalysisTTL is how long full network analyses are cached.
	// Default: 1h
	AnalysisTTL time.Duration

	// MaxCachedAnalyses bounds the analysis cache. Default: 64
	MaxCachedAnalyses int

	// MaxCachedNetworks bounds the network cache. Default: 16
	MaxCachedNetworks int

	// NetworkTTL is how long built networks are cached. Default: 1h
	NetworkTTL time.Duration

	// FetchTimeout bounds the external map-data provider call.
	// Default: 10s
	FetchTimeout time.Duration
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		DefaultRadiusM:    2000,
		AnalysisTTL:       time.Hour,
		MaxCachedAnalyses: 64,
		MaxCachedNetworks: 16,
		NetworkTTL:        time.Hour,
		FetchTimeout:      10 * time.Second,
	}
}

// ServiceOption is a functional option for the service.
type ServiceOption func(*serviceDeps)

type serviceDeps struct {
	provider provider.Provider
	clock    func() time.Time
}

// WithProvider sets the map-data provider. A nil provider means every
// network is synthesized.
func WithProvider(p provider.Provider) ServiceOption {
	return func(d *serviceDeps) { d.provider = p }
}

// WithClock injects the time source used by caches and timestamps.
func WithClock(clock func() time.Time) ServiceOption {
	return func(d *serviceDeps) { d.clock = clock }
}

// Service is the road-network geometry and routing service.
//
// Thread Safety: safe for concurrent use. Networks and analysis results
// are immutable once built and shared across requests without copying.
type Service struct {
	config   ServiceConfig
	acquirer *provider.Acquirer
	analyses *cache.Cache[*NetworkAnalysisResponse]
	clock    func() time.Time
}

// NewService creates a geometry service.
//
// By default the service has no map-data provider and synthesizes every
// network; wire one with WithProvider.
func NewService(config ServiceConfig, opts ...ServiceOption) *Service {
	if config.DefaultRadiusM <= 0 {
		config.DefaultRadiusM = 2000
	}
	if config.AnalysisTTL <= 0 {
		config.AnalysisTTL = time.Hour
	}

	deps := serviceDeps{clock: time.Now}
	for _, opt := range opts {
		opt(&deps)
	}

	return &Service{
		config: config,
		acquirer: provider.NewAcquirer(deps.provider,
			provider.WithMaxEntries(config.MaxCachedNetworks),
			provider.WithMaxAge(config.NetworkTTL),
			provider.WithFetchTimeout(config.FetchTimeout),
			provider.WithClock(deps.clock),
		),
		analyses: cache.New[*NetworkAnalysisResponse](
			cache.WithMaxEntries(config.MaxCachedAnalyses),
			cache.WithClock(deps.clock),
		),
		clock: deps.clock,
	}
}

// AnalyzeNetworkCapacity runs the full analysis pipeline for the region:
// network stats, capacity estimation, bottleneck detection and sampled
// alternative routes.
//
// Results are cached for AnalysisTTL keyed by the rounded location and
// radius; a radius of zero uses the configured default.
//
// Errors:
//
//	provider.ErrInvalidCoordinate, provider.ErrInvalidRadius
func (s *Service) AnalyzeNetworkCapacity(ctx context.Context, lat, lon, radiusM float64) (*NetworkAnalysisResponse, error) {
	if radiusM == 0 {
		radiusM = s.config.DefaultRadiusM
	}

	key := fmt.Sprintf("geometry_analysis:%.4f:%.4f:%d", lat, lon, int(radiusM))
	return s.analyses.GetOrCompute(ctx, key, s.config.AnalysisTTL, func(ctx context.Context) (*NetworkAnalysisResponse, error) {
		return s.analyze(ctx, lat, lon, radiusM)
	})
}

// analyze performs one uncached analysis pass.
func (s *Service) analyze(ctx context.Context, lat, lon, radiusM float64) (*NetworkAnalysisResponse, error) {
	slog.Info("Analyzing network capacity",
		slog.Float64("lat", lat),
		slog.Float64("lon", lon),
		slog.Float64("radius_m", radiusM),
	)

	net, err := s.acquirer.Acquire(ctx, graph.Point{Lat: lat, Lon: lon}, radiusM)
	if err != nil {
		return nil, err
	}

	resp := &NetworkAnalysisResponse{
		Location:          Location{Latitude: lat, Longitude: lon},
		RadiusM:           radiusM,
		NetworkStats:      networkStats(net),
		CapacityAnalysis:  capacity.Estimate(net),
		Bottlenecks:       bottleneck.Find(ctx, net),
		AlternativeRoutes: sampleAlternatives(net),
		Timestamp:         s.clock().UTC().Format(time.RFC3339),
	}

	// Centrality is truncated when the context is cancelled mid-pass.
	// Surfacing the error keeps the partial analysis out of the cache.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// FindOptimalRoutes computes routes between two points.
//
// The network is acquired around the midpoint with a radius wide enough
// to cover the trip. The primary route is the fastest path between the
// snapped endpoints. When AvoidSegments is non-empty an "avoiding" route
// is added by removing the midpoint edge of the primary path on a
// throwaway overlay; the listed segment IDs have no mapping onto graph
// edges and do not influence which edge is removed.
//
// A disconnected origin/destination yields an empty Routes list, not an
// error.
//
// Errors:
//
//	provider.ErrInvalidCoordinate - any endpoint out of range
//	graph.ErrEmptyNetwork - the acquired network has no nodes
func (s *Service) FindOptimalRoutes(ctx context.Context, originLat, originLon, destLat, destLon float64, avoidSegments []string) (*RouteResponse, error) {
	// Each endpoint is checked on its own: two out-of-range latitudes can
	// average to an in-range midpoint.
	for _, p := range []graph.Point{
		{Lat: originLat, Lon: originLon},
		{Lat: destLat, Lon: destLon},
	} {
		if err := provider.ValidatePoint(p); err != nil {
			return nil, err
		}
	}

	centerLat := (originLat + destLat) / 2
	centerLon := (originLon + destLon) / 2
	distKm := graph.HaversineKm(originLat, originLon, destLat, destLon)
	radiusM := distKm * 1000 * 1.5
	if radiusM < 2000 {
		radiusM = 2000
	}

	net, err := s.acquirer.Acquire(ctx, graph.Point{Lat: centerLat, Lon: centerLon}, radiusM)
	if err != nil {
		return nil, err
	}

	resp := &RouteResponse{
		Origin:            Location{Latitude: originLat, Longitude: originLon},
		Destination:       Location{Latitude: destLat, Longitude: destLon},
		Routes:            []RouteInfo{},
		AnalysisTimestamp: s.clock().UTC().Format(time.RFC3339),
	}

	planner := route.NewPlanner(net)
	primary, err := planner.Shortest(
		graph.Point{Lat: originLat, Lon: originLon},
		graph.Point{Lat: destLat, Lon: destLon},
	)
	if err != nil {
		if errors.Is(err, graph.ErrNoPath) {
			slog.Warn("No path found between origin and destination",
				slog.Float64("origin_lat", originLat),
				slog.Float64("dest_lat", destLat),
			)
			return resp, nil
		}
		return nil, err
	}
	resp.Routes = append(resp.Routes, routeInfo("fastest", primary))

	if len(avoidSegments) > 0 {
		alt, err := planner.AvoidingMidpoint(primary)
		if err != nil {
			return nil, err
		}
		if alt != nil {
			resp.Routes = append(resp.Routes, routeInfo("avoiding_congestion", alt))
		}
	}

	return resp, nil
}

// GetSegmentGeometry looks up the static geometry record for a segment.
//
// Errors:
//
//	ErrSegmentNotFound
func (s *Service) GetSegmentGeometry(segmentID string) (*SegmentGeometry, error) {
	geom, ok := segmentGeometries[segmentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSegmentNotFound, segmentID)
	}
	return &geom, nil
}

// NetworkBottlenecks returns just the bottleneck list for a region,
// sharing the analysis cache with AnalyzeNetworkCapacity.
func (s *Service) NetworkBottlenecks(ctx context.Context, lat, lon, radiusM float64) (*BottlenecksResponse, error) {
	analysis, err := s.AnalyzeNetworkCapacity(ctx, lat, lon, radiusM)
	if err != nil {
		return nil, err
	}
	return &BottlenecksResponse{
		Location:    Location{Latitude: lat, Longitude: lon},
		Bottlenecks: analysis.Bottlenecks,
		Timestamp:   s.clock().UTC().Format(time.RFC3339),
	}, nil
}

// routeInfo converts a planner route into the response shape.
func routeInfo(routeType string, r *route.Route) RouteInfo {
	nodes := make([]string, len(r.NodeIDs))
	for i, id := range r.NodeIDs {
		nodes[i] = strconv.FormatInt(id, 10)
	}
	return RouteInfo{
		RouteType:         routeType,
		PathNodes:         nodes,
		TravelTimeSeconds: r.TravelTimeS,
		DistanceMeters:    r.DistanceM,
		Coordinates:       r.Coordinates,
	}
}

// networkStats summarizes the structure of a network.
func networkStats(net *graph.Network) *NetworkStats {
	stats := &NetworkStats{
		TotalNodes:    net.NodeCount(),
		TotalEdges:    net.EdgeCount(),
		TotalLengthKm: net.TotalLengthM() / 1000,
	}

	n := net.NodeCount()
	if n == 0 {
		return stats
	}

	var degreeSum int
	for _, id := range net.NodeIDs() {
		degreeSum += net.Degree(id)
	}
	stats.AverageDegree = float64(degreeSum) / float64(n)

	if n > 1 {
		stats.Density = float64(net.EdgeCount()) / float64(n*(n-1))
	}
	stats.Connected = isConnectedUndirected(net)
	return stats
}

// isConnectedUndirected reports whether every node is reachable from the
// first one when edge directions are ignored.
func isConnectedUndirected(net *graph.Network) bool {
	ids := net.NodeIDs()
	if len(ids) == 0 {
		return false
	}

	seen := map[int64]bool{ids[0]: true}
	stack := []int64{ids[0]}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, ei := range net.OutEdges(u) {
			if to := net.Edge(ei).To; !seen[to] {
				seen[to] = true
				stack = append(stack, to)
			}
		}
		for _, ei := range net.InEdges(u) {
			if from := net.Edge(ei).From; !seen[from] {
				seen[from] = true
				stack = append(stack, from)
			}
		}
	}
	return len(seen) == len(ids)
}

// sampleAlternatives probes the network with a few origin-destination
// pairs over the deterministic node ordering and records primary vs
// midpoint-edge-removed alternative travel times. Pairs with no path, or
// too short to have a midpoint edge, are skipped.
func sampleAlternatives(net *graph.Network) []AlternativeRoute {
	alternatives := []AlternativeRoute{}

	ids := net.NodeIDs()
	if len(ids) < 4 {
		return alternatives
	}

	pairs := [][2]int64{
		{ids[0], ids[len(ids)-1]},
		{ids[len(ids)/4], ids[3*len(ids)/4]},
	}

	planner := route.NewPlanner(net)
	for _, pair := range pairs {
		primary, err := planner.ShortestBetween(pair[0], pair[1])
		if err != nil {
			continue
		}
		// Sampling only considers paths long enough for a meaningful
		// midpoint; adjacent-node pairs are skipped.
		if len(primary.NodeIDs) <= 2 {
			continue
		}
		alt, err := planner.AvoidingMidpoint(primary)
		if err != nil || alt == nil {
			continue
		}
		alternatives = append(alternatives, AlternativeRoute{
			OriginNode:      strconv.FormatInt(pair[0], 10),
			DestinationNode: strconv.FormatInt(pair[1], 10),
			PrimaryRoute: RouteSummary{
				Path:       nodeStrings(primary.NodeIDs),
				TravelTime: primary.TravelTimeS,
			},
			AlternativeRoute: RouteSummary{
				Path:       nodeStrings(alt.NodeIDs),
				TravelTime: alt.TravelTimeS,
			},
			TimeDifference: alt.TravelTimeS - primary.TravelTimeS,
		})
	}
	return alternatives
}

// nodeStrings formats node IDs for response payloads.
func nodeStrings(ids []int64) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatInt(id, 10)
	}
	return out
}
