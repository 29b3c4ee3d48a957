// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package provider acquires road networks for a (center, radius) region.
//
// A Provider fetches a drivable-road graph from an external map-data
// source. The Acquirer wraps a Provider with a keyed cache, single-flight
// build collapsing, and a deterministic grid fallback so callers always
// receive a usable network: provider failure is logged, never surfaced.
package provider

import (
	"context"
	"errors"

	"github.com/harshith74p/roadgraph/services/geometry/graph"
)

// Sentinel errors for acquisition.
var (
	// ErrProviderUnavailable is returned by Provider implementations
	// when the upstream map-data source cannot be reached or returned
	// no usable data. The Acquirer treats it as a fallback trigger,
	// not a failure.
	ErrProviderUnavailable = errors.New("map-data provider unavailable")

	// ErrInvalidCoordinate is returned for latitudes outside [-90, 90]
	// or longitudes outside [-180, 180], or non-finite values.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrInvalidRadius is returned for non-positive or non-finite radii.
	ErrInvalidRadius = errors.New("invalid radius")
)

// Provider fetches a drivable-road network from an external map-data
// source.
//
// Implementations return nodes with coordinates and edges with at least a
// length; speed and travel-time augmentation is the implementation's
// responsibility (defaulting where the source has no speed metadata).
type Provider interface {
	// FetchDrivableNetwork returns a frozen network covering the
	// circular region, or an error wrapping ErrProviderUnavailable.
	FetchDrivableNetwork(ctx context.Context, center graph.Point, radiusM float64) (*graph.Network, error)
}
