// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package provider

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harshith74p/roadgraph/services/geometry/graph"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// Default acquirer configuration values.
const (
	// DefaultMaxEntries is the default maximum number of cached networks.
	DefaultMaxEntries = 16

	// DefaultMaxAge is the default TTL for cached networks.
	DefaultMaxAge = time.Hour

	// DefaultFetchTimeout bounds the external map-data provider call.
	// On timeout the build falls back to grid synthesis.
	DefaultFetchTimeout = 10 * time.Second
)

// AcquirerOptions configures the Acquirer.
type AcquirerOptions struct {
	// MaxEntries is the maximum number of cached networks. Least
	// recently used entries are evicted beyond this. Default: 16
	MaxEntries int

	// MaxAge is the TTL for cached networks. Zero disables expiry.
	// Default: 1h
	MaxAge time.Duration

	// FetchTimeout bounds the provider call. Default: 10s
	FetchTimeout time.Duration

	// Clock returns the current time. Injected for tests.
	// Default: time.Now
	Clock func() time.Time
}

// Validate applies defaults for invalid values.
func (o *AcquirerOptions) Validate() {
	if o.MaxEntries <= 0 {
		o.MaxEntries = DefaultMaxEntries
	}
	if o.MaxAge < 0 {
		o.MaxAge = DefaultMaxAge
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
}

// DefaultAcquirerOptions returns sensible defaults.
func DefaultAcquirerOptions() AcquirerOptions {
	return AcquirerOptions{
		MaxEntries:   DefaultMaxEntries,
		MaxAge:       DefaultMaxAge,
		FetchTimeout: DefaultFetchTimeout,
		Clock:        time.Now,
	}
}

// AcquirerOption is a functional option for the Acquirer.
type AcquirerOption func(*AcquirerOptions)

// WithMaxEntries sets the cached network limit.
func WithMaxEntries(n int) AcquirerOption {
	return func(o *AcquirerOptions) { o.MaxEntries = n }
}

// WithMaxAge sets the network TTL.
func WithMaxAge(d time.Duration) AcquirerOption {
	return func(o *AcquirerOptions) { o.MaxAge = d }
}

// WithFetchTimeout sets the provider call deadline.
func WithFetchTimeout(d time.Duration) AcquirerOption {
	return func(o *AcquirerOptions) { o.FetchTimeout = d }
}

// WithClock injects the time source.
func WithClock(clock func() time.Time) AcquirerOption {
	return func(o *AcquirerOptions) { o.Clock = clock }
}

// networkEntry is one cached network.
type networkEntry struct {
	network    *graph.Network
	builtAt    time.Time
	lruElement *list.Element
}

// AcquireStats is a snapshot of acquirer counters.
type AcquireStats struct {
	EntryCount int
	Hits       int64
	Misses     int64
	Builds     int64
	Fallbacks  int64
	Evictions  int64
}

// Acquirer obtains road networks for (center, radius) regions, caching
// built networks per rounded cache key.
//
// On a miss it fetches from the configured Provider; on provider failure,
// timeout, or absence it synthesizes a deterministic grid, so Acquire
// never fails for valid input. Concurrent acquisitions for the same key
// collapse into a single build (single-flight); the per-key build holds
// no cross-key lock while fetching.
//
// Thread Safety: safe for concurrent use.
type Acquirer struct {
	provider Provider
	opts     AcquirerOptions

	mu      sync.RWMutex
	entries map[string]*networkEntry
	lru     *list.List
	flight  singleflight.Group

	hits      int64
	misses    int64
	builds    int64
	fallbacks int64
	evictions int64
}

// NewAcquirer creates an Acquirer around the given provider.
//
// A nil provider is valid and means "provider absent": every build
// synthesizes the fallback grid.
func NewAcquirer(p Provider, opts ...AcquirerOption) *Acquirer {
	options := DefaultAcquirerOptions()
	for _, opt := range opts {
		opt(&options)
	}
	options.Validate()

	if err := initMetrics(); err != nil {
		slog.Warn("Acquirer metrics unavailable", "error", err)
	}

	return &Acquirer{
		provider: p,
		opts:     options,
		entries:  make(map[string]*networkEntry),
		lru:      list.New(),
	}
}

// CacheKey builds the cache key for a center and radius: latitude and
// longitude rounded to 4 decimal degrees, radius truncated to an integer.
func CacheKey(center graph.Point, radiusM float64) string {
	return fmt.Sprintf("network_%.4f_%.4f_%d", center.Lat, center.Lon, int(radiusM))
}

// Acquire returns the road network for the region, building it on a cache
// miss.
//
// Errors:
//
//	ErrInvalidCoordinate - center out of range or non-finite
//	ErrInvalidRadius - radius non-positive or non-finite
//
// Provider failures are not errors: the fallback grid is returned instead.
func (a *Acquirer) Acquire(ctx context.Context, center graph.Point, radiusM float64) (*graph.Network, error) {
	if err := validateRegion(center, radiusM); err != nil {
		return nil, err
	}
	key := CacheKey(center, radiusM)

	start := a.opts.Clock()
	ctx, span := acquireTracer.Start(ctx, "Acquirer.Acquire",
		trace.WithAttributes(attribute.String("cache_key", key)),
	)
	defer span.End()

	if net, ok := a.get(key); ok {
		atomic.AddInt64(&a.hits, 1)
		if acquireHits != nil {
			acquireHits.Add(ctx, 1)
		}
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return net, nil
	}
	atomic.AddInt64(&a.misses, 1)
	if acquireMisses != nil {
		acquireMisses.Add(ctx, 1)
	}

	// Single-flight: one build per key. The build holds no lock on the
	// entry map while the provider call is in flight.
	result, err, _ := a.flight.Do(key, func() (interface{}, error) {
		if net, ok := a.get(key); ok {
			return net, nil
		}
		net := a.build(ctx, center, radiusM)
		a.insert(key, net)
		return net, nil
	})
	if err != nil {
		// build never returns an error; singleflight contract only.
		return nil, err
	}

	if acquireLatency != nil {
		acquireLatency.Record(ctx, a.opts.Clock().Sub(start).Seconds())
	}
	span.SetAttributes(attribute.Bool("cache_hit", false))
	return result.(*graph.Network), nil
}

// Stats returns a snapshot of acquirer counters.
func (a *Acquirer) Stats() AcquireStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return AcquireStats{
		EntryCount: len(a.entries),
		Hits:       atomic.LoadInt64(&a.hits),
		Misses:     atomic.LoadInt64(&a.misses),
		Builds:     atomic.LoadInt64(&a.builds),
		Fallbacks:  atomic.LoadInt64(&a.fallbacks),
		Evictions:  atomic.LoadInt64(&a.evictions),
	}
}

// get returns a cached, unexpired network.
func (a *Acquirer) get(key string) (*graph.Network, bool) {
	a.mu.RLock()
	entry, ok := a.entries[key]
	if !ok {
		a.mu.RUnlock()
		return nil, false
	}
	if a.opts.MaxAge > 0 && a.opts.Clock().Sub(entry.builtAt) > a.opts.MaxAge {
		a.mu.RUnlock()
		a.removeExpired(key)
		return nil, false
	}
	net := entry.network
	a.mu.RUnlock()

	a.mu.Lock()
	if e, ok := a.entries[key]; ok && e.lruElement != nil {
		a.lru.MoveToFront(e.lruElement)
	}
	a.mu.Unlock()

	return net, true
}

// build fetches from the provider or synthesizes the fallback grid.
// It never fails: every provider problem degrades to synthesis.
func (a *Acquirer) build(ctx context.Context, center graph.Point, radiusM float64) *graph.Network {
	atomic.AddInt64(&a.builds, 1)
	if acquireBuilds != nil {
		acquireBuilds.Add(ctx, 1)
	}

	if a.provider != nil {
		fetchCtx, cancel := context.WithTimeout(ctx, a.opts.FetchTimeout)
		net, err := a.provider.FetchDrivableNetwork(fetchCtx, center, radiusM)
		cancel()
		if err == nil && net != nil && net.NodeCount() > 0 {
			slog.Info("Road network fetched",
				slog.Int("nodes", net.NodeCount()),
				slog.Int("edges", net.EdgeCount()),
				slog.Float64("radius_m", radiusM),
			)
			return net
		}
		slog.Warn("Map-data provider failed, synthesizing grid network",
			slog.Any("error", err),
			slog.Float64("lat", center.Lat),
			slog.Float64("lon", center.Lon),
		)
	}

	atomic.AddInt64(&a.fallbacks, 1)
	if acquireFallbacks != nil {
		acquireFallbacks.Add(ctx, 1)
	}
	return SynthesizeGrid(center, radiusM)
}

// insert stores a built network, evicting LRU entries over the limit.
func (a *Acquirer) insert(key string, net *graph.Network) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.entries[key]; ok {
		return
	}
	for len(a.entries) >= a.opts.MaxEntries {
		back := a.lru.Back()
		if back == nil {
			break
		}
		oldKey := back.Value.(string)
		a.lru.Remove(back)
		delete(a.entries, oldKey)
		atomic.AddInt64(&a.evictions, 1)
	}

	a.entries[key] = &networkEntry{
		network:    net,
		builtAt:    a.opts.Clock(),
		lruElement: a.lru.PushFront(key),
	}
}

// removeExpired drops an expired entry.
func (a *Acquirer) removeExpired(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry, ok := a.entries[key]
	if !ok {
		return
	}
	if a.opts.MaxAge > 0 && a.opts.Clock().Sub(entry.builtAt) > a.opts.MaxAge {
		if entry.lruElement != nil {
			a.lru.Remove(entry.lruElement)
		}
		delete(a.entries, key)
	}
}

// ValidatePoint checks that a coordinate pair is finite and in range.
//
// Errors:
//
//	ErrInvalidCoordinate - latitude outside [-90, 90], longitude outside
//	[-180, 180], or either value NaN
func ValidatePoint(p graph.Point) error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) ||
		p.Lat < -90 || p.Lat > 90 ||
		p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidCoordinate, p.Lat, p.Lon)
	}
	return nil
}

// validateRegion checks coordinates and radius.
func validateRegion(center graph.Point, radiusM float64) error {
	if err := ValidatePoint(center); err != nil {
		return err
	}
	if math.IsNaN(radiusM) || math.IsInf(radiusM, 0) || radiusM <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRadius, radiusM)
	}
	return nil
}
