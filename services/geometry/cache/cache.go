// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cache provides a time-bounded compute cache for analysis
// results.
//
// The cache is best-effort: entries may be evicted early under capacity
// pressure and will simply be recomputed, but a lookup never returns a
// value stored under a different key. Expiry is checked on read, not
// swept proactively. The clock is injected so TTL behavior is
// deterministically testable.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultMaxEntries is the default capacity bound.
const DefaultMaxEntries = 64

// Clock returns the current time. Injected for tests.
type Clock func() time.Time

// Options configures a Cache.
type Options struct {
	// MaxEntries is the best-effort capacity bound. Default: 64
	MaxEntries int

	// Clock is the time source. Default: time.Now
	Clock Clock
}

// Option is a functional option for the cache.
type Option func(*Options)

// WithMaxEntries sets the capacity bound.
func WithMaxEntries(n int) Option {
	return func(o *Options) { o.MaxEntries = n }
}

// WithClock injects the time source.
func WithClock(clock Clock) Option {
	return func(o *Options) { o.Clock = clock }
}

// Stats is a snapshot of cache counters.
type Stats struct {
	EntryCount int
	Hits       int64
	Misses     int64
	Evictions  int64
}

type entry[V any] struct {
	value     V
	createdAt time.Time
	ttl       time.Duration
}

// Cache is a keyed TTL compute cache.
//
// Thread Safety: safe for concurrent use. Concurrent GetOrCompute calls
// for the same key collapse into one compute (single-flight); distinct
// keys proceed independently.
type Cache[V any] struct {
	opts   Options
	mu     sync.RWMutex
	items  map[string]entry[V]
	flight singleflight.Group

	hits      int64
	misses    int64
	evictions int64
}

// New creates a cache.
func New[V any](opts ...Option) *Cache[V] {
	options := Options{
		MaxEntries: DefaultMaxEntries,
		Clock:      time.Now,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.MaxEntries <= 0 {
		options.MaxEntries = DefaultMaxEntries
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	return &Cache[V]{
		opts:  options,
		items: make(map[string]entry[V]),
	}
}

// GetOrCompute returns the cached value for key if present and younger
// than ttl; otherwise it invokes compute, stores the result with a fresh
// timestamp, and returns it.
//
// A compute error is returned to the caller and nothing is stored.
func (c *Cache[V]) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (V, error)) (V, error) {
	if v, ok := c.get(key); ok {
		atomic.AddInt64(&c.hits, 1)
		return v, nil
	}
	atomic.AddInt64(&c.misses, 1)

	result, err, _ := c.flight.Do(key, func() (interface{}, error) {
		if v, ok := c.get(key); ok {
			return v, nil
		}
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.put(key, v, ttl)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}

// Len returns the current entry count.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns a snapshot of cache counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		EntryCount: len(c.items),
		Hits:       atomic.LoadInt64(&c.hits),
		Misses:     atomic.LoadInt64(&c.misses),
		Evictions:  atomic.LoadInt64(&c.evictions),
	}
}

// get returns an unexpired entry.
func (c *Cache[V]) get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	if e.ttl > 0 && c.opts.Clock().Sub(e.createdAt) >= e.ttl {
		c.mu.Lock()
		// Recheck: the entry may have been refreshed meanwhile.
		if cur, ok := c.items[key]; ok && cur.createdAt.Equal(e.createdAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.value, true
}

// put stores a value, evicting the oldest entries over the capacity bound.
func (c *Cache[V]) put(key string, v V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.Clock()
	c.items[key] = entry[V]{value: v, createdAt: now, ttl: ttl}

	for len(c.items) > c.opts.MaxEntries {
		oldestKey := ""
		var oldestAt time.Time
		for k, e := range c.items {
			if k == key {
				continue
			}
			if oldestKey == "" || e.createdAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.createdAt
			}
		}
		if oldestKey == "" {
			break
		}
		delete(c.items, oldestKey)
		atomic.AddInt64(&c.evictions, 1)
	}
}
