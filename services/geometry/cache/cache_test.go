// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCompute_ComputesOnce(t *testing.T) {
	c := New[string]()
	var calls int64
	compute := func(ctx context.Context) (string, error) {
		atomic.AddInt64(&calls, 1)
		return "value", nil
	}

	v1, err := c.GetOrCompute(context.Background(), "k", time.Hour, compute)
	require.NoError(t, err)
	v2, err := c.GetOrCompute(context.Background(), "k", time.Hour, compute)
	require.NoError(t, err)

	assert.Equal(t, "value", v1)
	assert.Equal(t, "value", v2)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestGetOrCompute_DistinctKeys(t *testing.T) {
	c := New[int]()

	a, err := c.GetOrCompute(context.Background(), "a", time.Hour,
		func(ctx context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	b, err := c.GetOrCompute(context.Background(), "b", time.Hour,
		func(ctx context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 2, c.Len())
}

func TestGetOrCompute_ExpiryRecomputes(t *testing.T) {
	var mu sync.Mutex
	now := time.Unix(1700000000, 0)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	c := New[int](WithClock(clock))
	var calls int64
	compute := func(ctx context.Context) (int, error) {
		return int(atomic.AddInt64(&calls, 1)), nil
	}

	v, err := c.GetOrCompute(context.Background(), "k", time.Hour, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// Just before the TTL: still cached.
	mu.Lock()
	now = now.Add(time.Hour - time.Second)
	mu.Unlock()
	v, err = c.GetOrCompute(context.Background(), "k", time.Hour, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// Past the TTL: recomputed.
	mu.Lock()
	now = now.Add(2 * time.Second)
	mu.Unlock()
	v, err = c.GetOrCompute(context.Background(), "k", time.Hour, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestGetOrCompute_ErrorNotCached(t *testing.T) {
	c := New[string]()
	boom := errors.New("compute failed")
	var calls int64

	_, err := c.GetOrCompute(context.Background(), "k", time.Hour,
		func(ctx context.Context) (string, error) {
			atomic.AddInt64(&calls, 1)
			return "", boom
		})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	// The next call recomputes rather than replaying the failure.
	v, err := c.GetOrCompute(context.Background(), "k", time.Hour,
		func(ctx context.Context) (string, error) {
			atomic.AddInt64(&calls, 1)
			return "ok", nil
		})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestGetOrCompute_Eviction(t *testing.T) {
	var mu sync.Mutex
	now := time.Unix(1700000000, 0)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	c := New[int](WithMaxEntries(2), WithClock(clock))
	for i, key := range []string{"a", "b", "c"} {
		i := i
		mu.Lock()
		now = now.Add(time.Minute)
		mu.Unlock()
		_, err := c.GetOrCompute(context.Background(), key, time.Hour,
			func(ctx context.Context) (int, error) { return i, nil })
		require.NoError(t, err)
	}

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(1), c.Stats().Evictions)

	// The oldest entry ("a") was evicted; "c" survives.
	var recomputed bool
	_, err := c.GetOrCompute(context.Background(), "a", time.Hour,
		func(ctx context.Context) (int, error) { recomputed = true; return 0, nil })
	require.NoError(t, err)
	assert.True(t, recomputed)

	_, err = c.GetOrCompute(context.Background(), "c", time.Hour,
		func(ctx context.Context) (int, error) {
			t.Error("entry c should still be cached")
			return 0, nil
		})
	require.NoError(t, err)
}

func TestGetOrCompute_SingleFlight(t *testing.T) {
	c := New[int]()
	var calls int64
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrCompute(context.Background(), "k", time.Hour,
				func(ctx context.Context) (int, error) {
					atomic.AddInt64(&calls, 1)
					<-release
					return 42, nil
				})
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}

	// Give the goroutines a moment to pile onto the same key.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}
