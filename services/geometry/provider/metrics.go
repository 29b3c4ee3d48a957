// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package provider

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Package-level tracer and meter for acquisition operations.
var (
	acquireTracer = otel.Tracer("roadgraph.provider")
	acquireMeter  = otel.Meter("roadgraph.provider")
)

// Metrics for network acquisition.
var (
	acquireHits      metric.Int64Counter
	acquireMisses    metric.Int64Counter
	acquireBuilds    metric.Int64Counter
	acquireFallbacks metric.Int64Counter
	acquireLatency   metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		acquireHits, err = acquireMeter.Int64Counter(
			"network_acquire_hits_total",
			metric.WithDescription("Total number of network cache hits"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		acquireMisses, err = acquireMeter.Int64Counter(
			"network_acquire_misses_total",
			metric.WithDescription("Total number of network cache misses"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		acquireBuilds, err = acquireMeter.Int64Counter(
			"network_acquire_builds_total",
			metric.WithDescription("Total number of network builds (fetch or synthesis)"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		acquireFallbacks, err = acquireMeter.Int64Counter(
			"network_acquire_fallbacks_total",
			metric.WithDescription("Total number of builds that fell back to grid synthesis"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		acquireLatency, err = acquireMeter.Float64Histogram(
			"network_acquire_duration_seconds",
			metric.WithDescription("Duration of network acquisition"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}
