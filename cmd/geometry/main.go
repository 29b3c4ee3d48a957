// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command geometry starts the road-network geometry API server.
//
// The server analyzes drivable road networks around a point (capacity
// estimates, betweenness bottlenecks) and plans shortest/alternative
// routes. Networks come from the Overpass API when reachable; otherwise a
// deterministic grid is synthesized so every request gets an answer.
//
// Usage:
//
//	go run ./cmd/geometry
//	go run ./cmd/geometry -port 9090
//	go run ./cmd/geometry -offline   # never call the map-data provider
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/geometry/health
//
//	# Analyze a region
//	curl -X POST http://localhost:8080/v1/geometry/analyze-network \
//	  -H "Content-Type: application/json" \
//	  -d '{"latitude": 37.7749, "longitude": -122.4194, "radius_m": 2000}'
//
//	# Find routes
//	curl -X POST http://localhost:8080/v1/geometry/find-routes \
//	  -H "Content-Type: application/json" \
//	  -d '{"origin_latitude": 37.7749, "origin_longitude": -122.4194,
//	       "destination_latitude": 37.8044, "destination_longitude": -122.2711}'
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/harshith74p/roadgraph/services/geometry"
	"github.com/harshith74p/roadgraph/services/geometry/provider"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	offline := flag.Bool("offline", false, "Skip the map-data provider and synthesize fallback networks")
	flag.Parse()

	// Set Gin mode
	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	setupMetrics()

	// Create service
	opts := []geometry.ServiceOption{}
	if !*offline {
		opts = append(opts, geometry.WithProvider(provider.NewOverpassProvider()))
	} else {
		slog.Info("Offline mode: every network will be synthesized")
	}
	svc := geometry.NewService(geometry.DefaultServiceConfig(), opts...)

	// Create handlers
	handlers := geometry.NewHandlers(svc)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	if *debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	geometry.RegisterRoutes(v1, handlers)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	printBanner(*port, !*offline)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down geometry server")
		os.Exit(0)
	}()

	// Start server
	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Starting geometry server", slog.String("address", addr))
	if err := router.Run(addr); err != nil {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// setupMetrics wires the otel meter provider to the prometheus registry
// backing /metrics.
func setupMetrics() {
	exporter, err := otelprom.New()
	if err != nil {
		slog.Warn("Prometheus exporter unavailable, metrics disabled", "error", err)
		return
	}
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)))
}

func printBanner(port int, providerEnabled bool) {
	providerStatus := "DISABLED (-offline, grid synthesis only)"
	if providerEnabled {
		providerStatus = "ENABLED (Overpass API with grid fallback)"
	}

	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                     ROADGRAPH GEOMETRY SERVER                     ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  Road-network capacity analysis and route planning.               ║
║  Map data: %-52s ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost:%d/v1/geometry/health               │  ║
║  │                                                             │  ║
║  │ # Analyze a region                                          │  ║
║  │ curl -X POST http://localhost:%d/v1/geometry/analyze-network\ │  ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"latitude": 37.7749, "longitude": -122.4194}'        │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
║  Endpoints:                                                       ║
║  ├── POST /v1/geometry/analyze-network                            ║
║  ├── POST /v1/geometry/find-routes                                ║
║  ├── GET  /v1/geometry/segment/:id/geometry                       ║
║  ├── GET  /v1/geometry/network/:lat/:lon/bottlenecks              ║
║  └── GET  /metrics                                                ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, providerStatus, port, port)
}
