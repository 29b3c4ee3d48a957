// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package geometry

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all geometry routes with the router.
//
// Description:
//
//	Registers all /v1/geometry/* endpoints with the given Gin router
//	group. The router group should already have any required middleware
//	applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST /v1/geometry/analyze-network - Full network capacity analysis
//	POST /v1/geometry/find-routes - Shortest and avoiding routes
//	GET  /v1/geometry/segment/:id/geometry - Static segment geometry
//	GET  /v1/geometry/network/:lat/:lon/bottlenecks - Bottleneck list
//	GET  /v1/geometry/health - Health check
//	GET  /v1/geometry/ready - Readiness check
//
// Example:
//
//	service := geometry.NewService(geometry.DefaultServiceConfig())
//	handlers := geometry.NewHandlers(service)
//
//	v1 := router.Group("/v1")
//	geometry.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	geo := rg.Group("/geometry")
	{
		geo.POST("/analyze-network", handlers.HandleAnalyzeNetwork)
		geo.POST("/find-routes", handlers.HandleFindRoutes)

		geo.GET("/segment/:id/geometry", handlers.HandleSegmentGeometry)
		geo.GET("/network/:lat/:lon/bottlenecks", handlers.HandleNetworkBottlenecks)

		geo.GET("/health", handlers.HandleHealth)
		geo.GET("/ready", handlers.HandleReady)
	}
}
