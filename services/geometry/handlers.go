// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package geometry

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/harshith74p/roadgraph/services/geometry/graph"
	"github.com/harshith74p/roadgraph/services/geometry/provider"
)

// ServiceVersion is the geometry service version.
const ServiceVersion = "0.1.0"

// Handlers contains the HTTP handlers for the geometry service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleAnalyzeNetwork handles POST /v1/geometry/analyze-network.
//
// Description:
//
//	Runs the full analysis pipeline (network stats, capacity,
//	bottlenecks, sampled alternative routes) for a circular region.
//
// Request Body:
//
//	NetworkAnalysisRequest
//
// Response:
//
//	200 OK: NetworkAnalysisResponse
//	400 Bad Request: invalid coordinates or radius
func (h *Handlers) HandleAnalyzeNetwork(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAnalyzeNetwork")

	var req NetworkAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	logger.Info("Analyzing network",
		"lat", req.Latitude, "lon", req.Longitude, "radius_m", req.RadiusM)

	resp, err := h.svc.AnalyzeNetworkCapacity(c.Request.Context(), req.Latitude, req.Longitude, req.RadiusM)
	if err != nil {
		h.writeServiceError(c, logger, err, "ANALYZE_FAILED")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleFindRoutes handles POST /v1/geometry/find-routes.
//
// Description:
//
//	Computes the fastest route between two points and, when
//	avoid_segments is supplied, an "avoiding" alternative. Disconnected
//	endpoints produce an empty routes list, not an error.
//
// Request Body:
//
//	RouteRequest
//
// Response:
//
//	200 OK: RouteResponse
//	400 Bad Request: invalid coordinates
//	404 Not Found: network has no nodes
func (h *Handlers) HandleFindRoutes(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleFindRoutes")

	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	logger.Info("Finding routes",
		"origin_lat", req.OriginLatitude, "origin_lon", req.OriginLongitude,
		"dest_lat", req.DestinationLatitude, "dest_lon", req.DestinationLongitude,
		"avoid_segments", len(req.AvoidSegments))

	resp, err := h.svc.FindOptimalRoutes(c.Request.Context(),
		req.OriginLatitude, req.OriginLongitude,
		req.DestinationLatitude, req.DestinationLongitude,
		req.AvoidSegments)
	if err != nil {
		h.writeServiceError(c, logger, err, "ROUTES_FAILED")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleSegmentGeometry handles GET /v1/geometry/segment/:id/geometry.
//
// Response:
//
//	200 OK: SegmentGeometry
//	404 Not Found: unknown segment ID
func (h *Handlers) HandleSegmentGeometry(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSegmentGeometry")

	segmentID := c.Param("id")
	geom, err := h.svc.GetSegmentGeometry(segmentID)
	if err != nil {
		if errors.Is(err, ErrSegmentNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "Segment geometry not found",
				Code:  "SEGMENT_NOT_FOUND",
			})
			return
		}
		logger.Error("Segment lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "SEGMENT_FAILED",
		})
		return
	}

	c.JSON(http.StatusOK, geom)
}

// HandleNetworkBottlenecks handles GET /v1/geometry/network/:lat/:lon/bottlenecks.
//
// Query Params:
//
//	radius_m - analysis radius in meters, default 2000
//
// Response:
//
//	200 OK: BottlenecksResponse
//	400 Bad Request: unparseable path parameters or invalid region
func (h *Handlers) HandleNetworkBottlenecks(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleNetworkBottlenecks")

	lat, errLat := strconv.ParseFloat(c.Param("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Param("lon"), 64)
	if errLat != nil || errLon != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid latitude or longitude",
			Code:  "INVALID_INPUT",
		})
		return
	}

	radiusM := 0.0
	if raw := c.Query("radius_m"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "Invalid radius_m",
				Code:  "INVALID_INPUT",
			})
			return
		}
		radiusM = v
	}

	resp, err := h.svc.NetworkBottlenecks(c.Request.Context(), lat, lon, radiusM)
	if err != nil {
		h.writeServiceError(c, logger, err, "BOTTLENECKS_FAILED")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /v1/geometry/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: "geometry",
		Version: ServiceVersion,
	})
}

// HandleReady handles GET /v1/geometry/ready.
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

// writeServiceError maps service errors onto HTTP status codes.
func (h *Handlers) writeServiceError(c *gin.Context, logger *slog.Logger, err error, defaultCode string) {
	statusCode := http.StatusInternalServerError
	errCode := defaultCode

	switch {
	case errors.Is(err, provider.ErrInvalidCoordinate),
		errors.Is(err, provider.ErrInvalidRadius):
		statusCode = http.StatusBadRequest
		errCode = "INVALID_INPUT"
	case errors.Is(err, graph.ErrEmptyNetwork):
		statusCode = http.StatusNotFound
		errCode = "EMPTY_NETWORK"
	}

	if statusCode >= http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
	} else {
		logger.Warn("Request rejected", "error", err)
	}
	c.JSON(statusCode, ErrorResponse{Error: err.Error(), Code: errCode})
}

// getOrCreateRequestID returns the X-Request-ID header, minting one when
// absent, and echoes it on the response.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
