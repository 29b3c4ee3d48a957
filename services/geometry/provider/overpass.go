// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/harshith74p/roadgraph/services/geometry/graph"
)

// Overpass defaults.
const (
	// DefaultOverpassURL is the public Overpass API interpreter endpoint.
	DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

	// DefaultSpeedKPH is assumed for ways without a usable maxspeed tag.
	DefaultSpeedKPH = 50.0

	// mphToKPH converts statute miles per hour to km/h.
	mphToKPH = 1.609344
)

// drivableHighways is the set of highway classes included in the drivable
// network, mirroring OSM "drive" network semantics.
var drivableHighways = map[string]bool{
	"motorway": true, "motorway_link": true,
	"trunk": true, "trunk_link": true,
	"primary": true, "primary_link": true,
	"secondary": true, "secondary_link": true,
	"tertiary": true, "tertiary_link": true,
	"unclassified": true, "residential": true,
	"living_street": true, "service": true,
}

// OverpassOptions configures the Overpass provider.
type OverpassOptions struct {
	// BaseURL is the interpreter endpoint. Default: DefaultOverpassURL
	BaseURL string

	// HTTPClient is the client used for requests. Default: a client
	// with a 30s overall timeout; per-call deadlines come from ctx.
	HTTPClient *http.Client

	// DefaultSpeedKPH is the speed assumed when a way has no usable
	// maxspeed tag. Default: 50
	DefaultSpeedKPH float64
}

// OverpassOption is a functional option for the Overpass provider.
type OverpassOption func(*OverpassOptions)

// WithBaseURL overrides the interpreter endpoint.
func WithBaseURL(u string) OverpassOption {
	return func(o *OverpassOptions) { o.BaseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) OverpassOption {
	return func(o *OverpassOptions) { o.HTTPClient = c }
}

// WithDefaultSpeed overrides the speed assumed for untagged ways.
func WithDefaultSpeed(kph float64) OverpassOption {
	return func(o *OverpassOptions) { o.DefaultSpeedKPH = kph }
}

// OverpassProvider fetches drivable road networks from the Overpass API.
//
// Thread Safety: safe for concurrent use.
type OverpassProvider struct {
	opts OverpassOptions
}

// NewOverpassProvider creates an Overpass-backed map-data provider.
func NewOverpassProvider(opts ...OverpassOption) *OverpassProvider {
	options := OverpassOptions{
		BaseURL:         DefaultOverpassURL,
		HTTPClient:      &http.Client{Timeout: 30 * time.Second},
		DefaultSpeedKPH: DefaultSpeedKPH,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &OverpassProvider{opts: options}
}

// overpassResponse is the subset of the Overpass JSON output we consume.
type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   float64           `json:"lat"`
	Lon   float64           `json:"lon"`
	Nodes []int64           `json:"nodes"`
	Tags  map[string]string `json:"tags"`
}

// FetchDrivableNetwork queries Overpass for drivable ways within the
// radius and assembles a frozen network.
//
// Way segments between consecutive way nodes become directed edges with
// haversine lengths; oneway ways get a single direction, everything else
// both. Speed comes from the maxspeed tag (mph converted), defaulting to
// DefaultSpeedKPH.
//
// Errors: everything wraps ErrProviderUnavailable; the caller is expected
// to fall back to grid synthesis.
func (p *OverpassProvider) FetchDrivableNetwork(ctx context.Context, center graph.Point, radiusM float64) (*graph.Network, error) {
	query := fmt.Sprintf(
		`[out:json][timeout:25];way["highway"](around:%.0f,%.6f,%.6f);(._;>;);out body;`,
		radiusM, center.Lat, center.Lon,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.opts.BaseURL,
		strings.NewReader(url.Values{"data": {query}}.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: overpass status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrProviderUnavailable, err)
	}

	net, err := p.assemble(center, radiusM, &decoded)
	if err != nil {
		return nil, err
	}
	return net, nil
}

// assemble builds a network from decoded Overpass elements.
func (p *OverpassProvider) assemble(center graph.Point, radiusM float64, decoded *overpassResponse) (*graph.Network, error) {
	net := graph.NewNetwork(center, radiusM)

	for _, el := range decoded.Elements {
		if el.Type != "node" {
			continue
		}
		if err := net.AddNode(el.ID, el.Lat, el.Lon); err != nil {
			// Overpass can emit a node twice across ways.
			continue
		}
	}

	for _, el := range decoded.Elements {
		if el.Type != "way" || !drivableHighways[el.Tags["highway"]] {
			continue
		}
		speed := p.waySpeedKPH(el.Tags)
		oneway := el.Tags["oneway"] == "yes" || el.Tags["oneway"] == "1"

		for i := 0; i+1 < len(el.Nodes); i++ {
			from, okF := net.Node(el.Nodes[i])
			to, okT := net.Node(el.Nodes[i+1])
			if !okF || !okT {
				continue
			}
			length := graph.HaversineM(from.Lat, from.Lon, to.Lat, to.Lon)
			if length <= 0 {
				continue
			}
			_ = net.AddEdge(from.ID, to.ID, length, speed)
			if !oneway {
				_ = net.AddEdge(to.ID, from.ID, length, speed)
			}
		}
	}

	if net.NodeCount() == 0 || net.EdgeCount() == 0 {
		return nil, fmt.Errorf("%w: no drivable ways within radius", ErrProviderUnavailable)
	}

	net.Freeze()
	return net, nil
}

// waySpeedKPH parses the maxspeed tag, handling plain km/h values and
// "NN mph". Unparseable or missing tags get the configured default.
func (p *OverpassProvider) waySpeedKPH(tags map[string]string) float64 {
	raw := strings.TrimSpace(tags["maxspeed"])
	if raw == "" {
		return p.opts.DefaultSpeedKPH
	}
	if strings.HasSuffix(raw, "mph") {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(raw, "mph")), 64)
		if err != nil || v <= 0 {
			return p.opts.DefaultSpeedKPH
		}
		return v * mphToKPH
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return p.opts.DefaultSpeedKPH
	}
	return v
}
