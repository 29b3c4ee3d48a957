// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graph

import (
	"math"
	"testing"
)

func TestHaversineKm_Identity(t *testing.T) {
	points := []struct {
		lat, lon float64
	}{
		{0, 0},
		{37.7749, -122.4194},
		{-33.8688, 151.2093},
		{89.9, 179.9},
	}

	for _, p := range points {
		if d := HaversineKm(p.lat, p.lon, p.lat, p.lon); d != 0 {
			t.Errorf("HaversineKm(%v, %v, same) = %v, expected 0", p.lat, p.lon, d)
		}
	}
}

func TestHaversineKm_Symmetry(t *testing.T) {
	tests := []struct {
		lat1, lon1, lat2, lon2 float64
	}{
		{37.7749, -122.4194, 37.8044, -122.2711},
		{0, 0, 10, 10},
		{-45, 170, 45, -170},
	}

	for _, tc := range tests {
		ab := HaversineKm(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
		ba := HaversineKm(tc.lat2, tc.lon2, tc.lat1, tc.lon1)
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("asymmetric distance: %v vs %v", ab, ba)
		}
	}
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// San Francisco to Oakland, roughly 13.4 km.
	d := HaversineKm(37.7749, -122.4194, 37.8044, -122.2711)
	if d < 13 || d > 14 {
		t.Errorf("SF-Oakland distance = %v km, expected ~13.4", d)
	}
}

func TestHaversineM(t *testing.T) {
	km := HaversineKm(37.7749, -122.4194, 37.8044, -122.2711)
	m := HaversineM(37.7749, -122.4194, 37.8044, -122.2711)
	if math.Abs(m-km*1000) > 1e-6 {
		t.Errorf("HaversineM = %v, expected %v", m, km*1000)
	}
}
