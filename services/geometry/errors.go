// Copyright (C) 2025 the Roadgraph Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package geometry

import "errors"

// Sentinel errors for the geometry service.
var (
	// ErrSegmentNotFound is returned when no geometry record exists for
	// the requested segment ID.
	ErrSegmentNotFound = errors.New("segment geometry not found")
)
