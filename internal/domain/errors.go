package domain

import "errors"

var (
	// Forward geocoding found no match for the query.
	ErrNotFound = errors.New("location not found")
	// Upstream provider failed (network, status, malformed payload).
	ErrProvider = errors.New("geocoding provider error")
	// Search query was blank.
	ErrEmptyQuery = errors.New("empty query")

	// Device positioning was refused by the user.
	ErrPermissionDenied = errors.New("position permission denied")
	// Device positioning capability is missing or failed.
	ErrPositionUnavailable = errors.New("position unavailable")
)
