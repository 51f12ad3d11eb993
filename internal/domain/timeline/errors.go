package timeline

import "errors"

// Sentinel errors for timeline building.
var (
	ErrInvalidEvent = errors.New("invalid event")
)
