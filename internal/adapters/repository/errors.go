package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("game not found")
	ErrInvalidLimit = errors.New("invalid swing limit")
	ErrNilResult    = errors.New("nil game result")
)
