package pbptable

import "errors"

// Sentinel errors for play-by-play page parsing.
var (
	ErrNoTable       = errors.New("no play-by-play table")
	ErrBadClock      = errors.New("malformed clock")
	ErrBadScore      = errors.New("malformed score")
	ErrUnexpectedRow = errors.New("unexpected row shape")
)
