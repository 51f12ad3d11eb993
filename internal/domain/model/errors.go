package model

import "errors"

// Sentinel errors for model validation.
var (
	ErrUnknownKind     = errors.New("unknown event kind")
	ErrKindMismatch    = errors.New("event kind does not match payload")
	ErrMissingPayload  = errors.New("event has no payload")
	ErrInvalidWinner   = errors.New("invalid winner")
	ErrMisalignedTable = errors.New("timeline and series are not aligned")
)
