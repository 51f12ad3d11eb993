package tableio

import "errors"

// Sentinel errors for row, probability and manifest files.
var (
	ErrMissingColumn = errors.New("missing column")
	ErrBadValue      = errors.New("bad value")
	ErrBadManifest   = errors.New("bad manifest")
)
