package winprob

import (
	"errors"
	"fmt"
)

// ErrBoundaryInput marks a precondition violation that makes a game's
// series impossible to adjust. Every error Adjust returns wraps it.
var ErrBoundaryInput = errors.New("boundary input error")

// Specific boundary input errors.
var (
	ErrLengthMismatch     = fmt.Errorf("%w: win probability length does not match timeline", ErrBoundaryInput)
	ErrInvalidWinner      = fmt.Errorf("%w: invalid winner", ErrBoundaryInput)
	ErrInvalidProbability = fmt.Errorf("%w: probability outside [0, 100]", ErrBoundaryInput)
)
