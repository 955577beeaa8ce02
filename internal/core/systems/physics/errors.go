package physics

import "errors"

var (
	// ErrInvalidFriction reports a friction axis outside (0, 1]. It is never clamped.
	ErrInvalidFriction = errors.New("friction must be in (0, 1] on each axis")
	ErrInvalidStep     = errors.New("fixed step must be positive and finite")
	ErrInvalidDelta    = errors.New("frame delta must be non-negative and finite")
)
