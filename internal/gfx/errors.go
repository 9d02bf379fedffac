package gfx

import "errors"

// The recoverable error kinds surfaced by every mutating call. A failed
// call leaves the receiver unchanged.
var (
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrInvalidReference = errors.New("invalid reference")
	ErrWrongSize        = errors.New("wrong size")
)
