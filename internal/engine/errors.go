package engine

import "github.com/tilengo/tilengo/internal/gfx"

// Every failing mutator records its error in the last-error slot and
// leaves all state unchanged.
var (
	ErrIndexOutOfRange  = gfx.ErrIndexOutOfRange
	ErrInvalidReference = gfx.ErrInvalidReference
	ErrWrongSize        = gfx.ErrWrongSize
)

// fail records err as the last error and returns it.
func (e *Engine) fail(err error) error {
	e.lastErr = err
	return err
}

// LastError returns the error recorded by the most recent failing call,
// or nil when the last call succeeded.
func (e *Engine) LastError() error {
	return e.lastErr
}
