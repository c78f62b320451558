package protocol

import (
	"errors"
	"fmt"
)

// Result errors shared by the codec, transports and the sensor engine.
// A nil error is the Ok result.
var (
	// ErrInvalidParam indicates bad caller input, or a decoded payload whose
	// size or discriminant is wrong.
	ErrInvalidParam = errors.New("invalid parameter")

	// ErrWrongState indicates an operation attempted before a transport is attached.
	ErrWrongState = errors.New("wrong state")

	// ErrNoData indicates nothing is available yet. It is a normal poll outcome.
	ErrNoData = errors.New("no data available")

	// ErrBadData indicates a protocol or integrity violation.
	ErrBadData = errors.New("bad data")

	// ErrRuntimeFailure indicates a bus-level transmission failure.
	ErrRuntimeFailure = errors.New("bus runtime failure")
)

// AppFailError carries an application failure code reported by the sensor
// firmware in a Status frame.
type AppFailError struct {
	Code uint16
}

func (e *AppFailError) Error() string {
	return fmt.Sprintf("device application failure (0x%04X)", e.Code)
}

// IsAppFailError returns true if the error is an AppFailError.
func IsAppFailError(err error) bool {
	var e *AppFailError
	return errors.As(err, &e)
}
