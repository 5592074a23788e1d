package stats

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the kind shared by every validation failure.
var ErrInvalidInput = errors.New("invalid input")

// Validation failures. All match ErrInvalidInput via errors.Is.
var (
	ErrMissingName  = fmt.Errorf("%w: missing name", ErrInvalidInput)
	ErrInvalidName  = fmt.Errorf("%w: invalid name", ErrInvalidInput)
	ErrMissingTime  = fmt.Errorf("%w: missing time", ErrInvalidInput)
	ErrInvalidTime  = fmt.Errorf("%w: invalid time", ErrInvalidInput)
	ErrInvalidLevel = fmt.Errorf("%w: invalid level", ErrInvalidInput)
)
