package grid

import "errors"

var (
	// ErrInvalidSeed indicates a seed with a negative start or a non-positive length.
	ErrInvalidSeed = errors.New("grid: seed needs start >= 0 and length > 0")
	// ErrInvalidLength indicates a negative signal length.
	ErrInvalidLength = errors.New("grid: signal length must be >= 0")
	// ErrInvalidTolerance indicates a non-positive or non-finite snap tolerance.
	ErrInvalidTolerance = errors.New("grid: snap tolerance must be finite and > 0")
)
