package analysis

import "errors"

var (
	ErrTooFewPoints = errors.New("analysis: need at least two points")
	ErrNonPositive  = errors.New("analysis: values must be positive")
	ErrComponent    = errors.New("analysis: component index out of range")
	ErrConfig       = errors.New("analysis: invalid configuration")
	ErrNotTunable   = errors.New("analysis: model has no tunable parameters")
)
