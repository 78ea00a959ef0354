package special

import "errors"

var (
	ErrBranch     = errors.New("special: branch must be 0 or -1")
	ErrDomain     = errors.New("special: argument outside the domain")
	ErrOrder      = errors.New("special: derivative order must be 0..3")
	ErrDegenerate = errors.New("special: leading coefficient is zero")
	ErrNoConverge = errors.New("special: iteration did not converge")
)
