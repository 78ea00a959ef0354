package physics

import (
	"errors"
	"fmt"
)

var ErrUnknownParam = errors.New("physics: unknown parameter")

// setParam assigns value to the named field.
func setParam(fields map[string]*float64, name string, value float64) error {
	p, ok := fields[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	*p = value
	return nil
}
