package destination

import (
	"errors"
	"fmt"
)

// ErrNotMaterialized is returned when emission is asked for a result that carries no rows.
var ErrNotMaterialized = errors.New("result has no materialized rows, narrow the constraints to export it")

// EmissionError reports an output write failure. Earlier artifacts are never modified, and a
// failed emission removes whatever it had already put in place.
type EmissionError struct {
	Op   string
	Path string
	Err  error
}

func (e *EmissionError) Error() string {
	return fmt.Sprintf("failed to %s %s: %s", e.Op, e.Path, e.Err)
}

func (e *EmissionError) Unwrap() error {
	return e.Err
}
