package constraint

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Validation failure kinds. A *ValidationError unwraps to exactly one of them.
var (
	ErrUnknownField     = errors.New("unknown field")
	ErrOperatorMismatch = errors.New("operator not allowed for field type")
	ErrTypeCoercion     = errors.New("value cannot be parsed as field type")
)

// ValidationError rejects a single constraint. It is recoverable: the constraint is left out of
// compilation and the rest of the set still applies.
type ValidationError struct {
	Kind     error
	Field    string
	Operator string
	Value    string
	Reason   string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid constraint [%s %s %s]: %s", e.Field, e.Operator, e.Value, e.Kind)
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// Rejected unpacks the validation errors aggregated by Build.
func Rejected(err error) []*ValidationError {
	if err == nil {
		return nil
	}

	var errs []error
	var merr *multierror.Error
	if errors.As(err, &merr) {
		errs = merr.Errors
	} else {
		errs = []error{err}
	}

	rejected := make([]*ValidationError, 0, len(errs))
	for _, one := range errs {
		var verr *ValidationError
		if errors.As(one, &verr) {
			rejected = append(rejected, verr)
		}
	}
	return rejected
}
