package utils

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrExecSequential runs every function in order, even after a failure, and returns all
// errors combined. Used where each step releases a resource that must not be skipped.
func ErrExecSequential(functions ...func() error) error {
	var multErr error

	for _, one := range functions {
		if err := one(); err != nil {
			multErr = multierror.Append(multErr, err)
		}
	}

	return multErr
}

// ErrExecFormat formats the error returned from a function according to the provided format string.
func ErrExecFormat(format string, function func() error) func() error {
	return func() error {
		if err := function(); err != nil {
			return fmt.Errorf(format, err)
		}
		return nil
	}
}
