package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrStockNotFound       = errors.New("stock record not found")
	ErrProductUnresolvable = errors.New("product could not be resolved in catalog")
	ErrStorageFailure      = errors.New("storage failure")
)

// InvalidArgumentError names the caller-supplied field that failed validation.
type InvalidArgumentError struct {
	Field string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Field)
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

func InvalidArgument(field string) error { return &InvalidArgumentError{Field: field} }
