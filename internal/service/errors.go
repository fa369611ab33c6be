package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of them,
// so callers can map it with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrAuth       = errors.New("unauthorized")
	ErrStorage    = errors.New("storage error")
)

var (
	ErrEmailRequired    = fmt.Errorf("%w: email is required", ErrValidation)
	ErrFullNameRequired = fmt.Errorf("%w: fullName is required", ErrValidation)
	ErrInvalidID        = fmt.Errorf("%w: invalid id", ErrValidation)
	ErrInvalidRole      = fmt.Errorf("%w: role must be admin or user", ErrValidation)
	ErrInvalidPrice     = fmt.Errorf("%w: price must be a number", ErrValidation)

	ErrUserNotFound = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrMealNotFound = fmt.Errorf("%w: meal not found", ErrNotFound)

	ErrInvalidSession = fmt.Errorf("%w: invalid or expired token", ErrAuth)
	ErrNotAdmin       = fmt.Errorf("%w: admin role required", ErrAuth)
)

func storageError(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
