package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the booking core. Handlers map these onto HTTP status
// codes; services wrap them with context via fmt.Errorf("...: %w", ...).
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrCapacityConflict = errors.New("capacity conflict")
	ErrAuthorization    = errors.New("not authorized")
	ErrStorage          = errors.New("storage failure")
)

// NotFound wraps ErrNotFound with the missing resource's name.
func NotFound(resource string) error {
	return fmt.Errorf("%s: %w", resource, ErrNotFound)
}

// Validationf wraps ErrValidation with a formatted reason.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// Conflictf wraps ErrCapacityConflict with a formatted reason.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrCapacityConflict)...)
}

// Authorizationf wraps ErrAuthorization with a formatted reason.
func Authorizationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrAuthorization)...)
}

// Storagef wraps an underlying persistence error into ErrStorage, keeping the
// cause in the message. The cause itself is not wrapped so driver errors
// never leak through errors.Is checks at the boundary.
func Storagef(op string, cause error) error {
	return fmt.Errorf("%s: %v: %w", op, cause, ErrStorage)
}

func IsNotFound(err error) bool         { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool       { return errors.Is(err, ErrValidation) }
func IsCapacityConflict(err error) bool { return errors.Is(err, ErrCapacityConflict) }
func IsAuthorization(err error) bool    { return errors.Is(err, ErrAuthorization) }
