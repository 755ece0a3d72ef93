package service

import (
	"errors"

	"gorm.io/gorm"
)

// Sentinel errors surfaced to handlers. Handlers translate these to HTTP
// statuses; anything else is treated as an internal failure.
var (
	// ErrNotFound covers missing conversations, messages and notifications,
	// including rows the caller is not allowed to see.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the caller is not allowed to perform the
	// operation (non-sender edit, non-admin group mutation).
	ErrForbidden = errors.New("operation not permitted")

	// ErrLastAdmin blocks removing the only remaining admin of a group.
	ErrLastAdmin = errors.New("cannot remove the last admin of a group conversation")
)

// ValidationError carries a machine-checkable reason string. It is raised
// before any I/O happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidation reports whether err is a pre-I/O validation failure.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// translateNotFound maps the storage layer's record-not-found onto the
// service sentinel so callers never need to import gorm.
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
