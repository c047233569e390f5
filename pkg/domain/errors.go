package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports caller input that violates a lifecycle or
// consistency invariant. Recoverable: the caller can correct and retry.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a bundle lookup miss.
type NotFoundError struct {
	Kind ResourceKind
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ExternalServiceError wraps a failed call to a collaborator outside the
// registry (PID registration, blob archive). Fatal for the operation that
// triggered it.
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e ExternalServiceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
