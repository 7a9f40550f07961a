package crud

import (
	"errors"

	"github.com/iliyamo/resource-router/internal/validation"
)

// ErrUnauthorized is returned when a request carries no valid credential.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError reports a path identifier or payload that cannot be
// accepted. Details lists the failed field rules when there are any.
type ValidationError struct {
	Message string
	Details validation.Errors
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string, details ...validation.FieldError) *ValidationError {
	return &ValidationError{Message: msg, Details: details}
}

// asValidationError turns validator output into a ValidationError and leaves
// every other error untouched.
func asValidationError(err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return &ValidationError{Message: verrs.Error(), Details: verrs}
	}
	return err
}
