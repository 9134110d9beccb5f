package application

import "errors"

var (
	// ErrNotFound is returned when the requested alarm does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidPassword is returned when password verification fails. It is
	// always recoverable; callers re-prompt rather than abort.
	ErrInvalidPassword = errors.New("application: invalid password")
	// ErrNotRinging is returned when a ring operation is invoked with no
	// active ring session.
	ErrNotRinging = errors.New("application: no alarm is ringing")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
