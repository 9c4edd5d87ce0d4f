package service

import "errors"

// Error taxonomy surfaced to the HTTP layer. Messages are deliberately generic.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrNotFound           = errors.New("todo not found")
	ErrInternal           = errors.New("internal error")
)

// ValidationError carries a caller-safe description of the invalid input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrValidation) match any ValidationError
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func validationError(msg string) error {
	return &ValidationError{Message: msg}
}
