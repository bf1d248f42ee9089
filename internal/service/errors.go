package service

import "errors"

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when the email or username is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrTransactionNotFound covers both a missing transaction and one owned by someone else.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrValidation wraps rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrExportUnavailable is returned when no export bucket is configured.
	ErrExportUnavailable = errors.New("export storage not configured")
)

func validationError(msg string) error {
	return &validationErr{msg: msg}
}

type validationErr struct {
	msg string
}

func (e *validationErr) Error() string { return e.msg }

func (e *validationErr) Unwrap() error { return ErrValidation }
