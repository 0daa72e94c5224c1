package models

import "errors"

// Common business errors. Handlers match these with errors.Is to pick
// the HTTP status; everything unclassified becomes a 500.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
