package service

import "errors"

// Errors returned by the services. The HTTP layer maps each to a status;
// anything else is treated as internal.
var (
	ErrInvalidInput    = errors.New("invalid_input")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not_found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidToken    = errors.New("invalid_token")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrDelivery        = errors.New("delivery_failed")
)
