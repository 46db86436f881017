package services

import "errors"

// Sentinel errors surfaced to handlers. Handlers translate these into
// HTTP status codes; everything else maps to an internal error.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrPastDate         = errors.New("cannot modify reservations for past dates")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrSelfDelete       = errors.New("cannot delete your own account")
	ErrShortIDExhausted = errors.New("no short id available")
)
