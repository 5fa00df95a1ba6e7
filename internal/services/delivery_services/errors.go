package delivery_services

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("not authorized for this order")
	ErrLegAlreadyValidated = errors.New("delivery leg already validated")
	ErrInvalidHash         = errors.New("code hash must be 64 lowercase hex characters")
	ErrOrderNotAvailable   = errors.New("order is not open for acceptance")
	// ErrConcurrentValidation is returned when a leg kept changing under
	// every retry of a validation attempt.
	ErrConcurrentValidation = errors.New("delivery leg is being validated concurrently, try again")
)
