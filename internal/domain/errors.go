package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput marks validation failures detected before any mutation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyRegistered hides which store matched (identity vs profile).
	// Both stores are checked because they can diverge after a failed compensation.
	ErrAlreadyRegistered = errors.New("account already registered")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	// ErrExternal covers identity-store, payment-gateway and mailer failures.
	// A failed precondition check maps here, never to "does not exist".
	ErrExternal = errors.New("external service error")
	// ErrPaymentVerification is returned when a checkout signature does not match.
	ErrPaymentVerification = errors.New("payment verification failed")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTokenExpired        = errors.New("token expired")
	// ErrSubscriptionState guards transitions the activation workflow does not own.
	ErrSubscriptionState = errors.New("invalid subscription state")
)
