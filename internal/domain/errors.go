package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Verification-flow errors. Callers distinguish these to decide whether the
// same code can be retried (it never can once a verify attempt consumed it).
var (
	// ErrDuplicateRequest: a code is already outstanding for this phone;
	// the caller must wait for it to be consumed or to expire.
	ErrDuplicateRequest = errors.New("verification code already sent")
	// ErrDeliveryFailed: the SMS could not be delivered; no code was stored.
	ErrDeliveryFailed = errors.New("verification code delivery failed")
	// ErrCodeExpired covers both "never sent" and "expired or already consumed".
	ErrCodeExpired = errors.New("verification code expired or missing")
	// ErrCodeMismatch: a code existed but did not match; it has been consumed.
	ErrCodeMismatch = errors.New("verification code mismatch")
)
