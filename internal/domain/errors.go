package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking
// infrastructure details.
var (
	// Generic collaborator outcomes.
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	// ErrStore wraps any repository failure so raw storage errors never reach
	// the boundary.
	ErrStore = errors.New("storage failure")

	// OTP lifecycle.
	ErrRateLimited          = errors.New("too many OTP requests")
	ErrOtpNotFound          = errors.New("no OTP found for this email")
	ErrOtpAlreadyUsed       = errors.New("OTP already used")
	ErrOtpExpired           = errors.New("OTP has expired")
	ErrOtpAttemptsExhausted = errors.New("maximum verification attempts exceeded")
	ErrOtpInvalid           = errors.New("invalid OTP")
	ErrOtpRecordCorrupt     = errors.New("invalid OTP record")

	// Tokens and identity.
	ErrTokenInvalid     = errors.New("invalid or expired token")
	ErrIdentityNotFound = errors.New("user not found")

	// Delivery.
	ErrDeliveryFailed = errors.New("failed to send OTP email")
)
