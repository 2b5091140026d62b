package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/storepulse/api/internal/application/auth"
	"github.com/storepulse/api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OtpRequestedEnvelope wraps request-otp responses.
type OtpRequestedEnvelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"` // minutes
}

// UserSummary is the boundary-safe view of a user.
type UserSummary struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	IsVerified  bool    `json:"is_verified"`
	CreatedAt   string  `json:"created_at"`
	LastLoginAt *string `json:"last_login_at"`
}

// AuthEnvelope wraps verify-otp responses.
type AuthEnvelope struct {
	Success bool           `json:"success"`
	User    *UserSummary   `json:"user,omitempty"`
	Tokens  *auth.TokenPair `json:"tokens,omitempty"`
}

// TokensEnvelope wraps refresh responses.
type TokensEnvelope struct {
	Success bool            `json:"success"`
	Tokens  *auth.TokenPair `json:"tokens,omitempty"`
}

func toUserSummary(u *domain.User) *UserSummary {
	if u == nil {
		return nil
	}
	s := &UserSummary{
		ID:         u.UserID,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if u.LastLoginAt != nil {
		ll := u.LastLoginAt.Format("2006-01-02T15:04:05.000Z07:00")
		s.LastLoginAt = &ll
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Success: false, Error: msg})
}

// httpError maps a domain error to its fixed status class and message.
// Unknown and storage errors surface as a generic 500 so internals never leak.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, domain.ErrRateLimited.Error())
	case errors.Is(err, domain.ErrOtpNotFound),
		errors.Is(err, domain.ErrOtpAlreadyUsed),
		errors.Is(err, domain.ErrOtpExpired),
		errors.Is(err, domain.ErrOtpAttemptsExhausted),
		errors.Is(err, domain.ErrOtpRecordCorrupt),
		errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, unwrapMessage(err))
	case errors.Is(err, domain.ErrOtpInvalid),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrIdentityNotFound):
		writeError(w, http.StatusUnauthorized, unwrapMessage(err))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, domain.ErrNotFound.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// unwrapMessage returns the sentinel's canonical message rather than the
// wrapped chain, keeping one fixed message per error kind.
func unwrapMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrOtpNotFound, domain.ErrOtpAlreadyUsed, domain.ErrOtpExpired,
		domain.ErrOtpAttemptsExhausted, domain.ErrOtpRecordCorrupt,
		domain.ErrOtpInvalid, domain.ErrTokenInvalid, domain.ErrIdentityNotFound,
		domain.ErrBadRequest,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
