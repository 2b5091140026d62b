// Package auth implements the OTP lifecycle and token issuance flows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/storepulse/api/internal/domain"
	jwtinfra "github.com/storepulse/api/internal/infrastructure/jwt"
	"github.com/storepulse/api/internal/pkg/otp"
	"github.com/storepulse/api/internal/pkg/secret"
)

// maxVerifyAttempts is the hard ceiling of failed code submissions per record.
const maxVerifyAttempts = 5

// OtpRepository is the slice of the OTP store the service consumes.
type OtpRepository interface {
	Create(ctx context.Context, email, otpHash string, expiresAt time.Time, userID string) (*domain.OtpRecord, error)
	FindLatestByEmail(ctx context.Context, email string) (*domain.OtpRecord, error)
	IncrementAttempts(ctx context.Context, email, otpID string) error
	MarkVerified(ctx context.Context, email, otpID string) error
	InvalidateAllUnverified(ctx context.Context, email string) error
	CountCreatedSince(ctx context.Context, email string, window time.Duration) (int, error)
}

// UserRepository is the slice of the identity store the service consumes.
type UserRepository interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, email string) (*domain.User, error)
	MarkVerifiedAndTouchLogin(ctx context.Context, userID string) (*domain.User, error)
}

// Mailer delivers the plaintext code to the user.
type Mailer interface {
	SendOtpEmail(to, code string) error
}

// TokenProvider mints and checks the signed token pair.
type TokenProvider interface {
	SignAccess(userID string) (string, error)
	SignRefresh(userID string) (string, error)
	VerifyRefresh(tokenStr string) (*jwtinfra.Claims, error)
	AccessTTL() time.Duration
}

// Options are the tunables of the OTP lifecycle.
type Options struct {
	OtpLength       int
	OtpExpiry       time.Duration
	RateLimitCount  int
	RateLimitWindow time.Duration
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // access token lifetime, seconds
}

type RequestOTPResult struct {
	ExpiresInMinutes int
}

type VerifyOTPResult struct {
	User   *domain.User
	Tokens TokenPair
}

type Service interface {
	RequestOTP(ctx context.Context, email string) (*RequestOTPResult, error)
	VerifyOTP(ctx context.Context, email, code string) (*VerifyOTPResult, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// Deps bundles the collaborators the service is constructed with.
type Deps struct {
	OtpRepo  OtpRepository
	UserRepo UserRepository
	Mailer   Mailer
	Tokens   TokenProvider
	Options  Options
}

type service struct {
	otpRepo  OtpRepository
	userRepo UserRepository
	mailer   Mailer
	tokens   TokenProvider
	opts     Options
}

func NewService(d Deps) Service {
	return &service{
		otpRepo:  d.OtpRepo,
		userRepo: d.UserRepo,
		mailer:   d.Mailer,
		tokens:   d.Tokens,
		opts:     d.Options,
	}
}

// RequestOTP generates a fresh code for email, supersedes any earlier
// unverified codes, stores the new record, and delivers the plaintext code.
func (s *service) RequestOTP(ctx context.Context, email string) (*RequestOTPResult, error) {
	email = normalizeEmail(email)

	recent, err := s.otpRepo.CountCreatedSince(ctx, email, s.opts.RateLimitWindow)
	if err != nil {
		return nil, storeFailure("count recent otp requests", err)
	}
	if recent >= s.opts.RateLimitCount {
		return nil, fmt.Errorf("%d requests in the last %s: %w",
			recent, s.opts.RateLimitWindow, domain.ErrRateLimited)
	}

	// Email is the natural key: find the identity or create it on first contact.
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !isNotFound(err) {
			return nil, storeFailure("look up user", err)
		}
		user, err = s.userRepo.Create(ctx, email)
		if err != nil {
			return nil, storeFailure("create user", err)
		}
	}

	code, err := otp.Generate(s.opts.OtpLength)
	if err != nil {
		return nil, err
	}
	hash, err := secret.Hash(code)
	if err != nil {
		return nil, fmt.Errorf("hash otp: %w", err)
	}

	// Invalidation must complete before the insert: a client that requested
	// twice and submits the first code has to be rejected.
	if err := s.otpRepo.InvalidateAllUnverified(ctx, email); err != nil {
		return nil, storeFailure("invalidate previous otps", err)
	}
	expiresAt := time.Now().UTC().Add(s.opts.OtpExpiry)
	if _, err := s.otpRepo.Create(ctx, email, hash, expiresAt, user.UserID); err != nil {
		return nil, storeFailure("store otp", err)
	}

	if err := s.mailer.SendOtpEmail(email, code); err != nil {
		slog.Error("otp email delivery failed", "email", email, "err", err)
		return nil, domain.ErrDeliveryFailed
	}

	return &RequestOTPResult{ExpiresInMinutes: int(s.opts.OtpExpiry.Minutes())}, nil
}

// VerifyOTP checks code against the latest record for email and, on success,
// marks the identity verified and mints a token pair.
func (s *service) VerifyOTP(ctx context.Context, email, code string) (*VerifyOTPResult, error) {
	email = normalizeEmail(email)

	rec, err := s.otpRepo.FindLatestByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrOtpNotFound
		}
		return nil, storeFailure("look up otp", err)
	}
	if rec.Verified {
		return nil, domain.ErrOtpAlreadyUsed
	}
	if time.Now().Unix() > rec.ExpiresAt {
		return nil, domain.ErrOtpExpired
	}
	if rec.Attempts >= maxVerifyAttempts {
		return nil, domain.ErrOtpAttemptsExhausted
	}

	if !secret.Verify(code, rec.OtpHash) {
		// A wrong code still burns one of the five attempts.
		if err := s.otpRepo.IncrementAttempts(ctx, rec.Email, rec.OtpID); err != nil {
			slog.Warn("failed to increment otp attempts", "email", email, "err", err)
		}
		return nil, domain.ErrOtpInvalid
	}

	// Conditional on verified=false, so a concurrent verify that already won
	// turns this request into an already-used failure instead of a second win.
	if err := s.otpRepo.MarkVerified(ctx, rec.Email, rec.OtpID); err != nil {
		if errors.Is(err, domain.ErrOtpAlreadyUsed) {
			return nil, err
		}
		return nil, storeFailure("mark otp verified", err)
	}

	if rec.UserID == "" {
		return nil, domain.ErrOtpRecordCorrupt
	}
	user, err := s.userRepo.MarkVerifiedAndTouchLogin(ctx, rec.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, storeFailure("update user", err)
	}

	tokens, err := s.mintPair(user.UserID)
	if err != nil {
		return nil, err
	}
	return &VerifyOTPResult{User: user, Tokens: *tokens}, nil
}

// RefreshTokens rotates the full pair: a valid refresh token yields a brand
// new access and refresh token.
func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	// A deleted account can still hold a cryptographically valid token.
	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, storeFailure("look up user", err)
	}
	return s.mintPair(user.UserID)
}

func (s *service) mintPair(userID string) (*TokenPair, error) {
	access, err := s.tokens.SignAccess(userID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.tokens.SignRefresh(userID)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// storeFailure hides the raw repository error behind domain.ErrStore while
// keeping it in the message for logs.
func storeFailure(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrStore)
}
