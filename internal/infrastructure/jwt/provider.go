package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/storepulse/api/internal/config"
	"github.com/storepulse/api/internal/domain"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims holds the JWT payload fields.
type Claims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs. Access and refresh tokens carry a
// token_type claim and are signed with distinct secrets; a token of one kind
// never verifies as the other, even when the signature checks out.
type Provider struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set")
	}
	return &Provider{
		accessSecret:  []byte(cfg.JWTAccessSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		accessTTL:     cfg.JWTAccessTTL,
		refreshTTL:    cfg.JWTRefreshTTL,
	}, nil
}

// AccessTTL is the configured access-token lifetime, exposed so responses can
// report expires_in.
func (p *Provider) AccessTTL() time.Duration { return p.accessTTL }

// SignAccess mints a short-lived access token for userID.
func (p *Provider) SignAccess(userID string) (string, error) {
	return p.sign(userID, TokenTypeAccess, p.accessSecret, p.accessTTL)
}

// SignRefresh mints a long-lived refresh token for userID.
func (p *Provider) SignRefresh(userID string) (string, error) {
	return p.sign(userID, TokenTypeRefresh, p.refreshSecret, p.refreshTTL)
}

// VerifyAccess validates an access token and returns its claims.
// Fails with domain.ErrTokenInvalid on bad signature, expiry, or wrong kind.
func (p *Provider) VerifyAccess(tokenStr string) (*Claims, error) {
	return p.verify(tokenStr, TokenTypeAccess, p.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (p *Provider) VerifyRefresh(tokenStr string) (*Claims, error) {
	return p.verify(tokenStr, TokenTypeRefresh, p.refreshSecret)
}

func (p *Provider) sign(userID, tokenType string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (p *Provider) verify(tokenStr, wantType string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s token: %w", wantType, domain.ErrTokenInvalid)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("bad %s token claims: %w", wantType, domain.ErrTokenInvalid)
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("token is not a %s token: %w", wantType, domain.ErrTokenInvalid)
	}
	return claims, nil
}
