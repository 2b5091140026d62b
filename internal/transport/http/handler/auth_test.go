package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/storepulse/api/internal/application/auth"
	"github.com/storepulse/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) RequestOTP(ctx context.Context, email string) (*auth.RequestOTPResult, error) {
	args := m.Called(ctx, email)
	if r, _ := args.Get(0).(*auth.RequestOTPResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) VerifyOTP(ctx context.Context, email, code string) (*auth.VerifyOTPResult, error) {
	args := m.Called(ctx, email, code)
	if r, _ := args.Get(0).(*auth.VerifyOTPResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) RefreshTokens(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if r, _ := args.Get(0).(*auth.TokenPair); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestRequestOtp_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	rr := postJSON(t, h.RequestOtp, "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRequestOtp_MalformedEmailRejectedAtBoundary(t *testing.T) {
	svc := &mockAuthService{}
	h := NewAuthHandler(svc)

	rr := postJSON(t, h.RequestOtp, `{"email":"not-an-email"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	// The service must never see a malformed email.
	svc.AssertNotCalled(t, "RequestOTP", mock.Anything, mock.Anything)
}

func TestRequestOtp_RateLimited(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("RequestOTP", mock.Anything, "a@b.com").Return(nil, domain.ErrRateLimited)
	h := NewAuthHandler(svc)

	rr := postJSON(t, h.RequestOtp, `{"email":"a@b.com"}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestRequestOtp_Success(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("RequestOTP", mock.Anything, "a@b.com").Return(&auth.RequestOTPResult{ExpiresInMinutes: 15}, nil)
	h := NewAuthHandler(svc)

	rr := postJSON(t, h.RequestOtp, `{"email":"a@b.com"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var env OtpRequestedEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, 15, env.ExpiresIn)
}

func TestRequestOtp_StoreFailureDoesNotLeak(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("RequestOTP", mock.Anything, "a@b.com").
		Return(nil, domain.ErrStore)
	h := NewAuthHandler(svc)

	rr := postJSON(t, h.RequestOtp, `{"email":"a@b.com"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "dynamo")
	assert.Contains(t, rr.Body.String(), "internal server error")
}

func TestVerifyOtp_NonNumericCodeRejected(t *testing.T) {
	svc := &mockAuthService{}
	h := NewAuthHandler(svc)

	rr := postJSON(t, h.VerifyOtp, `{"email":"a@b.com","otp":"12a456"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "VerifyOTP", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyOtp_InvalidCode(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOTP", mock.Anything, "a@b.com", "123456").Return(nil, domain.ErrOtpInvalid)
	h := NewAuthHandler(svc)

	rr := postJSON(t, h.VerifyOtp, `{"email":"a@b.com","otp":"123456"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestVerifyOtp_Expired(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOTP", mock.Anything, "a@b.com", "123456").Return(nil, domain.ErrOtpExpired)
	h := NewAuthHandler(svc)

	rr := postJSON(t, h.VerifyOtp, `{"email":"a@b.com","otp":"123456"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyOtp_Success(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOTP", mock.Anything, "a@b.com", "123456").Return(&auth.VerifyOTPResult{
		User: &domain.User{UserID: "u1", Email: "a@b.com", IsVerified: true},
		Tokens: auth.TokenPair{
			AccessToken:  "acc",
			RefreshToken: "ref",
			ExpiresIn:    900,
		},
	}, nil)
	h := NewAuthHandler(svc)

	rr := postJSON(t, h.VerifyOtp, `{"email":"a@b.com","otp":"123456"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.True(t, env.Success)
	require.NotNil(t, env.User)
	assert.Equal(t, "u1", env.User.ID)
	require.NotNil(t, env.Tokens)
	assert.Equal(t, "acc", env.Tokens.AccessToken)
	assert.Equal(t, 900, env.Tokens.ExpiresIn)
}

func TestRefresh_MissingToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})
	rr := postJSON(t, h.Refresh, `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRefresh_InvalidToken(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("RefreshTokens", mock.Anything, "stale").Return(nil, domain.ErrTokenInvalid)
	h := NewAuthHandler(svc)

	rr := postJSON(t, h.Refresh, `{"refresh_token":"stale"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRefresh_Success(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("RefreshTokens", mock.Anything, "good").Return(&auth.TokenPair{
		AccessToken:  "new-acc",
		RefreshToken: "new-ref",
		ExpiresIn:    900,
	}, nil)
	h := NewAuthHandler(svc)

	rr := postJSON(t, h.Refresh, `{"refresh_token":"good"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var env TokensEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "new-acc", env.Tokens.AccessToken)
	assert.Equal(t, "new-ref", env.Tokens.RefreshToken)
}
