package client

import "context"

// UserSummary is the API's view of an authenticated user.
type UserSummary struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	IsVerified  bool    `json:"is_verified"`
	CreatedAt   string  `json:"created_at"`
	LastLoginAt *string `json:"last_login_at"`
}

type otpRequestedResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"`
}

type verifyOtpResponse struct {
	Success bool         `json:"success"`
	User    *UserSummary `json:"user"`
	Tokens  *TokenPair   `json:"tokens"`
}

// RequestOTP asks the API to email a one-time passcode to email.
// Returns the code's lifetime in minutes.
func (c *Client) RequestOTP(ctx context.Context, email string) (int, error) {
	var resp otpRequestedResponse
	err := c.Post(ctx, "/v1/auth/request-otp", map[string]string{"email": email}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.ExpiresIn, nil
}

// VerifyOTP submits the code for email. On success the returned token pair is
// persisted in the client's token store and subsequent calls authenticate with it.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (*UserSummary, error) {
	var resp verifyOtpResponse
	err := c.Post(ctx, "/v1/auth/verify-otp",
		map[string]string{"email": email, "otp": code}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Tokens != nil {
		c.store.SetTokens(resp.Tokens)
	}
	return resp.User, nil
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*UserSummary, error) {
	var resp verifyOtpResponse
	if err := c.Get(ctx, "/v1/users/me", &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout discards the stored token pair. Purely client-side; the server keeps
// no session state for token-based auth.
func (c *Client) Logout() {
	c.store.ClearTokens()
}
