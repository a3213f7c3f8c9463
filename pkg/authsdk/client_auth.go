package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Signup registers a new account.
func (c *SDKClient) Signup(ctx context.Context, email, password string) (*Message, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/signup", CredentialsRequest{Email: email, Password: password}, "")
	if err != nil {
		return nil, err
	}

	var msg Message
	if err := decodeJSON(resp, &msg, http.StatusOK); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Signin authenticates and returns a Session. The refresh cookie is stored
// in the client's jar.
func (c *SDKClient) Signin(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/signin", CredentialsRequest{Email: email, Password: password}, "")
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, &tokenResp), nil
}

// RefreshToken rotates the refresh cookie held in the jar and returns a new
// access token.
func (c *SDKClient) RefreshToken(ctx context.Context) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/refresh_token", nil, "")
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// Logout clears the refresh cookie.
func (c *SDKClient) Logout(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/logout", nil, "")
	if err != nil {
		return err
	}

	var msg Message
	return decodeJSON(resp, &msg, http.StatusOK)
}

// SendPasswordResetEmail asks the server to mail a reset link.
func (c *SDKClient) SendPasswordResetEmail(ctx context.Context, email string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/send-password-reset-email", PasswordResetEmailRequest{Email: email}, "")
	if err != nil {
		return err
	}

	var msg Message
	return decodeJSON(resp, &msg, http.StatusOK)
}

// ResetPassword completes a reset with the id and token from the mailed link.
func (c *SDKClient) ResetPassword(ctx context.Context, accountID, token, newPassword string) error {
	path := "/auth/reset-password/" + url.PathEscape(accountID) + "/" + url.PathEscape(token)
	resp, err := c.doRequest(ctx, http.MethodPost, path, ResetPasswordRequest{NewPassword: newPassword}, "")
	if err != nil {
		return err
	}

	var msg Message
	return decodeJSON(resp, &msg, http.StatusOK)
}

// VerifyEmail confirms an address with the token from the mailed link.
func (c *SDKClient) VerifyEmail(ctx context.Context, token string) (*VerifyEmailResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/verify-email/"+url.PathEscape(token), nil, "")
	if err != nil {
		return nil, err
	}

	var out VerifyEmailResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
