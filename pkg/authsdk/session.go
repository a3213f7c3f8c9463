package authsdk

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// accessTokenLifetime mirrors the server's access token TTL. The server does
// not send expires_in, so the client assumes it.
const accessTokenLifetime = 15 * time.Minute

// Session represents a signed-in account with automatic token refresh.
type Session struct {
	client *SDKClient

	mu          sync.RWMutex
	accessToken string
	expiresAt   time.Time
}

// newSession creates a new authenticated session from a token response.
func newSession(client *SDKClient, tokenResp *TokenResponse) *Session {
	return &Session{
		client:      client,
		accessToken: tokenResp.AccessToken,
		// Subtract 30 seconds buffer to refresh before actual expiry
		expiresAt: time.Now().Add(accessTokenLifetime - 30*time.Second),
	}
}

// AccessToken returns the current access token without refreshing.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// Refresh rotates the refresh cookie and replaces the access token.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

// refreshLocked must be called with s.mu held for writing. The server
// accepts each refresh cookie once, so rotations must not overlap.
func (s *Session) refreshLocked(ctx context.Context) error {
	tokenResp, err := s.client.RefreshToken(ctx)
	if err != nil {
		return err
	}

	s.accessToken = tokenResp.AccessToken
	s.expiresAt = time.Now().Add(accessTokenLifetime - 30*time.Second)
	return nil
}

// Protected fetches the signed-in account from /auth/protected.
func (s *Session) Protected(ctx context.Context) (*ProtectedResponse, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.doRequest(ctx, http.MethodGet, "/auth/protected", nil, token)
	if err != nil {
		return nil, err
	}

	var out ProtectedResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendVerificationEmail asks the server to mail a verification link to the
// signed-in account.
func (s *Session) SendVerificationEmail(ctx context.Context) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}

	resp, err := s.client.doRequest(ctx, http.MethodPost, "/auth/send-verification-email", nil, token)
	if err != nil {
		return err
	}

	var msg Message
	return decodeJSON(resp, &msg, http.StatusOK)
}

// Logout clears the refresh cookie and forgets the access token.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.client.Logout(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
	return nil
}

// getValidToken returns a valid access token, automatically refreshing if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	// Token expired, need to refresh
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have refreshed)
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if err := s.refreshLocked(ctx); err != nil {
		return "", err
	}
	return s.accessToken, nil
}
