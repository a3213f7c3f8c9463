package authsdk

import "time"

// Message is the envelope carried by every response.
type Message struct {
	// Type is one of "success", "warning" or "error"
	Type string `json:"type"`

	// Message is a human-readable status line
	Message string `json:"message"`
}

// ============================================================================
// Requests
// ============================================================================

// CredentialsRequest is the body of /auth/signup and /auth/signin.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetEmailRequest is the body of /auth/send-password-reset-email.
type PasswordResetEmailRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the body of /auth/reset-password/{accountId}/{token}.
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// ============================================================================
// Responses
// ============================================================================

// TokenResponse is returned by signin and refresh. The refresh token is
// delivered separately in the refreshToken cookie.
type TokenResponse struct {
	Message

	// AccessToken is the bearer token for protected endpoints
	AccessToken string `json:"accessToken"`
}

// Account is the public view of an account.
type Account struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ProtectedResponse is returned by /auth/protected.
type ProtectedResponse struct {
	Message

	User Account `json:"user"`
}

// VerifyEmailResponse is returned by /auth/verify-email/{token}.
type VerifyEmailResponse struct {
	Message

	User Account `json:"user"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`
}
