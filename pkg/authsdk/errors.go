package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/NathanHTC/Authentication/pkg/httpx"
)

// APIError is a non-2xx response. The server writes it with WriteError and
// the client decodes it back from the envelope.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Type is "warning" or "error"
	Type string `json:"type"`

	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Type, e.Message)
}

// WriteError writes the error envelope to w.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteMessage(w, e.StatusCode, e.Type, e.Message)
}

// NewAPIError creates an APIError.
func NewAPIError(statusCode int, typ, message string) *APIError {
	return &APIError{StatusCode: statusCode, Type: typ, Message: message}
}

// ErrServerError is the catch-all for unexpected failures.
var ErrServerError = &APIError{
	StatusCode: http.StatusInternalServerError,
	Type:       httpx.TypeError,
	Message:    "Internal server error",
}

// parseErrorResponse turns a non-2xx response into an *APIError. Returns nil
// for 2xx.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var msg Message
	if err := json.Unmarshal(body, &msg); err == nil && msg.Message != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Type:       msg.Type,
			Message:    msg.Message,
		}
	}

	// Fallback: create generic error from status code
	return &APIError{
		StatusCode: resp.StatusCode,
		Type:       httpx.TypeError,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
