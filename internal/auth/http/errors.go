package http

import (
	"errors"
	"net/http"

	"github.com/NathanHTC/Authentication/internal/auth/service"
	"github.com/NathanHTC/Authentication/pkg/authsdk"
	"github.com/NathanHTC/Authentication/pkg/httpx"
	"github.com/NathanHTC/Authentication/pkg/slogx"
)

// messages overrides the default text per service error for one endpoint.
type messages map[error]string

var defaultMessages = messages{
	service.ErrInvalidInput:    "Invalid request",
	service.ErrConflict:        "Already exists",
	service.ErrNotFound:        "User doesn't exist",
	service.ErrUnauthorized:    "Incorrect password",
	service.ErrInvalidToken:    "Invalid token!",
	service.ErrUnauthenticated: "No token",
	service.ErrForbidden:       "Refresh token is no longer valid",
	service.ErrDelivery:        "Failed to send email",
}

// apiError maps a service error to its response. Unknown errors become a
// generic 500.
func apiError(err error, overrides messages) *authsdk.APIError {
	var (
		status int
		typ    = httpx.TypeError
		key    error
	)

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status, key = http.StatusBadRequest, service.ErrInvalidInput
	case errors.Is(err, service.ErrConflict):
		status, typ, key = http.StatusBadRequest, httpx.TypeWarning, service.ErrConflict
	case errors.Is(err, service.ErrNotFound):
		status, typ, key = http.StatusBadRequest, httpx.TypeWarning, service.ErrNotFound
	case errors.Is(err, service.ErrUnauthorized):
		status, key = http.StatusUnauthorized, service.ErrUnauthorized
	case errors.Is(err, service.ErrInvalidToken):
		status, key = http.StatusUnauthorized, service.ErrInvalidToken
	case errors.Is(err, service.ErrUnauthenticated):
		status, key = http.StatusUnauthorized, service.ErrUnauthenticated
	case errors.Is(err, service.ErrForbidden):
		status, key = http.StatusForbidden, service.ErrForbidden
	case errors.Is(err, service.ErrDelivery):
		status, key = http.StatusInternalServerError, service.ErrDelivery
	default:
		return authsdk.ErrServerError
	}

	msg, ok := overrides[key]
	if !ok {
		msg = defaultMessages[key]
	}
	return authsdk.NewAPIError(status, typ, msg)
}

// writeError logs unexpected errors and writes the mapped envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error, overrides messages) {
	apiErr := apiError(err, overrides)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
	}
	apiErr.WriteError(w)
}

// writeBadBody answers a request whose JSON body could not be decoded.
func writeBadBody(w http.ResponseWriter) {
	httpx.WriteMessage(w, http.StatusBadRequest, httpx.TypeError, "Invalid request body")
}
