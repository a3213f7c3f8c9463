package http

import (
	"net/http"

	"github.com/NathanHTC/Authentication/internal/auth/service"
	"github.com/NathanHTC/Authentication/pkg/authsdk"
	"github.com/NathanHTC/Authentication/pkg/httpx"
)

type SessionHandler struct {
	Sessions *service.SessionManager
	Cookies  CookieConfig
}

// HandleSignup godoc
//
//	@Summary		Sign up
//	@Description	Registers a new account. No tokens are issued; sign in afterwards.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.CredentialsRequest	true	"email and password"
//	@Success		200		{object}	authsdk.Message				"User created successfully!"
//	@Failure		400		{object}	authsdk.Message				"invalid input, or the email is taken (type warning)"
//	@Failure		500		{object}	authsdk.Message
//	@Router			/auth/signup [post].
func (h *SessionHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CredentialsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}

	if _, err := h.Sessions.Signup(r.Context(), req.Email, req.Password); err != nil {
		writeError(w, r, err, messages{
			service.ErrInvalidInput: "A valid email and a password are required",
			service.ErrConflict:     "User already exists! Try logging in.",
		})
		return
	}

	httpx.WriteMessage(w, http.StatusOK, httpx.TypeSuccess, "User created successfully!")
}

// HandleSignin godoc
//
//	@Summary		Sign in
//	@Description	Checks the password, returns an access token and sets the refreshToken cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.CredentialsRequest	true	"email and password"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.Message	"invalid input, or unknown email (type warning)"
//	@Failure		401		{object}	authsdk.Message	"wrong password"
//	@Failure		500		{object}	authsdk.Message
//	@Router			/auth/signin [post].
func (h *SessionHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CredentialsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}

	pair, err := h.Sessions.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err, messages{
			service.ErrInvalidInput: "A valid email and a password are required",
			service.ErrNotFound:     "User doesn't exist! Try signing up.",
		})
		return
	}

	h.Cookies.setRefreshCookie(w, pair.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		Message:     authsdk.Message{Type: httpx.TypeSuccess, Message: "Welcome! You are signed in"},
		AccessToken: pair.AccessToken,
	})
}

// HandleRefresh godoc
//
//	@Summary		Refresh the access token
//	@Description	Rotates the refreshToken cookie and returns a new access token. A refresh token
//	@Description	that has already been rotated is rejected with 403.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.TokenResponse
//	@Failure		401	{object}	authsdk.Message	"missing, invalid or expired refresh token"
//	@Failure		403	{object}	authsdk.Message	"superseded refresh token"
//	@Failure		500	{object}	authsdk.Message
//	@Router			/auth/refresh_token [post].
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	pair, err := h.Sessions.Refresh(r.Context(), refreshCookie(r))
	if err != nil {
		writeError(w, r, err, messages{
			service.ErrUnauthenticated: "No refresh token",
			service.ErrInvalidToken:    "Invalid refresh token!",
		})
		return
	}

	h.Cookies.setRefreshCookie(w, pair.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		Message:     authsdk.Message{Type: httpx.TypeSuccess, Message: "Refreshed successfully!"},
		AccessToken: pair.AccessToken,
	})
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Clears the refreshToken cookie. Always succeeds.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.Message
//	@Router			/auth/logout [post].
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	_ = h.Sessions.Logout(r.Context(), refreshCookie(r))

	h.Cookies.clearRefreshCookie(w)
	httpx.WriteMessage(w, http.StatusOK, httpx.TypeSuccess, "Logged out successfully!")
}
