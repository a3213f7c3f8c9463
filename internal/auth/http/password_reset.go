package http

import (
	"net/http"

	"github.com/NathanHTC/Authentication/internal/auth/service"
	"github.com/NathanHTC/Authentication/pkg/authsdk"
	"github.com/NathanHTC/Authentication/pkg/httpx"
)

type PasswordResetHandler struct {
	Resets *service.PasswordResetService
}

// HandleSendEmail godoc
//
//	@Summary		Send a password reset email
//	@Description	Mails a reset link valid for 15 minutes to the account's address.
//	@Tags			Password Reset
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.PasswordResetEmailRequest	true	"account email"
//	@Success		200		{object}	authsdk.Message
//	@Failure		400		{object}	authsdk.Message	"invalid email, or unknown account (type warning)"
//	@Failure		500		{object}	authsdk.Message	"mail delivery failed"
//	@Router			/auth/send-password-reset-email [post].
func (h *PasswordResetHandler) HandleSendEmail(w http.ResponseWriter, r *http.Request) {
	var req authsdk.PasswordResetEmailRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}

	if err := h.Resets.RequestReset(r.Context(), req.Email); err != nil {
		writeError(w, r, err, messages{
			service.ErrInvalidInput: "A valid email is required",
			service.ErrDelivery:     "Error sending email!",
		})
		return
	}

	httpx.WriteMessage(w, http.StatusOK, httpx.TypeSuccess, "Password reset link has been sent to your email!")
}

// HandleReset godoc
//
//	@Summary		Reset the password
//	@Description	Sets a new password using the id and token from the reset link. Each link works once.
//	@Tags			Password Reset
//	@Accept			json
//	@Produce		json
//	@Param			accountId	path		string							true	"account id"
//	@Param			token		path		string							true	"reset token"
//	@Param			body		body		authsdk.ResetPasswordRequest	true	"new password"
//	@Success		200			{object}	authsdk.Message
//	@Failure		400			{object}	authsdk.Message	"missing password, or unknown account (type warning)"
//	@Failure		401			{object}	authsdk.Message	"invalid, expired or used token"
//	@Failure		500			{object}	authsdk.Message
//	@Router			/auth/reset-password/{accountId}/{token} [post].
func (h *PasswordResetHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}

	err := h.Resets.CompleteReset(r.Context(), r.PathValue("accountId"), r.PathValue("token"), req.NewPassword)
	if err != nil {
		writeError(w, r, err, messages{
			service.ErrInvalidInput: "A new password is required",
		})
		return
	}

	httpx.WriteMessage(w, http.StatusOK, httpx.TypeSuccess, "Password reset successfully!")
}
