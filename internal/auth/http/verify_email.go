package http

import (
	"net/http"

	"github.com/NathanHTC/Authentication/internal/auth/service"
	"github.com/NathanHTC/Authentication/pkg/authsdk"
	"github.com/NathanHTC/Authentication/pkg/httpx"
)

type EmailVerificationHandler struct {
	Verification *service.EmailVerificationService
}

// HandleSendEmail godoc
//
//	@Summary		Send a verification email
//	@Description	Mails a verification link to the signed-in account.
//	@Tags			Email Verification
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Message
//	@Failure		400	{object}	authsdk.Message	"already verified (type warning)"
//	@Failure		401	{object}	authsdk.Message
//	@Failure		500	{object}	authsdk.Message	"mail delivery failed"
//	@Router			/auth/send-verification-email [post].
func (h *EmailVerificationHandler) HandleSendEmail(w http.ResponseWriter, r *http.Request) {
	acc, ok := AccountFromContext(r.Context())
	if !ok {
		authsdk.ErrServerError.WriteError(w)
		return
	}

	if err := h.Verification.RequestVerification(r.Context(), acc.ID); err != nil {
		writeError(w, r, err, messages{
			service.ErrConflict: "Email is already verified",
			service.ErrDelivery: "Error sending email!",
		})
		return
	}

	httpx.WriteMessage(w, http.StatusOK, httpx.TypeSuccess, "Verification link has been sent to your email!")
}

// HandleVerify godoc
//
//	@Summary		Verify an email address
//	@Description	Confirms the address using the token from the verification link.
//	@Tags			Email Verification
//	@Produce		json
//	@Param			token	path		string	true	"verification token"
//	@Success		200		{object}	authsdk.VerifyEmailResponse
//	@Failure		401		{object}	authsdk.Message	"invalid or expired token"
//	@Failure		500		{object}	authsdk.Message
//	@Router			/auth/verify-email/{token} [post].
func (h *EmailVerificationHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	acc, err := h.Verification.ConfirmVerification(r.Context(), r.PathValue("token"))
	if err != nil {
		writeError(w, r, err, nil)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.VerifyEmailResponse{
		Message: authsdk.Message{Type: httpx.TypeSuccess, Message: "Email verified successfully!"},
		User:    publicAccount(acc),
	})
}
