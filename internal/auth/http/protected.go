package http

import (
	"net/http"

	"github.com/NathanHTC/Authentication/internal/auth/domain"
	"github.com/NathanHTC/Authentication/pkg/authsdk"
	"github.com/NathanHTC/Authentication/pkg/httpx"
)

// ProtectedHandler godoc
//
//	@Summary		Protected route
//	@Description	Returns the account behind the bearer access token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ProtectedResponse
//	@Failure		401	{object}	authsdk.Message	"No token, Invalid token! or user doesn't exist!"
//	@Router			/auth/protected [get].
func ProtectedHandler(w http.ResponseWriter, r *http.Request) {
	acc, ok := AccountFromContext(r.Context())
	if !ok {
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ProtectedResponse{
		Message: authsdk.Message{Type: httpx.TypeSuccess, Message: "You are logged in"},
		User:    publicAccount(acc),
	})
}

// IndexHandler answers GET /auth/.
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("hello from the auth router"))
}

func publicAccount(acc domain.Account) authsdk.Account {
	return authsdk.Account{
		ID:              acc.ID,
		Email:           acc.Email,
		EmailVerifiedAt: acc.EmailVerifiedAt,
		CreatedAt:       acc.CreatedAt,
		UpdatedAt:       acc.UpdatedAt,
	}
}
