package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/NathanHTC/Authentication/internal/auth/service"
	"github.com/NathanHTC/Authentication/internal/auth/store"
	"github.com/NathanHTC/Authentication/pkg/httpx"
	"github.com/NathanHTC/Authentication/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/NathanHTC/Authentication/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	cookies      CookieConfig

	store    store.Store
	gatherer prometheus.Gatherer

	SessionManager    *service.SessionManager
	AccessGuard       *service.AccessGuard
	PasswordReset     *service.PasswordResetService
	EmailVerification *service.EmailVerificationService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	cookies CookieConfig,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		cookies:      cookies,
		gatherer:     gatherer,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerPasswordReset()
	r.registerEmailVerification()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Authentication Service API
//	@version		0.1.0
//	@description	Credential and session service. Signin returns a short-lived access token in the body
//	@description	and a long-lived refresh token in the refreshToken cookie. Every response is a
//	@description	{type, message} envelope, with payload fields alongside.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &SessionHandler{
		Sessions: r.SessionManager,
		Cookies:  r.cookies,
	}

	r.Mux.HandleFunc("GET /auth/{$}", IndexHandler)
	r.Mux.HandleFunc("POST /auth/signup", h.HandleSignup)
	r.Mux.HandleFunc("POST /auth/signin", h.HandleSignin)
	r.Mux.HandleFunc("POST /auth/refresh_token", h.HandleRefresh)
	r.Mux.HandleFunc("POST /auth/logout", h.HandleLogout)

	r.Mux.Handle("GET /auth/protected",
		httpx.Chain(http.HandlerFunc(ProtectedHandler),
			RequireAccount(r.AccessGuard),
		),
	)
}

func (r *Router) registerPasswordReset() {
	h := &PasswordResetHandler{Resets: r.PasswordReset}

	r.Mux.HandleFunc("POST /auth/send-password-reset-email", h.HandleSendEmail)
	r.Mux.HandleFunc("POST /auth/reset-password/{accountId}/{token}", h.HandleReset)
}

func (r *Router) registerEmailVerification() {
	h := &EmailVerificationHandler{Verification: r.EmailVerification}

	r.Mux.Handle("POST /auth/send-verification-email",
		httpx.Chain(http.HandlerFunc(h.HandleSendEmail),
			RequireAccount(r.AccessGuard),
		),
	)
	r.Mux.HandleFunc("POST /auth/verify-email/{token}", h.HandleVerify)
}

func (r *Router) registerSystem() {
	h := &HealthHandler{StartTime: r.startTime, Version: r.buildVersion, Store: r.store}
	r.Mux.HandleFunc("GET /livez", h.HandleLivez)
	r.Mux.HandleFunc("GET /readyz", h.HandleReadyz)
	if r.gatherer != nil {
		r.Mux.Handle("GET /metrics", MetricsHandler(r.gatherer))
	}
}
