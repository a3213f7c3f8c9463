package http

import (
	"net/http"
	"time"

	"github.com/NathanHTC/Authentication/internal/auth/store"
	"github.com/NathanHTC/Authentication/pkg/authsdk"
	"github.com/NathanHTC/Authentication/pkg/httpx"
)

const (
	healthOK       = "ok"
	healthDegraded = "degraded"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	StartTime time.Time
	Version   string
	Store     store.Store
}

func (h *HealthHandler) write(w http.ResponseWriter, code int, status string, checks *authsdk.HealthChecks) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, code, authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(h.StartTime).Round(time.Second).String(),
		Version: h.Version,
		Checks:  checks,
	})
}

// HandleLivez godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe. Always 200 while the process serves requests
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func (h *HealthHandler) HandleLivez(w http.ResponseWriter, r *http.Request) {
	h.write(w, http.StatusOK, healthOK, nil)
}

// HandleReadyz godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe. Pings the credential store and reports 503 when it is unreachable
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func (h *HealthHandler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := &authsdk.HealthChecks{Database: healthOK}

	if err := h.Store.Ping(r.Context()); err != nil {
		checks.Database = "error: " + err.Error()
		h.write(w, http.StatusServiceUnavailable, healthDegraded, checks)
		return
	}
	h.write(w, http.StatusOK, healthOK, checks)
}
