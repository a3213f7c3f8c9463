package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/NathanHTC/Authentication/pkg/httpx"
)

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.probe(ctx, "/livez")
}

// GetReadiness checks if the service can reach its store. A degraded
// service returns both the decoded checks and an *APIError.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.probe(ctx, "/readyz")
}

func (c *SDKClient) probe(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return &health, NewAPIError(resp.StatusCode, httpx.TypeError, "service "+health.Status)
	}
	return &health, nil
}
