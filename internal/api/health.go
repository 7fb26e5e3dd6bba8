package api

import (
	"context"
	"net/http"

	"github.com/yairfalse/apidrift/pkg/types"
)

// Health calls the backend health check
func (c *Client) Health(ctx context.Context) (*types.HealthStatus, error) {
	var status types.HealthStatus
	if err := c.do(ctx, &request{
		method: http.MethodGet,
		path:   "/health-check",
		public: true,
	}, &status); err != nil {
		return nil, err
	}
	if status.Status == "" {
		status.Status = "ok"
	}
	return &status, nil
}
