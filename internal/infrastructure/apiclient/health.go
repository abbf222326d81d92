package apiclient

import (
	"context"
	"net/http"

	"github.com/pmtool/pmctl/internal/core/domain"
)

// Health calls GET /, which needs no session.
func (c *Client) Health(ctx context.Context) (*domain.Health, error) {
	var out domain.Health
	if err := c.do(ctx, request{method: http.MethodGet, route: "/", path: "/"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
