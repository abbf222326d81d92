package apiclient

import (
	"context"
	"net/http"

	"github.com/pmtool/pmctl/internal/core/domain"
	"github.com/pmtool/pmctl/internal/core/ports"
)

// AuthAPI wraps /api/auth. It implements ports.AuthGateway.
type AuthAPI struct{ c *Client }

var _ ports.AuthGateway = (*AuthAPI)(nil)

// Login exchanges credentials for a token. A 401 is reported as
// domain.ErrAuthenticationFailed with the server's message.
func (a *AuthAPI) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	var out domain.AuthResult
	err := a.c.do(ctx, request{
		method: http.MethodPost,
		route:  "/api/auth/login",
		path:   "/api/auth/login",
		body:   creds,
		public: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a new account. The response shape is server-defined and
// only its message is kept.
func (a *AuthAPI) Signup(ctx context.Context, req domain.SignupRequest) (*domain.Ack, error) {
	var out domain.Ack
	err := a.c.do(ctx, request{
		method: http.MethodPost,
		route:  "/api/auth/signup",
		path:   "/api/auth/signup",
		body:   req,
		public: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
