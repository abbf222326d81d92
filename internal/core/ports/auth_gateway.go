package ports

import (
	"context"

	"github.com/pmtool/pmctl/internal/core/domain"
)

// AuthGateway is the part of the API the session store talks to.
type AuthGateway interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
}

// TokenSource yields the bearer token of the current session, or "".
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }
