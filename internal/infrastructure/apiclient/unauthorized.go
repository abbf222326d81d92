package apiclient

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pmtool/pmctl/internal/core/domain"
	"github.com/pmtool/pmctl/internal/core/ports"
	"github.com/pmtool/pmctl/internal/infrastructure/metrics"
)

// UnauthorizedHandler runs once for every 401 response, before the error is
// returned to the caller.
type UnauthorizedHandler interface {
	HandleUnauthorized(ctx context.Context, route string, cause *domain.APIError)
}

// UnauthorizedFunc adapts a function to UnauthorizedHandler.
type UnauthorizedFunc func(ctx context.Context, route string, cause *domain.APIError)

func (f UnauthorizedFunc) HandleUnauthorized(ctx context.Context, route string, cause *domain.APIError) {
	f(ctx, route, cause)
}

// NopHandler ignores 401 responses.
type NopHandler struct{}

func (NopHandler) HandleUnauthorized(context.Context, string, *domain.APIError) {}

// Navigator sends the application to its login entry point.
type Navigator interface {
	ToLogin(ctx context.Context, cause *domain.APIError)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, cause *domain.APIError)

func (f NavigatorFunc) ToLogin(ctx context.Context, cause *domain.APIError) { f(ctx, cause) }

// TeardownPolicy clears the persisted session and then navigates to login.
// It works on storage directly and needs no live session object.
type TeardownPolicy struct {
	storage   ports.SessionStorage
	navigator Navigator
	log       zerolog.Logger
}

func NewTeardownPolicy(storage ports.SessionStorage, nav Navigator, log zerolog.Logger) *TeardownPolicy {
	return &TeardownPolicy{storage: storage, navigator: nav, log: log}
}

func (p *TeardownPolicy) HandleUnauthorized(ctx context.Context, route string, cause *domain.APIError) {
	metrics.UnauthorizedTeardownsTotal.WithLabelValues(route).Inc()

	// The caller's context may already be cancelled; the clear must still run.
	ctx = context.WithoutCancel(ctx)
	if err := p.storage.Clear(ctx); err != nil {
		p.log.Error().Err(err).Str("route", route).Msg("clear session after 401")
	}
	p.log.Warn().Str("route", route).Str("kind", string(cause.Kind)).Msg("unauthorized, returning to login")
	if p.navigator != nil {
		p.navigator.ToLogin(ctx, cause)
	}
}

// Recorder is an UnauthorizedHandler that remembers what it saw. Tests and
// dry runs use it in place of real navigation.
type Recorder struct {
	mu     sync.Mutex
	routes []string
	causes []*domain.APIError
}

func (r *Recorder) HandleUnauthorized(_ context.Context, route string, cause *domain.APIError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
	r.causes = append(r.causes, cause)
}

// Routes returns the routes that produced a 401, in order.
func (r *Recorder) Routes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.routes...)
}

// Causes returns the errors passed to the handler, in order.
func (r *Recorder) Causes() []*domain.APIError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.APIError(nil), r.causes...)
}
