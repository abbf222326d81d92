package apiclient

import (
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/pmtool/pmctl/internal/core/ports"
)

// HeaderRequestID correlates a call with server logs.
const HeaderRequestID = "X-Request-ID"

// authTransport decorates every outgoing request, login and signup included.
// The token is read when the request is sent, so a login or logout between
// two calls is always seen.
type authTransport struct {
	base   http.RoundTripper
	tokens ports.TokenSource
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	if token := t.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}
	otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
