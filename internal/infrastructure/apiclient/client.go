// Package apiclient is the single egress point for calls to the
// project-management REST API.
//
// Every request goes through the same transport, which attaches the bearer
// token of the current session, and every 401 response is handed to an
// UnauthorizedHandler before the error reaches the caller.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pmtool/pmctl/internal/core/domain"
	"github.com/pmtool/pmctl/internal/core/ports"
	"github.com/pmtool/pmctl/internal/infrastructure/metrics"
)

var tracer = otel.Tracer("github.com/pmtool/pmctl/internal/infrastructure/apiclient")

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 8 << 20

// Client talks to one API deployment. It is safe for concurrent use; calls
// are not queued or reordered.
type Client struct {
	base         string
	http         *http.Client
	unauthorized UnauthorizedHandler
	log          zerolog.Logger

	Auth     *AuthAPI
	Users    *UsersAPI
	Projects *ProjectsAPI
	Tasks    *TasksAPI
	Reports  *ReportsAPI
	Stories  *StoriesAPI
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every call. Zero leaves calls unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithBaseTransport replaces the transport under the auth layer.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if t, ok := c.http.Transport.(*authTransport); ok {
			t.base = rt
		}
	}
}

// WithUnauthorizedHandler installs the policy run on every 401 response.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) {
		if h != nil {
			c.unauthorized = h
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client for the API at baseURL. tokens supplies the bearer
// token at the moment each request is sent; it may return "".
func New(baseURL string, tokens ports.TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q: scheme must be http or https", baseURL)
	}
	if tokens == nil {
		tokens = ports.TokenSourceFunc(func() string { return "" })
	}

	c := &Client{
		base: strings.TrimRight(u.String(), "/"),
		http: &http.Client{
			Transport: &authTransport{base: http.DefaultTransport, tokens: tokens},
		},
		unauthorized: NopHandler{},
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthAPI{c: c}
	c.Users = &UsersAPI{c: c}
	c.Projects = &ProjectsAPI{c: c}
	c.Tasks = &TasksAPI{c: c}
	c.Reports = &ReportsAPI{c: c}
	c.Stories = &StoriesAPI{c: c}
	return c, nil
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.base }

// request describes one call. route is the path template used for metrics
// and spans; path is the concrete, escaped path.
type request struct {
	method string
	route  string
	path   string
	query  url.Values
	body   any
	// public marks login and signup, where a 401 means bad credentials
	// rather than an expired session.
	public bool
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	ctx, span := tracer.Start(ctx, r.method+" "+r.route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", r.method),
			attribute.String("http.route", r.route),
		),
	)
	defer span.End()

	err := c.send(ctx, r, out, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) send(ctx context.Context, r request, out any, span trace.Span) error {
	target := c.base + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", r.method, r.route, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", r.method, r.route, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveRequest(r.method, r.route, 0, time.Since(start).Seconds())
		c.log.Debug().Err(err).Str("method", r.method).Str("route", r.route).Msg("request failed")
		return &domain.APIError{Kind: domain.KindTransportFailure, Err: err}
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	metrics.ObserveRequest(r.method, r.route, resp.StatusCode, elapsed.Seconds())
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	requestID := resp.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = req.Header.Get(HeaderRequestID)
	}
	c.log.Debug().
		Str("method", r.method).
		Str("route", r.route).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Str("request_id", requestID).
		Msg("api call")

	if readErr != nil {
		return &domain.APIError{Kind: domain.KindTransportFailure, Status: resp.StatusCode, RequestID: requestID, Err: readErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp.StatusCode, data, r.public)
		apiErr.RequestID = requestID
		if resp.StatusCode == http.StatusUnauthorized {
			c.unauthorized.HandleUnauthorized(ctx, r.route, apiErr)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.APIError{
			Kind:      domain.KindRequestFailed,
			Status:    resp.StatusCode,
			RequestID: requestID,
			Err:       fmt.Errorf("decode %s response: %w", r.route, err),
		}
	}
	return nil
}

// errorEnvelope is the body of a failed call: {"error": "...", "details": ...}.
// Some frameworks answer with {"message": "..."} instead, and the JWT
// middleware rejects tokens with {"msg": "..."}.
type errorEnvelope struct {
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Msg     string          `json:"msg"`
	Details json.RawMessage `json:"details"`
}

func decodeError(status int, data []byte, authEndpoint bool) *domain.APIError {
	apiErr := &domain.APIError{Kind: domain.KindForStatus(status, authEndpoint), Status: status}

	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return apiErr
	}
	apiErr.Message = env.Error
	if apiErr.Message == "" {
		apiErr.Message = env.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = env.Msg
	}
	if len(env.Details) > 0 && string(env.Details) != "null" {
		var s string
		if err := json.Unmarshal(env.Details, &s); err == nil {
			apiErr.Details = s
		} else {
			apiErr.Details = string(env.Details)
		}
	}
	return apiErr
}

// IsUnauthorized reports whether err came from a 401 response.
func IsUnauthorized(err error) bool {
	var apiErr *domain.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
