// Package metrics defines and registers the Prometheus metrics of the pmctl
// client. It is the single source of truth for metric names, labels, and help
// strings.
//
// A CLI process is short-lived, so metrics are not scraped: WriteTextfile
// dumps the default registry in the text exposition format for the
// node_exporter textfile collector.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pmctl"

// ── Gateway metrics ───────────────────────────────────────────────────────────

// APIRequestsTotal counts completed API calls.
// Labels:
//   - method: HTTP verb
//   - route:  path template (e.g. "/api/tasks/{id}/status")
//   - code:   HTTP status code, or "transport_error" when no response arrived
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of API requests, by method, route and response code.",
	},
	[]string{"method", "route", "code"},
)

// APIRequestDuration measures the round trip of a single API call.
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of API requests from send to fully read response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// UnauthorizedTeardownsTotal counts 401 responses that cleared the stored
// session and redirected to login.
var UnauthorizedTeardownsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unauthorized_teardowns_total",
		Help:      "Total number of session teardowns triggered by 401 responses.",
	},
	[]string{"route"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionEventsTotal counts session lifecycle transitions.
// Label:
//   - event: "restored", "empty", "discarded", "login", "login_failed", "logout"
var SessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Total number of session lifecycle events.",
	},
	[]string{"event"},
)

// ObserveRequest records one API call. code <= 0 means no response was received.
func ObserveRequest(method, route string, code int, seconds float64) {
	label := "transport_error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	APIRequestsTotal.WithLabelValues(method, route, label).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// WriteTextfile writes every registered metric to path atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
