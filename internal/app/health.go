package app

import (
	"context"
	"time"
)

const readinessTimeout = 3 * time.Second

type DependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Readiness reports whether the API and the session backend answer.
type Readiness struct {
	Status       string                      `json:"status"`
	API          string                      `json:"api"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
}

func (r Readiness) OK() bool { return r.Status == "ok" }

func (a *App) Readiness(ctx context.Context) Readiness {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	deps := make(map[string]DependencyStatus)
	healthy := true

	// --- API liveness ---
	health, err := a.API.Health(ctx)
	switch {
	case err != nil:
		deps["api"] = DependencyStatus{Status: "unhealthy", Error: err.Error()}
		healthy = false
	case !health.Healthy():
		deps["api"] = DependencyStatus{Status: "unhealthy", Error: "status " + health.Status}
		healthy = false
	default:
		deps["api"] = DependencyStatus{Status: "ok"}
	}

	// --- Session storage ---
	if err := a.Storage.Ping(ctx); err != nil {
		deps["session_storage"] = DependencyStatus{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		deps["session_storage"] = DependencyStatus{Status: "ok"}
	}

	status := "ok"
	if !healthy {
		status = "degraded"
	}
	return Readiness{Status: status, API: a.API.BaseURL(), Dependencies: deps}
}
