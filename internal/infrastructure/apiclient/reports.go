package apiclient

import (
	"context"
	"net/http"

	"github.com/pmtool/pmctl/internal/core/domain"
)

// ReportsAPI wraps /api/reports.
type ReportsAPI struct{ c *Client }

// Dashboard tolerates missing fields; absent lists decode as nil.
func (r *ReportsAPI) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	var out domain.Dashboard
	if err := r.c.do(ctx, request{method: http.MethodGet, route: "/api/reports/dashboard", path: "/api/reports/dashboard"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ReportsAPI) TasksByStatus(ctx context.Context) (domain.StatusCounts, error) {
	out := domain.StatusCounts{}
	if err := r.c.do(ctx, request{method: http.MethodGet, route: "/api/reports/tasks-by-status", path: "/api/reports/tasks-by-status"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReportsAPI) OverdueTasks(ctx context.Context) ([]domain.Task, error) {
	var out []domain.Task
	if err := r.c.do(ctx, request{method: http.MethodGet, route: "/api/reports/overdue-tasks", path: "/api/reports/overdue-tasks"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserWorkload maps user ids to the number of tasks assigned to them.
func (r *ReportsAPI) UserWorkload(ctx context.Context) (domain.Workload, error) {
	out := domain.Workload{}
	if err := r.c.do(ctx, request{method: http.MethodGet, route: "/api/reports/user-workload", path: "/api/reports/user-workload"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
