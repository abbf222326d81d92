package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pmtool/pmctl/internal/core/domain"
)

// TasksAPI wraps /api/tasks.
type TasksAPI struct{ c *Client }

// List returns the tasks matching filter. Empty filter fields are not sent.
func (t *TasksAPI) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	var out []domain.Task
	err := t.c.do(ctx, request{
		method: http.MethodGet,
		route:  "/api/tasks",
		path:   "/api/tasks",
		query:  filter.Values(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *TasksAPI) Get(ctx context.Context, id string) (*domain.Task, error) {
	var out domain.Task
	err := t.c.do(ctx, request{
		method: http.MethodGet,
		route:  "/api/tasks/{id}",
		path:   "/api/tasks/" + url.PathEscape(id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *TasksAPI) Create(ctx context.Context, in domain.TaskInput) (*domain.Ack, error) {
	return t.c.ack(ctx, request{method: http.MethodPost, route: "/api/tasks", path: "/api/tasks", body: in})
}

func (t *TasksAPI) Update(ctx context.Context, id string, in domain.TaskInput) (*domain.Ack, error) {
	return t.c.ack(ctx, request{
		method: http.MethodPut,
		route:  "/api/tasks/{id}",
		path:   "/api/tasks/" + url.PathEscape(id),
		body:   in,
	})
}

func (t *TasksAPI) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) (*domain.Ack, error) {
	return t.c.ack(ctx, request{
		method: http.MethodPatch,
		route:  "/api/tasks/{id}/status",
		path:   "/api/tasks/" + url.PathEscape(id) + "/status",
		body:   domain.StatusChangeRequest{Status: status},
	})
}

func (t *TasksAPI) AddComment(ctx context.Context, id, comment string) (*domain.Ack, error) {
	return t.c.ack(ctx, request{
		method: http.MethodPost,
		route:  "/api/tasks/{id}/comments",
		path:   "/api/tasks/" + url.PathEscape(id) + "/comments",
		body:   domain.CommentRequest{Comment: comment},
	})
}

func (t *TasksAPI) Delete(ctx context.Context, id string) (*domain.Ack, error) {
	return t.c.ack(ctx, request{
		method: http.MethodDelete,
		route:  "/api/tasks/{id}",
		path:   "/api/tasks/" + url.PathEscape(id),
	})
}
