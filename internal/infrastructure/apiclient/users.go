package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pmtool/pmctl/internal/core/domain"
)

// UsersAPI wraps /api/users.
type UsersAPI struct{ c *Client }

func (u *UsersAPI) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	if err := u.c.do(ctx, request{method: http.MethodGet, route: "/api/users", path: "/api/users"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (u *UsersAPI) Get(ctx context.Context, id string) (*domain.User, error) {
	var out domain.User
	err := u.c.do(ctx, request{
		method: http.MethodGet,
		route:  "/api/users/{id}",
		path:   "/api/users/" + url.PathEscape(id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile returns the server's view of the caller. Servers that do not
// implement it answer with only a message, leaving the user fields empty.
func (u *UsersAPI) Profile(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := u.c.do(ctx, request{method: http.MethodGet, route: "/api/users/profile", path: "/api/users/profile"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UsersAPI) Create(ctx context.Context, req domain.CreateUserRequest) (*domain.Ack, error) {
	return u.c.ack(ctx, request{method: http.MethodPost, route: "/api/users", path: "/api/users", body: req})
}

func (u *UsersAPI) Update(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.Ack, error) {
	return u.c.ack(ctx, request{
		method: http.MethodPut,
		route:  "/api/users/{id}",
		path:   "/api/users/" + url.PathEscape(id),
		body:   req,
	})
}

func (u *UsersAPI) Delete(ctx context.Context, id string) (*domain.Ack, error) {
	return u.c.ack(ctx, request{
		method: http.MethodDelete,
		route:  "/api/users/{id}",
		path:   "/api/users/" + url.PathEscape(id),
	})
}

func (c *Client) ack(ctx context.Context, r request) (*domain.Ack, error) {
	var out domain.Ack
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
