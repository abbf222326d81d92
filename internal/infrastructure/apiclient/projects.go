package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pmtool/pmctl/internal/core/domain"
)

// ProjectsAPI wraps /api/projects.
type ProjectsAPI struct{ c *Client }

func (p *ProjectsAPI) List(ctx context.Context) ([]domain.Project, error) {
	var out []domain.Project
	if err := p.c.do(ctx, request{method: http.MethodGet, route: "/api/projects", path: "/api/projects"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *ProjectsAPI) Get(ctx context.Context, id string) (*domain.Project, error) {
	var out domain.Project
	err := p.c.do(ctx, request{
		method: http.MethodGet,
		route:  "/api/projects/{id}",
		path:   "/api/projects/" + url.PathEscape(id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *ProjectsAPI) Create(ctx context.Context, in domain.ProjectInput) (*domain.Ack, error) {
	return p.c.ack(ctx, request{method: http.MethodPost, route: "/api/projects", path: "/api/projects", body: in})
}

func (p *ProjectsAPI) Update(ctx context.Context, id string, in domain.ProjectInput) (*domain.Ack, error) {
	return p.c.ack(ctx, request{
		method: http.MethodPut,
		route:  "/api/projects/{id}",
		path:   "/api/projects/" + url.PathEscape(id),
		body:   in,
	})
}

func (p *ProjectsAPI) Delete(ctx context.Context, id string) (*domain.Ack, error) {
	return p.c.ack(ctx, request{
		method: http.MethodDelete,
		route:  "/api/projects/{id}",
		path:   "/api/projects/" + url.PathEscape(id),
	})
}

func (p *ProjectsAPI) AddTeamMember(ctx context.Context, projectID, userID string) (*domain.Ack, error) {
	return p.c.ack(ctx, request{
		method: http.MethodPost,
		route:  "/api/projects/{id}/team",
		path:   "/api/projects/" + url.PathEscape(projectID) + "/team",
		body:   domain.TeamMemberRequest{UserID: userID},
	})
}

func (p *ProjectsAPI) RemoveTeamMember(ctx context.Context, projectID, userID string) (*domain.Ack, error) {
	return p.c.ack(ctx, request{
		method: http.MethodDelete,
		route:  "/api/projects/{id}/team/{userId}",
		path:   "/api/projects/" + url.PathEscape(projectID) + "/team/" + url.PathEscape(userID),
	})
}
