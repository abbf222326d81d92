package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pmtool/pmctl/internal/core/domain"
)

// StoriesAPI wraps the AI user-story endpoints under /api/ai.
type StoriesAPI struct{ c *Client }

func (s *StoriesAPI) Generate(ctx context.Context, req domain.GenerateStoriesRequest) (*domain.GeneratedStories, error) {
	var out domain.GeneratedStories
	err := s.c.do(ctx, request{
		method: http.MethodPost,
		route:  "/api/ai/generate-user-stories",
		path:   "/api/ai/generate-user-stories",
		body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns the stories previously generated for a project.
func (s *StoriesAPI) List(ctx context.Context, projectID string) ([]domain.StoryRecord, error) {
	var out []domain.StoryRecord
	err := s.c.do(ctx, request{
		method: http.MethodGet,
		route:  "/api/ai/user-stories/{projectId}",
		path:   "/api/ai/user-stories/" + url.PathEscape(projectID),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
