package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pmtool/pmctl/internal/api/store"
	"github.com/pmtool/pmctl/internal/core/domain"
)

// StoryGenerator turns a project description into user stories.
type StoryGenerator interface {
	Generate(ctx context.Context, description string) ([]string, error)
}

// StoryGeneratorFunc adapts a function to StoryGenerator.
type StoryGeneratorFunc func(ctx context.Context, description string) ([]string, error)

func (f StoryGeneratorFunc) Generate(ctx context.Context, description string) ([]string, error) {
	return f(ctx, description)
}

// SentenceStories writes one story per sentence of the description.
var SentenceStories = StoryGeneratorFunc(func(_ context.Context, description string) ([]string, error) {
	var out []string
	for _, s := range strings.FieldsFunc(description, func(r rune) bool { return r == '.' || r == '\n' }) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		action := strings.ToLower(s[:1]) + s[1:]
		out = append(out, "As a user, I want to "+action+", so that the project meets its goals.")
	}
	return out, nil
})

type AIHandler struct {
	store     *store.Store
	generator StoryGenerator
}

// NewAIHandler answers 503 for generation requests when gen is nil, like a
// server without a model configured.
func NewAIHandler(st *store.Store, gen StoryGenerator) *AIHandler {
	return &AIHandler{store: st, generator: gen}
}

func (h *AIHandler) GenerateUserStories(c echo.Context) error {
	if h.generator == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "AI story generation is not configured")
	}
	var req domain.GenerateStoriesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.ProjectDescription) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Project description is required")
	}

	stories, err := h.generator.Generate(c.Request().Context(), req.ProjectDescription)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Failed to generate user stories",
			"details": err.Error(),
		})
	}
	if stories == nil {
		stories = []string{}
	}

	if req.ProjectID != "" {
		h.store.SaveStories(req.ProjectID, req.ProjectDescription, stories)
		if req.CreateTasks {
			h.store.CreateTasksFromStories(req.ProjectID, stories)
		}
	}

	return c.JSON(http.StatusOK, domain.GeneratedStories{
		UserStories: stories,
		Count:       len(stories),
		ProjectID:   req.ProjectID,
	})
}

func (h *AIHandler) ListUserStories(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Stories(c.Param("projectId")))
}
