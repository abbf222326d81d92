package domain

// GenerateStoriesRequest is the body of POST /api/ai/generate-user-stories.
type GenerateStoriesRequest struct {
	ProjectDescription string `json:"projectDescription"`
	ProjectID          string `json:"projectId,omitempty"`
	CreateTasks        bool   `json:"createTasks"`
}

// GeneratedStories is the response of the generator.
type GeneratedStories struct {
	UserStories []string `json:"user_stories"`
	Count       int      `json:"count"`
	ProjectID   string   `json:"project_id"`
}

// StoryRecord is a stored generation run, as listed by
// GET /api/ai/user-stories/{projectId}.
type StoryRecord struct {
	ID          string    `json:"_id"`
	ProjectID   string    `json:"project_id"`
	Description string    `json:"description"`
	Stories     []string  `json:"stories"`
	GeneratedAt Timestamp `json:"generated_at"`
}
