package domain

// ProjectStatus is the lifecycle label of a project. The server does not
// restrict the set; the constants are the values the UI offers.
type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "Planning"
	ProjectActive     ProjectStatus = "Active"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectCompleted  ProjectStatus = "Completed"
)

// Project is a project as returned by the projects endpoints.
type Project struct {
	ID          string        `json:"_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	StartDate   Timestamp     `json:"start_date"`
	EndDate     Timestamp     `json:"end_date"`
	Deadline    Timestamp     `json:"deadline"`
	TeamMembers []string      `json:"team_members"`
	CreatedBy   string        `json:"created_by"`
	CreatedAt   Timestamp     `json:"created_at"`
}

// ProjectInput is the body of POST /api/projects and PUT /api/projects/{id}.
// Dates are sent as entered (YYYY-MM-DD); empty values are omitted.
type ProjectInput struct {
	Name        string        `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status,omitempty"`
	StartDate   string        `json:"start_date,omitempty"`
	EndDate     string        `json:"end_date,omitempty"`
	Deadline    string        `json:"deadline,omitempty"`
}

// TeamMemberRequest is the body of POST /api/projects/{id}/team.
type TeamMemberRequest struct {
	UserID string `json:"user_id"`
}

// ProjectName resolves a project id against projects, falling back to "Unknown Project".
func ProjectName(projects []Project, id string) string {
	for _, p := range projects {
		if p.ID == id && id != "" {
			return p.Name
		}
	}
	return "Unknown Project"
}
