package domain

import (
	"encoding/json"
	"net/url"
)

// TaskStatus is the workflow column of a task.
type TaskStatus string

const (
	TaskPlanning   TaskStatus = "Planning"
	TaskToDo       TaskStatus = "To Do"
	TaskInProgress TaskStatus = "In Progress"
	TaskDone       TaskStatus = "Done"
)

// TaskStatuses lists the statuses offered by the status control.
var TaskStatuses = []TaskStatus{TaskToDo, TaskInProgress, TaskDone}

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Comment is a note attached to a task.
type Comment struct {
	ID        string    `json:"_id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt Timestamp `json:"created_at"`
}

// UnmarshalJSON accepts both comment objects and the bare strings the
// comments endpoint appends.
func (c *Comment) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var text string
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
		*c = Comment{Text: text}
		return nil
	}
	type plain Comment
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*c = Comment(p)
	return nil
}

// Task is a task as returned by the tasks endpoints.
type Task struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	AssignedTo  string     `json:"assigned_to"`
	ProjectID   string     `json:"project_id"`
	Deadline    Timestamp  `json:"deadline"`
	CreatedAt   Timestamp  `json:"created_at"`
	Comments    []Comment  `json:"comments"`
}

// TaskInput is the body of POST /api/tasks and PUT /api/tasks/{id}.
type TaskInput struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	ProjectID   string     `json:"project_id,omitempty"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	Status      TaskStatus `json:"status,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Deadline    string     `json:"deadline,omitempty"`
}

// NewTaskInput returns the defaults a new-task form starts with.
func NewTaskInput() TaskInput {
	return TaskInput{Status: TaskToDo, Priority: PriorityMedium}
}

// StatusChangeRequest is the body of PATCH /api/tasks/{id}/status.
type StatusChangeRequest struct {
	Status TaskStatus `json:"status"`
}

// CommentRequest is the body of POST /api/tasks/{id}/comments.
type CommentRequest struct {
	Comment string `json:"comment"`
}

// TaskFilter narrows GET /api/tasks. Empty fields are not sent.
type TaskFilter struct {
	ProjectID  string
	Status     TaskStatus
	AssignedTo string
	Priority   Priority
}

// Values encodes the filter as query parameters, omitting empty keys.
func (f TaskFilter) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("project_id", f.ProjectID)
	set("status", string(f.Status))
	set("assigned_to", f.AssignedTo)
	set("priority", string(f.Priority))
	return v
}
