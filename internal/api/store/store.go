// Package store is the in-memory backing state of the fake API server.
package store

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pmtool/pmctl/internal/core/domain"
)

// Messages match what the real server puts in its "error" field.
var (
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrUserExists         = errors.New("User already exists")
	ErrUserNotFound       = errors.New("User not found")
	ErrProjectNotFound    = errors.New("Project not found")
	ErrTaskNotFound       = errors.New("Task not found")
)

// Fixtures only: keep hashing fast.
const hashCost = bcrypt.MinCost

type userRecord struct {
	user         domain.User
	passwordHash []byte
}

// Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    []*userRecord
	projects []*domain.Project
	tasks    []*domain.Task
	stories  []domain.StoryRecord
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newID() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:24] }

// ── Users ────────────────────────────────────────────────────────────────────

// AddUser registers u with the given password. An empty ID is generated.
func (s *Store) AddUser(u domain.User, password string) (domain.User, error) {
	if u.Email == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.users {
		if strings.EqualFold(r.user.Email, u.Email) {
			return domain.User{}, ErrUserExists
		}
	}
	if u.ID == "" {
		u.ID = newID()
	}
	if u.Role == "" {
		u.Role = domain.RoleDeveloper
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = domain.NewTimestamp(s.now())
	}
	s.users = append(s.users, &userRecord{user: u, passwordHash: hash})
	return u, nil
}

// Authenticate returns the user owning email if password matches.
func (s *Store) Authenticate(email, password string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.users {
		if strings.EqualFold(r.user.Email, email) {
			if bcrypt.CompareHashAndPassword(r.passwordHash, []byte(password)) != nil {
				return domain.User{}, ErrInvalidCredentials
			}
			return r.user, nil
		}
	}
	return domain.User{}, ErrInvalidCredentials
}

func (s *Store) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, len(s.users))
	for i, r := range s.users {
		out[i] = r.user
	}
	return out
}

func (s *Store) User(id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r := s.findUser(id); r != nil {
		return r.user, nil
	}
	return domain.User{}, ErrUserNotFound
}

func (s *Store) UpdateUser(id string, in domain.UpdateUserRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.findUser(id)
	if r == nil {
		return ErrUserNotFound
	}
	if in.Username != "" {
		r.user.Username = in.Username
	}
	if in.Email != "" {
		r.user.Email = in.Email
	}
	if in.Role != "" {
		r.user.Role = in.Role
	}
	return nil
}

func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.users {
		if r.user.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return ErrUserNotFound
}

func (s *Store) findUser(id string) *userRecord {
	for _, r := range s.users {
		if r.user.ID == id {
			return r
		}
	}
	return nil
}

// ── Projects ─────────────────────────────────────────────────────────────────

func (s *Store) Projects() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = cloneProject(p)
	}
	return out
}

func (s *Store) Project(id string) (domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p := s.findProject(id); p != nil {
		return cloneProject(p), nil
	}
	return domain.Project{}, ErrProjectNotFound
}

func (s *Store) CreateProject(in domain.ProjectInput, createdBy string) (domain.Project, error) {
	p := domain.Project{
		ID:          newID(),
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		CreatedBy:   createdBy,
		TeamMembers: []string{},
	}
	if p.Status == "" {
		p.Status = domain.ProjectPlanning
	}
	if err := applyDates(&p, in); err != nil {
		return domain.Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p.CreatedAt = domain.NewTimestamp(s.now())
	s.projects = append(s.projects, &p)
	return cloneProject(&p), nil
}

func (s *Store) UpdateProject(id string, in domain.ProjectInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProject(id)
	if p == nil {
		return ErrProjectNotFound
	}
	next := cloneProject(p)
	if in.Name != "" {
		next.Name = in.Name
	}
	if in.Description != "" {
		next.Description = in.Description
	}
	if in.Status != "" {
		next.Status = in.Status
	}
	if err := applyDates(&next, in); err != nil {
		return err
	}
	*p = next
	return nil
}

func (s *Store) DeleteProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.projects {
		if p.ID == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			return nil
		}
	}
	return ErrProjectNotFound
}

func (s *Store) AddTeamMember(projectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProject(projectID)
	if p == nil {
		return ErrProjectNotFound
	}
	for _, m := range p.TeamMembers {
		if m == userID {
			return nil
		}
	}
	p.TeamMembers = append(p.TeamMembers, userID)
	return nil
}

func (s *Store) RemoveTeamMember(projectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProject(projectID)
	if p == nil {
		return ErrProjectNotFound
	}
	kept := p.TeamMembers[:0]
	for _, m := range p.TeamMembers {
		if m != userID {
			kept = append(kept, m)
		}
	}
	p.TeamMembers = kept
	return nil
}

func (s *Store) findProject(id string) *domain.Project {
	for _, p := range s.projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func cloneProject(p *domain.Project) domain.Project {
	out := *p
	out.TeamMembers = append([]string{}, p.TeamMembers...)
	return out
}

func applyDates(p *domain.Project, in domain.ProjectInput) error {
	for _, d := range []struct {
		raw string
		dst *domain.Timestamp
	}{
		{in.StartDate, &p.StartDate},
		{in.EndDate, &p.EndDate},
		{in.Deadline, &p.Deadline},
	} {
		if d.raw == "" {
			continue
		}
		ts, err := domain.ParseTimestamp(d.raw)
		if err != nil {
			return err
		}
		*d.dst = ts
	}
	return nil
}

// ── Tasks ────────────────────────────────────────────────────────────────────

// Tasks returns the tasks matching every non-empty filter field.
func (s *Store) Tasks(f domain.TaskFilter) []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Task{}
	for _, t := range s.tasks {
		switch {
		case f.ProjectID != "" && t.ProjectID != f.ProjectID:
		case f.Status != "" && t.Status != f.Status:
		case f.AssignedTo != "" && t.AssignedTo != f.AssignedTo:
		case f.Priority != "" && t.Priority != f.Priority:
		default:
			out = append(out, cloneTask(t))
		}
	}
	return out
}

func (s *Store) Task(id string) (domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t := s.findTask(id); t != nil {
		return cloneTask(t), nil
	}
	return domain.Task{}, ErrTaskNotFound
}

func (s *Store) CreateTask(in domain.TaskInput) (domain.Task, error) {
	t := domain.Task{
		ID:          newID(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		AssignedTo:  in.AssignedTo,
		ProjectID:   in.ProjectID,
		Comments:    []domain.Comment{},
	}
	if t.Status == "" {
		t.Status = domain.TaskToDo
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	if in.Deadline != "" {
		ts, err := domain.ParseTimestamp(in.Deadline)
		if err != nil {
			return domain.Task{}, err
		}
		t.Deadline = ts
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t.CreatedAt = domain.NewTimestamp(s.now())
	s.tasks = append(s.tasks, &t)
	return cloneTask(&t), nil
}

func (s *Store) UpdateTask(id string, in domain.TaskInput) error {
	var deadline domain.Timestamp
	if in.Deadline != "" {
		ts, err := domain.ParseTimestamp(in.Deadline)
		if err != nil {
			return err
		}
		deadline = ts
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findTask(id)
	if t == nil {
		return ErrTaskNotFound
	}
	if in.Title != "" {
		t.Title = in.Title
	}
	if in.Description != "" {
		t.Description = in.Description
	}
	if in.ProjectID != "" {
		t.ProjectID = in.ProjectID
	}
	if in.AssignedTo != "" {
		t.AssignedTo = in.AssignedTo
	}
	if in.Status != "" {
		t.Status = in.Status
	}
	if in.Priority != "" {
		t.Priority = in.Priority
	}
	if !deadline.IsZero() {
		t.Deadline = deadline
	}
	return nil
}

func (s *Store) SetTaskStatus(id string, status domain.TaskStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findTask(id)
	if t == nil {
		return ErrTaskNotFound
	}
	t.Status = status
	return nil
}

func (s *Store) AddComment(id, text, author string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.findTask(id)
	if t == nil {
		return ErrTaskNotFound
	}
	t.Comments = append(t.Comments, domain.Comment{
		ID:        newID(),
		Text:      text,
		Author:    author,
		CreatedAt: domain.NewTimestamp(s.now()),
	})
	return nil
}

func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return ErrTaskNotFound
}

func (s *Store) findTask(id string) *domain.Task {
	for _, t := range s.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func cloneTask(t *domain.Task) domain.Task {
	out := *t
	out.Comments = append([]domain.Comment{}, t.Comments...)
	return out
}

// ── Reports ──────────────────────────────────────────────────────────────────

func (s *Store) TasksByStatus() domain.StatusCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := domain.StatusCounts{}
	for _, t := range s.tasks {
		out[t.Status]++
	}
	return out
}

// OverdueTasks returns unfinished tasks past their deadline, oldest first.
func (s *Store) OverdueTasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overdueLocked()
}

func (s *Store) overdueLocked() []domain.Task {
	now := s.now()
	out := []domain.Task{}
	for _, t := range s.tasks {
		if t.Status != domain.TaskDone && !t.Deadline.IsZero() && t.Deadline.Before(now) {
			out = append(out, cloneTask(t))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline.Time) })
	return out
}

// Workload counts tasks per assignee id; unassigned tasks count under "".
func (s *Store) Workload() domain.Workload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := domain.Workload{}
	for _, t := range s.tasks {
		out[t.AssignedTo]++
	}
	return out
}

func (s *Store) Dashboard() domain.Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byStatus := domain.StatusCounts{}
	for _, t := range s.tasks {
		byStatus[t.Status]++
	}
	overdue := s.overdueLocked()

	var rate float64
	if n := len(s.tasks); n > 0 {
		rate = float64(int(float64(byStatus[domain.TaskDone])/float64(n)*1000+0.5)) / 10
	}
	recent := overdue
	if len(recent) > 5 {
		recent = recent[:5]
	}
	return domain.Dashboard{
		TotalProjects:      len(s.projects),
		TotalTasks:         len(s.tasks),
		TotalUsers:         len(s.users),
		OverdueTasks:       len(overdue),
		CompletionRate:     rate,
		TasksByStatus:      byStatus,
		RecentOverdueTasks: recent,
	}
}

// ── Stories ──────────────────────────────────────────────────────────────────

func (s *Store) SaveStories(projectID, description string, stories []string) domain.StoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := domain.StoryRecord{
		ID:          newID(),
		ProjectID:   projectID,
		Description: description,
		Stories:     append([]string{}, stories...),
		GeneratedAt: domain.NewTimestamp(s.now()),
	}
	s.stories = append(s.stories, rec)
	return rec
}

func (s *Store) Stories(projectID string) []domain.StoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.StoryRecord{}
	for _, r := range s.stories {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	return out
}

// CreateTasksFromStories adds one unassigned task per story written as
// "As a <role>, I want to <action>, so that <benefit>." Other stories are
// skipped. It returns the number of tasks created.
func (s *Store) CreateTasksFromStories(projectID string, stories []string) int {
	n := 0
	for _, story := range stories {
		action, benefit, ok := ParseStory(story)
		if !ok {
			continue
		}
		_, err := s.CreateTask(domain.TaskInput{
			Title:       "Implement: " + action,
			Description: "User Story: " + story + "\n\nBenefit: " + benefit,
			ProjectID:   projectID,
			Status:      domain.TaskToDo,
			Priority:    domain.PriorityMedium,
		})
		if err == nil {
			n++
		}
	}
	return n
}

// ParseStory splits a story into its action and benefit clauses.
func ParseStory(story string) (action, benefit string, ok bool) {
	_, rest, found := strings.Cut(story, ", I want to ")
	if !found || !strings.HasPrefix(story, "As a") {
		return "", "", false
	}
	action, benefit, found = strings.Cut(rest, ", so that ")
	if !found {
		return "", "", false
	}
	return action, strings.TrimSuffix(benefit, "."), true
}
