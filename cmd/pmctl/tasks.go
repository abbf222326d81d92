package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/pmtool/pmctl/internal/core/domain"
)

var tasksCommands = map[string]command{
	"list":    tasksList,
	"get":     tasksGet,
	"create":  tasksCreate,
	"update":  tasksUpdate,
	"status":  tasksStatus,
	"comment": tasksComment,
	"delete":  tasksDelete,
}

func taskInputFlags(fs *flag.FlagSet, in *domain.TaskInput) {
	fs.StringVar(&in.Title, "title", in.Title, "task title")
	fs.StringVar(&in.Description, "description", in.Description, "description")
	fs.StringVar(&in.ProjectID, "project", in.ProjectID, "project id")
	fs.StringVar(&in.AssignedTo, "assignee", in.AssignedTo, "assigned user id")
	fs.Func("status", "To Do, In Progress or Done", func(s string) error {
		in.Status = domain.TaskStatus(s)
		return nil
	})
	fs.Func("priority", "Low, Medium or High", func(s string) error {
		in.Priority = domain.Priority(s)
		return nil
	})
	fs.StringVar(&in.Deadline, "deadline", in.Deadline, "deadline, YYYY-MM-DD")
}

// lookups fetches users and projects for display. Failures only cost names,
// except an expired session, which ends the command.
func (c *cli) lookups(ctx context.Context) ([]domain.User, []domain.Project, error) {
	users, err := c.users(ctx)
	if err != nil {
		return nil, nil, err
	}
	projects, err := c.app.API.Projects.List(ctx)
	if errors.Is(err, domain.ErrAuthorizationExpired) {
		return nil, nil, err
	}
	return users, projects, nil
}

// users is the best-effort user list behind name resolution. Non-admins are
// usually refused it.
func (c *cli) users(ctx context.Context) ([]domain.User, error) {
	users, err := c.app.API.Users.List(ctx)
	if errors.Is(err, domain.ErrAuthorizationExpired) {
		return nil, err
	}
	return users, nil
}

// task fetches a task for a gate that depends on it.
func (c *cli) task(ctx context.Context, id string) (*domain.Identity, *domain.Task, error) {
	me, err := c.identity()
	if err != nil {
		return nil, nil, err
	}
	t, err := c.app.API.Tasks.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return me, t, nil
}

func tasksList(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("tasks list")
	var f domain.TaskFilter
	fs.StringVar(&f.ProjectID, "project", "", "only tasks of this project")
	fs.StringVar(&f.AssignedTo, "assignee", "", "only tasks assigned to this user id")
	fs.Func("status", "only tasks in this status", func(s string) error {
		f.Status = domain.TaskStatus(s)
		return nil
	})
	fs.Func("priority", "only tasks with this priority", func(s string) error {
		f.Priority = domain.Priority(s)
		return nil
	})
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if _, err := c.identity(); err != nil {
		return err
	}
	tasks, err := c.app.API.Tasks.List(ctx, f)
	if err != nil {
		return err
	}
	if c.json {
		return c.printJSON(tasks)
	}
	return c.printTasks(ctx, tasks)
}

func (c *cli) printTasks(ctx context.Context, tasks []domain.Task) error {
	users, projects, err := c.lookups(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			t.ID,
			t.Title,
			c.paint(string(t.Status), t.Status.Tone()),
			c.paint(string(t.Priority), t.Priority.Tone()),
			domain.UserName(users, t.AssignedTo),
			domain.ProjectName(projects, t.ProjectID),
			orDash(t.Deadline.DateString()),
		})
	}
	return c.table([]string{"ID", "TITLE", "STATUS", "PRIORITY", "ASSIGNEE", "PROJECT", "DEADLINE"}, rows)
}

func tasksGet(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("tasks get")
	id := fs.String("id", "", "task id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usageErrorf("tasks get: need -id")
	}
	me, t, err := c.task(ctx, *id)
	if err != nil {
		return err
	}
	if c.json {
		return c.printJSON(t)
	}
	users, projects, err := c.lookups(ctx)
	if err != nil {
		return err
	}
	statusLabel := c.paint(string(t.Status), t.Status.Tone())
	if ctl := me.TaskStatusControl(*t); ctl.Visible && !ctl.Enabled {
		statusLabel += " (read-only)"
	}
	if err := c.fields(
		"ID", t.ID,
		"Title", t.Title,
		"Description", orDash(t.Description),
		"Status", statusLabel,
		"Priority", c.paint(string(t.Priority), t.Priority.Tone()),
		"Assignee", domain.UserName(users, t.AssignedTo),
		"Project", domain.ProjectName(projects, t.ProjectID),
		"Deadline", orDash(t.Deadline.DateString()),
	); err != nil {
		return err
	}
	if len(t.Comments) == 0 {
		return nil
	}
	fmt.Fprintln(c.out, "\nComments:")
	for _, cm := range t.Comments {
		author := ""
		if cm.Author != "" {
			author = domain.UserName(users, cm.Author) + ": "
		}
		fmt.Fprintf(c.out, "  - %s%s\n", author, cm.Text)
	}
	return nil
}

func tasksCreate(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("tasks create")
	in := domain.NewTaskInput()
	taskInputFlags(fs, &in)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if in.Title == "" || in.ProjectID == "" {
		return usageErrorf("tasks create: need -title and -project")
	}
	me, err := c.identity()
	if err != nil {
		return err
	}
	if !me.CanCreateTask() {
		return forbidden(me, "create tasks")
	}
	ack, err := c.app.API.Tasks.Create(ctx, in)
	if err != nil {
		return err
	}
	return c.ack(ack)
}

func tasksUpdate(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("tasks update")
	id := fs.String("id", "", "task id")
	var in domain.TaskInput
	taskInputFlags(fs, &in)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usageErrorf("tasks update: need -id")
	}
	me, t, err := c.task(ctx, *id)
	if err != nil {
		return err
	}
	if !me.CanManageTask(*t) {
		return forbidden(me, "edit this task")
	}
	ack, err := c.app.API.Tasks.Update(ctx, *id, in)
	if err != nil {
		return err
	}
	return c.ack(ack)
}

func validTaskStatus(s domain.TaskStatus) bool {
	for _, known := range domain.TaskStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func tasksStatus(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("tasks status")
	id := fs.String("id", "", "task id")
	to := fs.String("to", "", "To Do, In Progress or Done")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" || *to == "" {
		return usageErrorf("tasks status: need -id and -to")
	}
	status := domain.TaskStatus(*to)
	if !validTaskStatus(status) {
		names := make([]string, len(domain.TaskStatuses))
		for i, s := range domain.TaskStatuses {
			names[i] = string(s)
		}
		return usageErrorf("tasks status: -to must be one of %s", strings.Join(names, ", "))
	}
	me, t, err := c.task(ctx, *id)
	if err != nil {
		return err
	}
	if !me.CanChangeTaskStatus(*t) {
		return forbidden(me, "change the status of tasks assigned to others")
	}
	ack, err := c.app.API.Tasks.UpdateStatus(ctx, *id, status)
	if err != nil {
		return err
	}
	return c.ack(ack)
}

func tasksComment(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("tasks comment")
	id := fs.String("id", "", "task id")
	text := fs.String("text", "", "comment text")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" || strings.TrimSpace(*text) == "" {
		return usageErrorf("tasks comment: need -id and -text")
	}
	if _, err := c.identity(); err != nil {
		return err
	}
	ack, err := c.app.API.Tasks.AddComment(ctx, *id, *text)
	if err != nil {
		return err
	}
	return c.ack(ack)
}

func tasksDelete(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("tasks delete")
	id := fs.String("id", "", "task id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usageErrorf("tasks delete: need -id")
	}
	me, t, err := c.task(ctx, *id)
	if err != nil {
		return err
	}
	if !me.CanManageTask(*t) {
		return forbidden(me, "delete this task")
	}
	ack, err := c.app.API.Tasks.Delete(ctx, *id)
	if err != nil {
		return err
	}
	return c.ack(ack)
}
