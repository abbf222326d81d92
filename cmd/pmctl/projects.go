package main

import (
	"context"
	"flag"
	"strconv"
	"strings"

	"github.com/pmtool/pmctl/internal/core/domain"
)

var projectsCommands = map[string]command{
	"list":          projectsList,
	"get":           projectsGet,
	"create":        projectsCreate,
	"update":        projectsUpdate,
	"delete":        projectsDelete,
	"add-member":    projectsAddMember,
	"remove-member": projectsRemoveMember,
}

// requirePlanner gates project mutations.
func (c *cli) requirePlanner(action string) error {
	id, err := c.identity()
	if err != nil {
		return err
	}
	if !id.CanCreateProject() {
		return forbidden(id, action)
	}
	return nil
}

func projectInputFlags(fs *flag.FlagSet) *domain.ProjectInput {
	in := &domain.ProjectInput{}
	fs.StringVar(&in.Name, "name", "", "project name")
	fs.StringVar(&in.Description, "description", "", "description")
	fs.Func("status", "Planning, Active, In Progress or Completed", func(s string) error {
		in.Status = domain.ProjectStatus(s)
		return nil
	})
	fs.StringVar(&in.StartDate, "start", "", "start date, YYYY-MM-DD")
	fs.StringVar(&in.EndDate, "end", "", "end date, YYYY-MM-DD")
	fs.StringVar(&in.Deadline, "deadline", "", "deadline, YYYY-MM-DD")
	return in
}

func projectsList(ctx context.Context, c *cli, args []string) error {
	if err := parseFlags(c.newFlags("projects list"), args); err != nil {
		return err
	}
	if _, err := c.identity(); err != nil {
		return err
	}
	projects, err := c.app.API.Projects.List(ctx)
	if err != nil {
		return err
	}
	if c.json {
		return c.printJSON(projects)
	}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.ID,
			p.Name,
			c.paint(string(p.Status), p.Status.Tone()),
			orDash(p.Deadline.DateString()),
			strconv.Itoa(len(p.TeamMembers)),
		})
	}
	return c.table([]string{"ID", "NAME", "STATUS", "DEADLINE", "MEMBERS"}, rows)
}

func projectsGet(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("projects get")
	id := fs.String("id", "", "project id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usageErrorf("projects get: need -id")
	}
	if _, err := c.identity(); err != nil {
		return err
	}
	p, err := c.app.API.Projects.Get(ctx, *id)
	if err != nil {
		return err
	}
	if c.json {
		return c.printJSON(p)
	}
	// Member names are cosmetic; fall back to ids when the list is unavailable.
	users, err := c.users(ctx)
	if err != nil {
		return err
	}
	members := make([]string, 0, len(p.TeamMembers))
	for _, m := range p.TeamMembers {
		name := domain.UserName(users, m)
		if users == nil {
			name = m
		}
		members = append(members, name)
	}
	return c.fields(
		"ID", p.ID,
		"Name", p.Name,
		"Description", orDash(p.Description),
		"Status", c.paint(string(p.Status), p.Status.Tone()),
		"Start", orDash(p.StartDate.DateString()),
		"End", orDash(p.EndDate.DateString()),
		"Deadline", orDash(p.Deadline.DateString()),
		"Team", orDash(strings.Join(members, ", ")),
	)
}

func projectsCreate(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("projects create")
	in := projectInputFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if in.Name == "" {
		return usageErrorf("projects create: need -name")
	}
	if err := c.requirePlanner("create projects"); err != nil {
		return err
	}
	ack, err := c.app.API.Projects.Create(ctx, *in)
	if err != nil {
		return err
	}
	return c.ack(ack)
}

func projectsUpdate(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("projects update")
	id := fs.String("id", "", "project id")
	in := projectInputFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usageErrorf("projects update: need -id")
	}
	if err := c.requirePlanner("edit projects"); err != nil {
		return err
	}
	ack, err := c.app.API.Projects.Update(ctx, *id, *in)
	if err != nil {
		return err
	}
	return c.ack(ack)
}

func projectsDelete(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("projects delete")
	id := fs.String("id", "", "project id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usageErrorf("projects delete: need -id")
	}
	if err := c.requirePlanner("delete projects"); err != nil {
		return err
	}
	ack, err := c.app.API.Projects.Delete(ctx, *id)
	if err != nil {
		return err
	}
	return c.ack(ack)
}

func memberFlags(c *cli, name string, args []string) (project, user string, err error) {
	fs := c.newFlags(name)
	fs.StringVar(&project, "id", "", "project id")
	fs.StringVar(&user, "user", "", "user id")
	if err := parseFlags(fs, args); err != nil {
		return "", "", err
	}
	if project == "" || user == "" {
		return "", "", usageErrorf("%s: need -id and -user", name)
	}
	return project, user, nil
}

func projectsAddMember(ctx context.Context, c *cli, args []string) error {
	project, user, err := memberFlags(c, "projects add-member", args)
	if err != nil {
		return err
	}
	if err := c.requirePlanner("manage project teams"); err != nil {
		return err
	}
	ack, err := c.app.API.Projects.AddTeamMember(ctx, project, user)
	if err != nil {
		return err
	}
	return c.ack(ack)
}

func projectsRemoveMember(ctx context.Context, c *cli, args []string) error {
	project, user, err := memberFlags(c, "projects remove-member", args)
	if err != nil {
		return err
	}
	if err := c.requirePlanner("manage project teams"); err != nil {
		return err
	}
	ack, err := c.app.API.Projects.RemoveTeamMember(ctx, project, user)
	if err != nil {
		return err
	}
	return c.ack(ack)
}
