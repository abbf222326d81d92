package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmtool/pmctl/internal/core/domain"
)

var storiesCommands = map[string]command{
	"generate": storiesGenerate,
	"list":     storiesList,
}

func storiesGenerate(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("stories generate")
	var req domain.GenerateStoriesRequest
	fs.StringVar(&req.ProjectDescription, "description", "", "project description, or - to read it from stdin")
	fs.StringVar(&req.ProjectID, "project", "", "project to attach the stories to")
	fs.BoolVar(&req.CreateTasks, "create-tasks", false, "also create one task per story")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if req.CreateTasks && req.ProjectID == "" {
		return usageErrorf("stories generate: -create-tasks needs -project")
	}
	desc, err := c.secret(req.ProjectDescription)
	if err != nil {
		return err
	}
	req.ProjectDescription = strings.TrimSpace(desc)
	if req.ProjectDescription == "" {
		return usageErrorf("stories generate: need -description")
	}
	if _, err := c.identity(); err != nil {
		return err
	}

	out, err := c.app.API.Stories.Generate(ctx, req)
	if err != nil {
		return err
	}
	if c.json {
		return c.printJSON(out)
	}
	for i, s := range out.UserStories {
		fmt.Fprintf(c.out, "%d. %s\n", i+1, s)
	}
	if req.CreateTasks {
		fmt.Fprintf(c.out, "\ncreated a task for each of %d stories\n", out.Count)
	}
	return nil
}

func storiesList(ctx context.Context, c *cli, args []string) error {
	fs := c.newFlags("stories list")
	project := fs.String("project", "", "project id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *project == "" {
		return usageErrorf("stories list: need -project")
	}
	if _, err := c.identity(); err != nil {
		return err
	}
	records, err := c.app.API.Stories.List(ctx, *project)
	if err != nil {
		return err
	}
	if c.json {
		return c.printJSON(records)
	}
	for i, r := range records {
		if i > 0 {
			fmt.Fprintln(c.out)
		}
		when := "-"
		if !r.GeneratedAt.IsZero() {
			when = r.GeneratedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(c.out, "%s  %s\n", when, r.Description)
		for _, s := range r.Stories {
			fmt.Fprintf(c.out, "  - %s\n", s)
		}
	}
	return nil
}
