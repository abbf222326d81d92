package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/pmtool/pmctl/internal/core/domain"
)

var reportsCommands = map[string]command{
	"dashboard": reportsDashboard,
	"by-status": reportsByStatus,
	"overdue":   reportsOverdue,
	"workload":  reportsWorkload,
}

func (c *cli) reportArgs(name string, args []string) error {
	if err := parseFlags(c.newFlags(name), args); err != nil {
		return err
	}
	_, err := c.identity()
	return err
}

func reportsDashboard(ctx context.Context, c *cli, args []string) error {
	if err := c.reportArgs("reports dashboard", args); err != nil {
		return err
	}
	d, err := c.app.API.Reports.Dashboard(ctx)
	if err != nil {
		return err
	}
	if c.json {
		return c.printJSON(d)
	}
	if err := c.fields(
		"Projects", strconv.Itoa(d.TotalProjects),
		"Tasks", strconv.Itoa(d.TotalTasks),
		"Users", strconv.Itoa(d.TotalUsers),
		"Overdue", strconv.Itoa(d.OverdueTasks),
		"Completion", fmt.Sprintf("%.1f%%", d.CompletionRate),
	); err != nil {
		return err
	}
	if len(d.TasksByStatus) > 0 {
		fmt.Fprintln(c.out)
		if err := c.printStatusCounts(d.TasksByStatus); err != nil {
			return err
		}
	}
	if len(d.RecentOverdueTasks) > 0 {
		fmt.Fprintln(c.out, "\nRecent overdue:")
		return c.printTasks(ctx, d.RecentOverdueTasks)
	}
	return nil
}

func (c *cli) printStatusCounts(counts domain.StatusCounts) error {
	sorted := counts.Sorted()
	rows := make([][]string, 0, len(sorted))
	for _, sc := range sorted {
		rows = append(rows, []string{c.paint(string(sc.Status), sc.Status.Tone()), strconv.Itoa(sc.Count)})
	}
	return c.table([]string{"STATUS", "TASKS"}, rows)
}

func reportsByStatus(ctx context.Context, c *cli, args []string) error {
	if err := c.reportArgs("reports by-status", args); err != nil {
		return err
	}
	counts, err := c.app.API.Reports.TasksByStatus(ctx)
	if err != nil {
		return err
	}
	if c.json {
		return c.printJSON(counts)
	}
	return c.printStatusCounts(counts)
}

func reportsOverdue(ctx context.Context, c *cli, args []string) error {
	if err := c.reportArgs("reports overdue", args); err != nil {
		return err
	}
	tasks, err := c.app.API.Reports.OverdueTasks(ctx)
	if err != nil {
		return err
	}
	if c.json {
		return c.printJSON(tasks)
	}
	return c.printTasks(ctx, tasks)
}

func reportsWorkload(ctx context.Context, c *cli, args []string) error {
	if err := c.reportArgs("reports workload", args); err != nil {
		return err
	}
	load, err := c.app.API.Reports.UserWorkload(ctx)
	if err != nil {
		return err
	}
	if c.json {
		return c.printJSON(load)
	}
	users, err := c.users(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(load))
	for id := range load {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if load[ids[i]] != load[ids[j]] {
			return load[ids[i]] > load[ids[j]]
		}
		return ids[i] < ids[j]
	})
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, []string{domain.UserName(users, id), strconv.Itoa(load[id])})
	}
	return c.table([]string{"USER", "TASKS"}, rows)
}
