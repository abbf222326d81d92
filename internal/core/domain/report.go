package domain

import "sort"

// Dashboard is GET /api/reports/dashboard. Every field is optional; absent
// numbers read as zero and an absent overdue list as empty.
type Dashboard struct {
	TotalProjects      int          `json:"total_projects"`
	TotalTasks         int          `json:"total_tasks"`
	TotalUsers         int          `json:"total_users"`
	OverdueTasks       int          `json:"overdue_tasks"`
	CompletionRate     float64      `json:"completion_rate"`
	TasksByStatus      StatusCounts `json:"tasks_by_status"`
	RecentOverdueTasks []Task       `json:"recent_overdue_tasks"`
}

// StatusCounts maps a task status to the number of tasks in it.
type StatusCounts map[TaskStatus]int

// StatusCount is one entry of StatusCounts.
type StatusCount struct {
	Status TaskStatus
	Count  int
}

// Sorted returns the entries in workflow order, unknown statuses last by name.
func (c StatusCounts) Sorted() []StatusCount {
	rank := map[TaskStatus]int{TaskPlanning: 0, TaskToDo: 1, TaskInProgress: 2, TaskDone: 3}
	out := make([]StatusCount, 0, len(c))
	for s, n := range c {
		out = append(out, StatusCount{Status: s, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, iok := rank[out[i].Status]
		rj, jok := rank[out[j].Status]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return out[i].Status < out[j].Status
		}
	})
	return out
}

// Workload maps a user id to the number of tasks assigned to it.
type Workload map[string]int
