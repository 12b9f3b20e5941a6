package store

import (
	"math"
	"slices"

	model "task-manager.com/task-manager/internal/models"
)

// Stats are the dashboard counters over active tasks.
type Stats struct {
	Pending           int `json:"pending"`
	Completed         int `json:"completed"`
	Total             int `json:"total"`
	CompletionPercent int `json:"completion_percent"`
}

func activeTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Trashed() {
			out = append(out, t)
		}
	}
	return out
}

func trashedTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0)
	for _, t := range tasks {
		if t.Trashed() {
			out = append(out, t)
		}
	}
	return out
}

func filterTasks(tasks []model.Task, f Filter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range activeTasks(tasks) {
		if f.matches(t) {
			out = append(out, t)
		}
	}
	sortTasks(out)
	return out
}

// sortTasks orders by priority (high first), then by due date ascending.
// Missing or unparseable due dates count as the epoch and lead their band.
func sortTasks(tasks []model.Task) {
	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		if d := a.Priority.Rank() - b.Priority.Rank(); d != 0 {
			return d
		}
		return a.DueDate.SortKey().Compare(b.DueDate.SortKey())
	})
}

func joinSuppliers(tasks []model.Task, suppliers []model.Supplier) []model.TaskWithSupplier {
	byID := make(map[string]model.Supplier, len(suppliers))
	for _, s := range suppliers {
		byID[s.ID] = s
	}
	out := make([]model.TaskWithSupplier, 0, len(tasks))
	for _, t := range tasks {
		joined := model.TaskWithSupplier{Task: t.Clone()}
		if t.SupplierID != nil {
			if s, ok := byID[*t.SupplierID]; ok {
				joined.Supplier = &s
			}
		}
		out = append(out, joined)
	}
	return out
}

func countStats(tasks []model.Task) Stats {
	var st Stats
	for _, t := range tasks {
		if t.Trashed() {
			continue
		}
		switch t.Status {
		case model.StatusPending:
			st.Pending++
		case model.StatusCompleted:
			st.Completed++
		}
	}
	st.Total = st.Pending + st.Completed
	if st.Total > 0 {
		st.CompletionPercent = int(math.Round(float64(st.Completed) * 100 / float64(st.Total)))
	}
	return st
}
