package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	model "task-manager.com/task-manager/internal/models"
	"task-manager.com/task-manager/internal/store"
)

func renderStats(out io.Writer, stats store.Stats) {
	fmt.Fprintf(out, "Pending: %d  Completed: %d  Total: %d  Done: %d%%\n",
		stats.Pending, stats.Completed, stats.Total, stats.CompletionPercent)
}

func renderTasks(out io.Writer, tasks []model.TaskWithSupplier, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE\tSUPPLIER\tTAGS")
	for _, t := range tasks {
		supplier := "-"
		if t.Supplier != nil {
			supplier = t.Supplier.Name
		}
		due := dueLabel(t.DueDate)
		if t.IsOverdue(now) {
			due += " (overdue)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Status, t.Priority, due, t.Title, supplier, strings.Join(t.Tags, ","))
	}
	_ = w.Flush()
}

func renderSuppliers(out io.Writer, suppliers []model.Supplier) {
	if len(suppliers) == 0 {
		fmt.Fprintln(out, "No suppliers.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPHONE\tLOCATION\tEMAIL\tCATEGORY")
	for _, s := range suppliers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Phone, s.LocationName, s.Email, s.Category)
	}
	_ = w.Flush()
}

func dueLabel(d model.DueDate) string {
	due, ok := d.Time()
	if !ok {
		return "invalid date"
	}
	return due.Format(time.DateOnly)
}
