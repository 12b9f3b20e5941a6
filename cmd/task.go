package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"task-manager.com/task-manager/internal/http/validators"
	model "task-manager.com/task-manager/internal/models"
	"task-manager.com/task-manager/internal/store"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

type taskFlags struct {
	title       string
	description string
	notes       string
	status      string
	priority    string
	due         string
	supplier    string
	hours       float64
	clearHours  bool
	tags        []string
}

func (f *taskFlags) register(cmd *cobra.Command, edit bool) {
	cmd.Flags().StringVar(&f.title, "title", "", "task title")
	cmd.Flags().StringVar(&f.description, "description", "", "task description")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&f.priority, "priority", string(model.PriorityMedium), "low, medium or high")
	cmd.Flags().StringVar(&f.due, "due", "", "due date as YYYY-MM-DD")
	cmd.Flags().StringVar(&f.supplier, "supplier", "", "supplier id")
	cmd.Flags().Float64Var(&f.hours, "hours", 0, "estimated hours")
	cmd.Flags().StringSliceVar(&f.tags, "tags", nil, "comma-separated tags")
	if edit {
		cmd.Flags().StringVar(&f.status, "status", "", "pending or completed")
		cmd.Flags().Lookup("supplier").Usage = `supplier id, "" to unlink`
		cmd.Flags().BoolVar(&f.clearHours, "clear-hours", false, "remove the estimated hours")
		cmd.MarkFlagsMutuallyExclusive("hours", "clear-hours")
	}
}

func (f *taskFlags) input(cmd *cobra.Command) model.TaskInput {
	in := model.TaskInput{
		Title:       f.title,
		Description: f.description,
		Notes:       f.notes,
		Priority:    model.Priority(strings.ToLower(f.priority)),
		DueDate:     dueDate(f.due),
		Tags:        f.tags,
	}
	if f.supplier != "" {
		in.SupplierID = &f.supplier
	}
	if cmd.Flags().Changed("hours") {
		in.EstimatedHours = &f.hours
	}
	return in.Normalize()
}

// patch carries only the flags given on the command line.
func (f *taskFlags) patch(cmd *cobra.Command) model.TaskPatch {
	var p model.TaskPatch
	changed := cmd.Flags().Changed

	if changed("title") {
		title := strings.TrimSpace(f.title)
		p.Title = &title
	}
	if changed("description") {
		p.Description = &f.description
	}
	if changed("notes") {
		p.Notes = &f.notes
	}
	if changed("status") {
		status := model.TaskStatus(strings.ToLower(f.status))
		p.Status = &status
	}
	if changed("priority") {
		priority := model.Priority(strings.ToLower(f.priority))
		p.Priority = &priority
	}
	if changed("due") {
		due := dueDate(f.due)
		p.DueDate = &due
	}
	if changed("supplier") {
		p.SupplierID = &f.supplier
	}
	if changed("hours") {
		p.EstimatedHours = &f.hours
	}
	p.ClearEstimatedHours = f.clearHours
	if changed("tags") {
		p.Tags = &f.tags
	}
	return p
}

// dueDate keeps unparseable input as-is so validation can report it.
func dueDate(day string) model.DueDate {
	if d, ok := model.DateOnly(day); ok {
		return d
	}
	return model.ParseDueDate(day)
}

func newTaskAddCmd() *cobra.Command {
	var flags taskFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := flags.input(cmd)
			if err := validators.ValidateTaskInput(in, time.Now()); err != nil {
				return err
			}

			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			task, err := ws.store.AddTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), task.ID)
			return nil
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newTaskEditCmd() *cobra.Command {
	var flags taskFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := flags.patch(cmd)
			if patch.Empty() {
				return fmt.Errorf("nothing to change")
			}
			if err := validators.ValidateTaskPatch(patch); err != nil {
				return err
			}

			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			return ws.store.UpdateTask(cmd.Context(), args[0], patch)
		},
	}
	flags.register(cmd, true)
	return cmd
}

// newTaskActionCmd builds the single-id commands that map straight onto a
// store operation.
func newTaskActionCmd(use, short string, action func(*store.Store, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			return action(ws.store, cmd.Context(), args[0])
		},
	}
}

func newTaskListCmd() *cobra.Command {
	var trash bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			if trash {
				renderTasks(cmd.OutOrStdout(), ws.store.TrashedTasks(), time.Now())
				return nil
			}
			if err := applyFilters(ws.store); err != nil {
				return err
			}
			renderTasks(cmd.OutOrStdout(), ws.store.FilteredTasks(), time.Now())
			return nil
		},
	}
	cmd.Flags().BoolVar(&trash, "trash", false, "list trashed tasks instead")
	addFilterFlags(cmd)
	return cmd
}

func init() {
	taskCmd.AddCommand(
		newTaskAddCmd(),
		newTaskEditCmd(),
		newTaskActionCmd("toggle", "Flip a task between pending and completed", (*store.Store).ToggleStatus),
		newTaskActionCmd("trash", "Move a task to the trash", (*store.Store).SoftDelete),
		newTaskActionCmd("restore", "Take a task out of the trash", (*store.Store).Restore),
		newTaskActionCmd("purge", "Delete a task permanently", (*store.Store).PermanentDelete),
		newTaskListCmd(),
	)
	rootCmd.AddCommand(taskCmd)
}
