package validators

import (
	"strings"
	"time"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

// ValidateTaskInput checks a new task. today is the submitter's current day;
// due dates before it are rejected.
func ValidateTaskInput(in model.TaskInput, today time.Time) error {
	errs := map[string]string{}

	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = "title is required"
	}
	if msg := checkDueDate(in.DueDate); msg != "" {
		errs["due_date"] = msg
	} else if due, _ := in.DueDate.Time(); dayOf(due) < dayOf(today) {
		errs["due_date"] = "due date cannot be in the past"
	}
	if !in.Priority.Valid() {
		errs["priority"] = "priority is invalid"
	}
	if in.EstimatedHours != nil && *in.EstimatedHours < 0 {
		errs["estimated_hours"] = "estimated hours cannot be negative"
	}

	return apperrors.NewValidationError(errs)
}

// ValidateTaskPatch checks the fields present in an update. Past due dates
// are accepted so old tasks can be edited without moving them.
func ValidateTaskPatch(p model.TaskPatch) error {
	errs := map[string]string{}

	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		errs["title"] = "title is required"
	}
	if p.DueDate != nil {
		if msg := checkDueDate(*p.DueDate); msg != "" {
			errs["due_date"] = msg
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		errs["status"] = "status is invalid"
	}
	if p.Priority != nil && !p.Priority.Valid() {
		errs["priority"] = "priority is invalid"
	}
	if p.EstimatedHours != nil && *p.EstimatedHours < 0 {
		errs["estimated_hours"] = "estimated hours cannot be negative"
	}

	return apperrors.NewValidationError(errs)
}

func checkDueDate(d model.DueDate) string {
	if d.IsZero() {
		return "due date is required"
	}
	if _, ok := d.Time(); !ok {
		return "due date is invalid"
	}
	return ""
}

// dayOf compares calendar days as YYYY-MM-DD strings.
func dayOf(t time.Time) string {
	return t.Format(time.DateOnly)
}
