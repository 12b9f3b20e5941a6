package model

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Toggled returns the opposite status.
func (s TaskStatus) Toggled() TaskStatus {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Rank orders priorities for sorting: high < medium < low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

type Task struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Status         TaskStatus `json:"status"`
	Priority       Priority   `json:"priority"`
	DueDate        DueDate    `json:"due_date"`
	SupplierID     *string    `json:"supplier_id"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at"`
}

func (t Task) Trashed() bool {
	return t.DeletedAt != nil
}

// IsOverdue reports whether a pending task is due before the start of now's day.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Status == StatusCompleted {
		return false
	}
	due, ok := t.DueDate.Time()
	if !ok {
		return false
	}
	y, m, d := now.Date()
	return due.Before(time.Date(y, m, d, 0, 0, 0, 0, now.Location()))
}

// Clone returns a deep copy so callers never share pointers or slices with the store.
func (t Task) Clone() Task {
	out := t
	if t.SupplierID != nil {
		id := *t.SupplierID
		out.SupplierID = &id
	}
	if t.EstimatedHours != nil {
		h := *t.EstimatedHours
		out.EstimatedHours = &h
	}
	if t.DeletedAt != nil {
		d := *t.DeletedAt
		out.DeletedAt = &d
	}
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	return out
}

// TaskInput is the data a user submits to create a task.
type TaskInput struct {
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Priority       Priority `json:"priority"`
	DueDate        DueDate  `json:"due_date"`
	SupplierID     *string  `json:"supplier_id,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// Normalize trims free text and drops empty tags and an empty supplier link.
func (in TaskInput) Normalize() TaskInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.SupplierID != nil && strings.TrimSpace(*in.SupplierID) == "" {
		in.SupplierID = nil
	}
	in.Tags = cleanTags(in.Tags)
	return in
}

func cleanTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// TaskWithSupplier is a task joined in memory with its supplier, if any.
type TaskWithSupplier struct {
	Task
	Supplier *Supplier `json:"supplier,omitempty"`
}
