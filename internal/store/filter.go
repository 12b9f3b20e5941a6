package store

import (
	"fmt"
	"strings"

	model "task-manager.com/task-manager/internal/models"
)

const filterAll = "all"

// StatusFilter is "all" or a task status.
type StatusFilter string

// PriorityFilter is "all" or a task priority.
type PriorityFilter string

const (
	StatusAll   StatusFilter   = filterAll
	PriorityAll PriorityFilter = filterAll
)

func ParseStatusFilter(s string) (StatusFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == filterAll {
		return StatusAll, nil
	}
	if !model.TaskStatus(s).Valid() {
		return "", fmt.Errorf("invalid status filter %q", s)
	}
	return StatusFilter(s), nil
}

func ParsePriorityFilter(s string) (PriorityFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == filterAll {
		return PriorityAll, nil
	}
	if !model.Priority(s).Valid() {
		return "", fmt.Errorf("invalid priority filter %q", s)
	}
	return PriorityFilter(s), nil
}

// Filter holds the current list selections. The zero value filters nothing.
type Filter struct {
	Status   StatusFilter
	Priority PriorityFilter
	Query    string
}

func (f Filter) matches(t model.Task) bool {
	if f.Status != "" && f.Status != StatusAll && t.Status != model.TaskStatus(f.Status) {
		return false
	}
	if f.Priority != "" && f.Priority != PriorityAll && t.Priority != model.Priority(f.Priority) {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Query)) {
		return false
	}
	return true
}
