package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeTasks decodes and validates a list of task records read from the
// backing service. One malformed record rejects the whole list.
func DecodeTasks(data []byte) ([]Task, error) {
	var tasks []Task
	if err := decodeStrict(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	for i := range tasks {
		if err := tasks[i].Validate(); err != nil {
			return nil, fmt.Errorf("decode tasks: record %d: %w", i, err)
		}
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

func DecodeTask(data []byte) (Task, error) {
	var task Task
	if err := decodeStrict(data, &task); err != nil {
		return Task{}, fmt.Errorf("decode task: %w", err)
	}
	if err := task.Validate(); err != nil {
		return Task{}, fmt.Errorf("decode task: %w", err)
	}
	return task, nil
}

func DecodeSuppliers(data []byte) ([]Supplier, error) {
	var suppliers []Supplier
	if err := decodeStrict(data, &suppliers); err != nil {
		return nil, fmt.Errorf("decode suppliers: %w", err)
	}
	for i := range suppliers {
		if err := suppliers[i].Validate(); err != nil {
			return nil, fmt.Errorf("decode suppliers: record %d: %w", i, err)
		}
	}
	if suppliers == nil {
		suppliers = []Supplier{}
	}
	return suppliers, nil
}

func DecodeSupplier(data []byte) (Supplier, error) {
	var supplier Supplier
	if err := decodeStrict(data, &supplier); err != nil {
		return Supplier{}, fmt.Errorf("decode supplier: %w", err)
	}
	if err := supplier.Validate(); err != nil {
		return Supplier{}, fmt.Errorf("decode supplier: %w", err)
	}
	return supplier, nil
}

// Validate checks the invariants every task record must satisfy. The due
// date is deliberately not checked.
func (t Task) Validate() error {
	switch {
	case t.ID == "":
		return fmt.Errorf("task id is empty")
	case t.Title == "":
		return fmt.Errorf("task %s: title is empty", t.ID)
	case !t.Status.Valid():
		return fmt.Errorf("task %s: invalid status %q", t.ID, t.Status)
	case !t.Priority.Valid():
		return fmt.Errorf("task %s: invalid priority %q", t.ID, t.Priority)
	case t.EstimatedHours != nil && *t.EstimatedHours < 0:
		return fmt.Errorf("task %s: negative estimated hours", t.ID)
	}
	return nil
}

func (s Supplier) Validate() error {
	switch {
	case s.ID == "":
		return fmt.Errorf("supplier id is empty")
	case s.Name == "":
		return fmt.Errorf("supplier %s: name is empty", s.ID)
	}
	return nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
