package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskPatch is a partial task update. Nil fields are left untouched.
// SupplierID pointing at "" unlinks the supplier, ClearEstimatedHours drops
// the estimate and ClearDeletedAt restores a trashed task. On the wire each
// becomes an explicit JSON null.
type TaskPatch struct {
	Title          *string
	Description    *string
	Notes          *string
	Status         *TaskStatus
	Priority       *Priority
	DueDate        *DueDate
	SupplierID     *string
	EstimatedHours *float64
	Tags           *[]string
	DeletedAt      *time.Time

	ClearEstimatedHours bool
	ClearDeletedAt      bool
}

// PatchFromTaskInput turns a full task form into a patch touching every
// editable field.
func PatchFromTaskInput(in TaskInput) TaskPatch {
	in = in.Normalize()
	supplier := ""
	if in.SupplierID != nil {
		supplier = *in.SupplierID
	}
	p := TaskPatch{
		Title:       &in.Title,
		Description: &in.Description,
		Notes:       &in.Notes,
		Priority:    &in.Priority,
		DueDate:     &in.DueDate,
		SupplierID:  &supplier,
	}
	if in.EstimatedHours != nil {
		p.EstimatedHours = in.EstimatedHours
	} else {
		p.ClearEstimatedHours = true
	}
	if in.Tags != nil {
		p.Tags = &in.Tags
	}
	return p
}

func (p TaskPatch) Empty() bool {
	return len(p.Columns()) == 0
}

// Apply merges the patch into t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.SupplierID != nil {
		if *p.SupplierID == "" {
			t.SupplierID = nil
		} else {
			id := *p.SupplierID
			t.SupplierID = &id
		}
	}
	if p.ClearEstimatedHours {
		t.EstimatedHours = nil
	} else if p.EstimatedHours != nil {
		h := *p.EstimatedHours
		t.EstimatedHours = &h
	}
	if p.Tags != nil {
		t.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.ClearDeletedAt {
		t.DeletedAt = nil
	} else if p.DeletedAt != nil {
		d := *p.DeletedAt
		t.DeletedAt = &d
	}
}

// Columns maps the patch onto persisted field names. Unlinking and restoring
// map to nil values.
func (p TaskPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Notes != nil {
		cols["notes"] = *p.Notes
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.Priority != nil {
		cols["priority"] = *p.Priority
	}
	if p.DueDate != nil {
		cols["due_date"] = p.DueDate.String()
	}
	if p.SupplierID != nil {
		if *p.SupplierID == "" {
			cols["supplier_id"] = nil
		} else {
			cols["supplier_id"] = *p.SupplierID
		}
	}
	if p.ClearEstimatedHours {
		cols["estimated_hours"] = nil
	} else if p.EstimatedHours != nil {
		cols["estimated_hours"] = *p.EstimatedHours
	}
	if p.Tags != nil {
		cols["tags"] = append([]string{}, (*p.Tags)...)
	}
	if p.ClearDeletedAt {
		cols["deleted_at"] = nil
	} else if p.DeletedAt != nil {
		cols["deleted_at"] = p.DeletedAt.UTC()
	}
	return cols
}

func (p TaskPatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Columns())
}

func (p *TaskPatch) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*p = TaskPatch{}
	for key, raw := range fields {
		null := string(raw) == "null"
		var err error
		switch key {
		case "title":
			p.Title = new(string)
			err = json.Unmarshal(raw, p.Title)
		case "description":
			p.Description = new(string)
			err = json.Unmarshal(raw, p.Description)
		case "notes":
			p.Notes = new(string)
			err = json.Unmarshal(raw, p.Notes)
		case "status":
			p.Status = new(TaskStatus)
			if err = json.Unmarshal(raw, p.Status); err == nil && !p.Status.Valid() {
				err = fmt.Errorf("invalid status %q", *p.Status)
			}
		case "priority":
			p.Priority = new(Priority)
			if err = json.Unmarshal(raw, p.Priority); err == nil && !p.Priority.Valid() {
				err = fmt.Errorf("invalid priority %q", *p.Priority)
			}
		case "due_date":
			p.DueDate = new(DueDate)
			err = json.Unmarshal(raw, p.DueDate)
		case "supplier_id":
			p.SupplierID = new(string)
			if !null {
				err = json.Unmarshal(raw, p.SupplierID)
			}
		case "estimated_hours":
			if null {
				p.ClearEstimatedHours = true
			} else {
				p.EstimatedHours = new(float64)
				err = json.Unmarshal(raw, p.EstimatedHours)
			}
		case "tags":
			tags := []string{}
			if !null {
				err = json.Unmarshal(raw, &tags)
			}
			p.Tags = &tags
		case "deleted_at":
			if null {
				p.ClearDeletedAt = true
			} else {
				p.DeletedAt = new(time.Time)
				err = json.Unmarshal(raw, p.DeletedAt)
			}
		default:
			return fmt.Errorf("unknown task field %q", key)
		}
		if err != nil {
			return fmt.Errorf("task field %q: %w", key, err)
		}
	}
	return nil
}
