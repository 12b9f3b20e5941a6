package model

import (
	"strings"
	"time"
)

type Supplier struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id,omitempty"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	LocationName string    `json:"location_name"`
	Email        string    `json:"email,omitempty"`
	Category     string    `json:"category,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type SupplierInput struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	LocationName string `json:"location_name"`
	Email        string `json:"email,omitempty"`
	Category     string `json:"category,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func (in SupplierInput) Normalize() SupplierInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.LocationName = strings.TrimSpace(in.LocationName)
	in.Email = strings.TrimSpace(in.Email)
	in.Category = strings.TrimSpace(in.Category)
	in.Notes = strings.TrimSpace(in.Notes)
	return in
}

// SupplierPatch is a partial supplier update; nil fields are left untouched.
type SupplierPatch struct {
	Name         *string `json:"name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	LocationName *string `json:"location_name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Category     *string `json:"category,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// PatchFromInput turns a full supplier form into a patch touching every field.
func PatchFromInput(in SupplierInput) SupplierPatch {
	in = in.Normalize()
	return SupplierPatch{
		Name:         &in.Name,
		Phone:        &in.Phone,
		LocationName: &in.LocationName,
		Email:        &in.Email,
		Category:     &in.Category,
		Notes:        &in.Notes,
	}
}

func (p SupplierPatch) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.LocationName == nil &&
		p.Email == nil && p.Category == nil && p.Notes == nil
}

func (p SupplierPatch) Apply(s *Supplier) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.LocationName != nil {
		s.LocationName = *p.LocationName
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Category != nil {
		s.Category = *p.Category
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
}

// Columns maps the patch onto persisted column names.
func (p SupplierPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Phone != nil {
		cols["phone"] = *p.Phone
	}
	if p.LocationName != nil {
		cols["location_name"] = *p.LocationName
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Notes != nil {
		cols["notes"] = *p.Notes
	}
	return cols
}
