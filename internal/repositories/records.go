package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	model "task-manager.com/task-manager/internal/models"
)

// tagList stores task tags as a JSON array in a text column.
type tagList []string

func (tagList) GormDataType() string {
	return "text"
}

func (t tagList) Value() (driver.Value, error) {
	if t == nil {
		t = tagList{}
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *tagList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan tags: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*t = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(t))
}

type userRecord struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userRecord) TableName() string { return "users" }

type revokedTokenRecord struct {
	ID        string    `gorm:"primaryKey;size:36"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

func (revokedTokenRecord) TableName() string { return "revoked_tokens" }

type supplierRecord struct {
	ID           string `gorm:"primaryKey;size:36"`
	UserID       string `gorm:"size:36;index;not null"`
	Name         string `gorm:"size:255;not null"`
	Phone        string `gorm:"size:64;not null"`
	LocationName string `gorm:"size:255"`
	Email        string `gorm:"size:255"`
	Category     string `gorm:"size:255"`
	Notes        string `gorm:"type:text"`
	CreatedAt    time.Time
}

func (supplierRecord) TableName() string { return model.TableSuppliers }

type taskRecord struct {
	ID             string          `gorm:"primaryKey;size:36"`
	UserID         string          `gorm:"size:36;index;not null"`
	Title          string          `gorm:"size:255;not null"`
	Description    string          `gorm:"type:text"`
	Notes          string          `gorm:"type:text"`
	Status         string          `gorm:"size:16;not null"`
	Priority       string          `gorm:"size:16;not null"`
	DueDate        string          `gorm:"size:40"`
	SupplierID     *string         `gorm:"size:36;index"`
	Supplier       *supplierRecord `gorm:"foreignKey:SupplierID;constraint:OnDelete:RESTRICT"`
	EstimatedHours *float64
	Tags           tagList
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time `gorm:"index"`
}

func (taskRecord) TableName() string { return model.TableTasks }

func newTaskRecord(t model.Task) taskRecord {
	return taskRecord{
		ID:             t.ID,
		UserID:         t.UserID,
		Title:          t.Title,
		Description:    t.Description,
		Notes:          t.Notes,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		DueDate:        t.DueDate.String(),
		SupplierID:     t.SupplierID,
		EstimatedHours: t.EstimatedHours,
		Tags:           tagList(t.Tags),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		DeletedAt:      t.DeletedAt,
	}
}

func (r taskRecord) model() model.Task {
	t := model.Task{
		ID:             r.ID,
		UserID:         r.UserID,
		Title:          r.Title,
		Description:    r.Description,
		Notes:          r.Notes,
		Status:         model.TaskStatus(r.Status),
		Priority:       model.Priority(r.Priority),
		DueDate:        model.ParseDueDate(r.DueDate),
		SupplierID:     r.SupplierID,
		EstimatedHours: r.EstimatedHours,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
	if len(r.Tags) > 0 {
		t.Tags = []string(r.Tags)
	}
	if r.DeletedAt != nil {
		d := r.DeletedAt.UTC()
		t.DeletedAt = &d
	}
	return t
}

func newSupplierRecord(s model.Supplier) supplierRecord {
	return supplierRecord{
		ID:           s.ID,
		UserID:       s.UserID,
		Name:         s.Name,
		Phone:        s.Phone,
		LocationName: s.LocationName,
		Email:        s.Email,
		Category:     s.Category,
		Notes:        s.Notes,
		CreatedAt:    s.CreatedAt,
	}
}

func (r supplierRecord) model() model.Supplier {
	return model.Supplier{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		Phone:        r.Phone,
		LocationName: r.LocationName,
		Email:        r.Email,
		Category:     r.Category,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

// Migrate creates or updates every table the repositories use.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRecord{}, &revokedTokenRecord{}, &supplierRecord{}, &taskRecord{})
}

// isForeignKeyViolation covers drivers opened without TranslateError.
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "foreign key constraint fails")
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}
