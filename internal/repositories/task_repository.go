package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) CreateTask(ctx context.Context, userID string, in model.TaskInput) (model.Task, error) {
	now := time.Now().UTC()
	task := model.Task{
		ID:             uuid.NewString(),
		UserID:         userID,
		Title:          in.Title,
		Description:    in.Description,
		Notes:          in.Notes,
		Status:         model.StatusPending,
		Priority:       in.Priority,
		DueDate:        in.DueDate,
		SupplierID:     in.SupplierID,
		EstimatedHours: in.EstimatedHours,
		Tags:           in.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	record := newTaskRecord(task)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isForeignKeyViolation(err) {
			return model.Task{}, apperrors.ErrSupplierNotFound
		}
		return model.Task{}, err
	}

	return record.model(), nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, id string) (model.Task, error) {
	return findTask(r.db.WithContext(ctx), userID, id)
}

// List returns every task of the user, trashed ones included, newest first.
func (r *TaskRepository) List(ctx context.Context, userID string) ([]model.Task, error) {
	var records []taskRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	tasks := make([]model.Task, len(records))
	for i, rec := range records {
		tasks[i] = rec.model()
	}
	return tasks, nil
}

// Update applies patch to the user's task and returns the stored result.
func (r *TaskRepository) Update(ctx context.Context, userID, id string, patch model.TaskPatch) (model.Task, error) {
	var updated model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findTask(tx, userID, id); err != nil {
			return err
		}

		columns := patch.Columns()
		if tags, ok := columns["tags"].([]string); ok {
			columns["tags"] = tagList(tags)
		}
		columns["updated_at"] = time.Now().UTC()

		res := tx.Model(&taskRecord{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(columns)
		if res.Error != nil {
			if isForeignKeyViolation(res.Error) {
				return apperrors.ErrSupplierNotFound
			}
			return res.Error
		}

		var err error
		updated, err = findTask(tx, userID, id)
		return err
	})
	return updated, err
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&taskRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

func findTask(db *gorm.DB, userID, id string) (model.Task, error) {
	var record taskRecord
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Task{}, apperrors.ErrTaskNotFound
	}
	if err != nil {
		return model.Task{}, err
	}
	return record.model(), nil
}
