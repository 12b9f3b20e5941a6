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

type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) CreateSupplier(ctx context.Context, userID string, in model.SupplierInput) (model.Supplier, error) {
	record := newSupplierRecord(model.Supplier{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         in.Name,
		Phone:        in.Phone,
		LocationName: in.LocationName,
		Email:        in.Email,
		Category:     in.Category,
		Notes:        in.Notes,
		CreatedAt:    time.Now().UTC(),
	})

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return model.Supplier{}, err
	}
	return record.model(), nil
}

func (r *SupplierRepository) FindByID(ctx context.Context, userID, id string) (model.Supplier, error) {
	return findSupplier(r.db.WithContext(ctx), userID, id)
}

// List returns the user's suppliers ordered by name.
func (r *SupplierRepository) List(ctx context.Context, userID string) ([]model.Supplier, error) {
	var records []supplierRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	suppliers := make([]model.Supplier, len(records))
	for i, rec := range records {
		suppliers[i] = rec.model()
	}
	return suppliers, nil
}

func (r *SupplierRepository) Update(ctx context.Context, userID, id string, patch model.SupplierPatch) (model.Supplier, error) {
	var updated model.Supplier
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findSupplier(tx, userID, id); err != nil {
			return err
		}

		if columns := patch.Columns(); len(columns) > 0 {
			err := tx.Model(&supplierRecord{}).
				Where("id = ? AND user_id = ?", id, userID).
				Updates(columns).Error
			if err != nil {
				return err
			}
		}

		var err error
		updated, err = findSupplier(tx, userID, id)
		return err
	})
	return updated, err
}

// Delete removes the supplier unless a task, trashed or not, still links to it.
func (r *SupplierRepository) Delete(ctx context.Context, userID, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findSupplier(tx, userID, id); err != nil {
			return err
		}

		var linked int64
		if err := tx.Model(&taskRecord{}).Where("supplier_id = ?", id).Count(&linked).Error; err != nil {
			return err
		}
		if linked > 0 {
			return apperrors.ErrSupplierInUse
		}

		return tx.Where("id = ? AND user_id = ?", id, userID).Delete(&supplierRecord{}).Error
	})
	if err != nil && isForeignKeyViolation(err) {
		return apperrors.ErrSupplierInUse
	}
	return err
}

func findSupplier(db *gorm.DB, userID, id string) (model.Supplier, error) {
	var record supplierRecord
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Supplier{}, apperrors.ErrSupplierNotFound
	}
	if err != nil {
		return model.Supplier{}, err
	}
	return record.model(), nil
}
