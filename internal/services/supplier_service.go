package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
	"task-manager.com/task-manager/internal/realtime"
	repository "task-manager.com/task-manager/internal/repositories"
)

type SupplierService struct {
	repo *repository.SupplierRepository
	feed realtime.Feed
	log  *zap.SugaredLogger
}

func NewSupplierService(repo *repository.SupplierRepository, feed realtime.Feed, log *zap.SugaredLogger) *SupplierService {
	return &SupplierService{
		repo: repo,
		feed: feed,
		log:  log,
	}
}

func (s *SupplierService) CreateSupplier(ctx context.Context, userID string, in model.SupplierInput) (model.Supplier, error) {
	supplier, err := s.repo.CreateSupplier(ctx, userID, in.Normalize())
	if err != nil {
		return model.Supplier{}, err
	}

	publish(ctx, s.feed, s.log, model.Change{Table: model.TableSuppliers, Type: model.ChangeInsert, ID: supplier.ID, UserID: userID})
	return supplier, nil
}

func (s *SupplierService) ListSuppliers(ctx context.Context, userID string) ([]model.Supplier, error) {
	return s.repo.List(ctx, userID)
}

func (s *SupplierService) UpdateSupplier(ctx context.Context, userID, id string, patch model.SupplierPatch) (model.Supplier, error) {
	if id == "" {
		return model.Supplier{}, apperrors.ErrSupplierIDRequired
	}

	supplier, err := s.repo.Update(ctx, userID, id, patch)
	if err != nil {
		return model.Supplier{}, err
	}

	publish(ctx, s.feed, s.log, model.Change{Table: model.TableSuppliers, Type: model.ChangeUpdate, ID: id, UserID: userID})
	return supplier, nil
}

// DeleteSupplier fails with ErrSupplierInUse while any task links to it.
func (s *SupplierService) DeleteSupplier(ctx context.Context, userID, id string) error {
	if id == "" {
		return apperrors.ErrSupplierIDRequired
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, apperrors.ErrSupplierInUse) {
			s.log.Infow("refused to delete linked supplier", "supplier", id, "user", userID)
		}
		return err
	}

	publish(ctx, s.feed, s.log, model.Change{Table: model.TableSuppliers, Type: model.ChangeDelete, ID: id, UserID: userID})
	return nil
}
