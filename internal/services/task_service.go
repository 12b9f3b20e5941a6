package services

import (
	"context"

	"go.uber.org/zap"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
	"task-manager.com/task-manager/internal/realtime"
	repository "task-manager.com/task-manager/internal/repositories"
)

type TaskService struct {
	tasks     *repository.TaskRepository
	suppliers *repository.SupplierRepository
	feed      realtime.Feed
	log       *zap.SugaredLogger
}

func NewTaskService(
	tasks *repository.TaskRepository,
	suppliers *repository.SupplierRepository,
	feed realtime.Feed,
	log *zap.SugaredLogger,
) *TaskService {
	return &TaskService{
		tasks:     tasks,
		suppliers: suppliers,
		feed:      feed,
		log:       log,
	}
}

// CreateTask stores a new pending task for the user.
func (s *TaskService) CreateTask(ctx context.Context, userID string, in model.TaskInput) (model.Task, error) {
	in = in.Normalize()
	if in.SupplierID != nil {
		if err := s.ensureSupplier(ctx, userID, *in.SupplierID); err != nil {
			return model.Task{}, err
		}
	}

	task, err := s.tasks.CreateTask(ctx, userID, in)
	if err != nil {
		return model.Task{}, err
	}

	publish(ctx, s.feed, s.log, model.Change{Table: model.TableTasks, Type: model.ChangeInsert, ID: task.ID, UserID: userID})
	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, userID, id string) (model.Task, error) {
	if id == "" {
		return model.Task{}, apperrors.ErrTaskIDRequired
	}
	return s.tasks.FindByID(ctx, userID, id)
}

func (s *TaskService) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	return s.tasks.List(ctx, userID)
}

func (s *TaskService) UpdateTask(ctx context.Context, userID, id string, patch model.TaskPatch) (model.Task, error) {
	if id == "" {
		return model.Task{}, apperrors.ErrTaskIDRequired
	}
	if patch.SupplierID != nil && *patch.SupplierID != "" {
		if err := s.ensureSupplier(ctx, userID, *patch.SupplierID); err != nil {
			return model.Task{}, err
		}
	}

	task, err := s.tasks.Update(ctx, userID, id, patch)
	if err != nil {
		return model.Task{}, err
	}

	publish(ctx, s.feed, s.log, model.Change{Table: model.TableTasks, Type: model.ChangeUpdate, ID: id, UserID: userID})
	return task, nil
}

// DeleteTask removes the task for good. Moving to the trash is an update.
func (s *TaskService) DeleteTask(ctx context.Context, userID, id string) error {
	if id == "" {
		return apperrors.ErrTaskIDRequired
	}
	if err := s.tasks.Delete(ctx, userID, id); err != nil {
		return err
	}

	publish(ctx, s.feed, s.log, model.Change{Table: model.TableTasks, Type: model.ChangeDelete, ID: id, UserID: userID})
	return nil
}

// ensureSupplier rejects links to suppliers the user does not own.
func (s *TaskService) ensureSupplier(ctx context.Context, userID, supplierID string) error {
	_, err := s.suppliers.FindByID(ctx, userID, supplierID)
	return err
}

// publish reports a committed write. A lost notification only delays other
// clients until their next refetch, so it never fails the write.
func publish(ctx context.Context, feed realtime.Feed, log *zap.SugaredLogger, change model.Change) {
	if err := feed.Publish(ctx, change); err != nil {
		log.Warnw("failed to publish change", "table", change.Table, "id", change.ID, "error", err)
	}
}
