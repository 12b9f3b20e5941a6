package store

import (
	"context"
	"time"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

const reconcileTimeout = 30 * time.Second

// AddTask creates a pending task and adds the server's record once the
// service confirms it. Nothing is inserted locally before that.
func (s *Store) AddTask(ctx context.Context, in model.TaskInput) (model.Task, error) {
	if err := s.authorize(); err != nil {
		return model.Task{}, err
	}

	created, err := s.remote.CreateTask(ctx, in.Normalize())
	if err != nil {
		s.fail("Could not add task", err)
		return model.Task{}, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return created, nil
	}
	s.ops.stamp(taskKey(created.ID))
	if i := s.indexTask(created.ID); i >= 0 {
		s.tasks[i] = created.Clone()
	} else {
		s.tasks = append(s.tasks, created.Clone())
	}
	s.mu.Unlock()
	s.changed()

	s.succeed("Task added", created.Title)
	return created, nil
}

// UpdateTask merges patch into the task right away. If the remote update
// fails the task is restored to its exact pre-update snapshot.
func (s *Store) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) error {
	return s.mutateTask(ctx, id, "Task updated", "Could not update task",
		func(t *model.Task) model.TaskPatch {
			patch.Apply(t)
			return patch
		},
		func(t *model.Task, before model.Task) {
			*t = before
		},
	)
}

// ToggleStatus flips pending and completed. A failed remote write restores
// the previous status.
func (s *Store) ToggleStatus(ctx context.Context, id string) error {
	return s.mutateTask(ctx, id, "", "Could not change status",
		func(t *model.Task) model.TaskPatch {
			status := t.Status.Toggled()
			t.Status = status
			return model.TaskPatch{Status: &status}
		},
		func(t *model.Task, before model.Task) {
			t.Status = before.Status
			t.UpdatedAt = before.UpdatedAt
		},
	)
}

// SoftDelete moves the task to the trash.
func (s *Store) SoftDelete(ctx context.Context, id string) error {
	return s.mutateTask(ctx, id, "Task moved to trash", "Could not move task to trash",
		func(t *model.Task) model.TaskPatch {
			now := s.now().UTC()
			t.DeletedAt = &now
			return model.TaskPatch{DeletedAt: &now}
		},
		func(t *model.Task, before model.Task) {
			t.DeletedAt = before.Clone().DeletedAt
			t.UpdatedAt = before.UpdatedAt
		},
	)
}

// Restore takes the task out of the trash.
func (s *Store) Restore(ctx context.Context, id string) error {
	return s.mutateTask(ctx, id, "Task restored", "Could not restore task",
		func(t *model.Task) model.TaskPatch {
			t.DeletedAt = nil
			return model.TaskPatch{ClearDeletedAt: true}
		},
		func(t *model.Task, before model.Task) {
			t.DeletedAt = before.Clone().DeletedAt
			t.UpdatedAt = before.UpdatedAt
		},
	)
}

// PermanentDelete removes the task locally and remotely. A failed delete is
// recovered by refetching, never by re-inserting the local copy.
func (s *Store) PermanentDelete(ctx context.Context, id string) error {
	if err := s.authorize(); err != nil {
		return err
	}

	s.mu.Lock()
	i := s.indexTask(id)
	if i < 0 {
		s.mu.Unlock()
		return apperrors.ErrTaskNotFound
	}
	title := s.tasks[i].Title
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	o := s.ops.begin(taskKey(id))
	s.mu.Unlock()
	s.changed()

	err := o.wait(ctx)
	if err == nil {
		err = s.remote.DeleteTask(ctx, id)
	}

	s.mu.Lock()
	if err != nil {
		s.ops.markDirty(o.key)
	}
	reconcile := s.ops.finish(o)
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return err
	}

	if err != nil {
		s.fail("Could not delete task", err)
	} else {
		s.succeed("Task deleted permanently", title)
	}
	if reconcile {
		s.refetch(ctx)
	}
	return err
}

// mutateTask applies an optimistic change, sends the resulting patch and
// handles failure. The failed change is reverted only when it is still the
// newest mutation of the task; otherwise the task is reconciled by refetch
// once its last in-flight mutation settles.
func (s *Store) mutateTask(
	ctx context.Context,
	id string,
	okTitle, failTitle string,
	apply func(t *model.Task) model.TaskPatch,
	revert func(t *model.Task, before model.Task),
) error {
	if err := s.authorize(); err != nil {
		return err
	}

	s.mu.Lock()
	i := s.indexTask(id)
	if i < 0 {
		s.mu.Unlock()
		return apperrors.ErrTaskNotFound
	}
	before := s.tasks[i].Clone()
	patch := apply(&s.tasks[i])
	s.tasks[i].UpdatedAt = s.now().UTC()
	title := s.tasks[i].Title
	o := s.ops.begin(taskKey(id))
	s.mu.Unlock()
	s.changed()

	err := o.wait(ctx)
	if err == nil {
		err = s.remote.UpdateTask(ctx, id, patch)
	}

	s.mu.Lock()
	if err != nil && !s.closed {
		if s.ops.latest(o) {
			if j := s.indexTask(id); j >= 0 {
				revert(&s.tasks[j], before)
			}
		} else {
			s.ops.markDirty(o.key)
		}
	}
	reconcile := s.ops.finish(o)
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return err
	}

	if err != nil {
		s.changed()
		s.fail(failTitle, err)
	} else if okTitle != "" {
		s.succeed(okTitle, title)
	}
	if reconcile {
		s.refetch(ctx)
	}
	return err
}

// refetch reconciles after a failure. It outlives the caller's context,
// which is often the reason the write failed. Its own error is already
// reported.
func (s *Store) refetch(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
	defer cancel()

	if err := s.FetchAll(ctx); err != nil {
		s.log.Warnw("reconciling refetch failed", "error", err)
	}
}
