package store

import (
	"context"
	"errors"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

// AddSupplier waits for the service to assign the id before adding it.
func (s *Store) AddSupplier(ctx context.Context, in model.SupplierInput) (model.Supplier, error) {
	if err := s.authorize(); err != nil {
		return model.Supplier{}, err
	}

	created, err := s.remote.CreateSupplier(ctx, in.Normalize())
	if err != nil {
		s.fail("Could not add supplier", err)
		return model.Supplier{}, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return created, nil
	}
	s.ops.stamp(supplierKey(created.ID))
	if i := s.indexSupplier(created.ID); i >= 0 {
		s.suppliers[i] = created
	} else {
		s.suppliers = append(s.suppliers, created)
	}
	s.mu.Unlock()
	s.changed()

	s.succeed("Supplier added", created.Name)
	return created, nil
}

// UpdateSupplier applies patch optimistically and restores the previous
// record if the service rejects it.
func (s *Store) UpdateSupplier(ctx context.Context, id string, patch model.SupplierPatch) error {
	if err := s.authorize(); err != nil {
		return err
	}

	s.mu.Lock()
	i := s.indexSupplier(id)
	if i < 0 {
		s.mu.Unlock()
		return apperrors.ErrSupplierNotFound
	}
	before := s.suppliers[i]
	patch.Apply(&s.suppliers[i])
	name := s.suppliers[i].Name
	o := s.ops.begin(supplierKey(id))
	s.mu.Unlock()
	s.changed()

	err := o.wait(ctx)
	if err == nil {
		err = s.remote.UpdateSupplier(ctx, id, patch)
	}

	s.mu.Lock()
	if err != nil && !s.closed {
		if s.ops.latest(o) {
			if j := s.indexSupplier(id); j >= 0 {
				s.suppliers[j] = before
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
		s.fail("Could not update supplier", err)
	} else {
		s.succeed("Supplier updated", name)
	}
	if reconcile {
		s.refetch(ctx)
	}
	return err
}

// DeleteSupplier removes the supplier. When the service refuses because
// tasks still reference it, ErrSupplierInUse is returned and reported
// separately from other failures; the supplier comes back via refetch.
func (s *Store) DeleteSupplier(ctx context.Context, id string) error {
	if err := s.authorize(); err != nil {
		return err
	}

	s.mu.Lock()
	i := s.indexSupplier(id)
	if i < 0 {
		s.mu.Unlock()
		return apperrors.ErrSupplierNotFound
	}
	name := s.suppliers[i].Name
	s.suppliers = append(s.suppliers[:i:i], s.suppliers[i+1:]...)
	o := s.ops.begin(supplierKey(id))
	s.mu.Unlock()
	s.changed()

	err := o.wait(ctx)
	if err == nil {
		err = s.remote.DeleteSupplier(ctx, id)
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

	switch {
	case errors.Is(err, apperrors.ErrSupplierInUse):
		s.log.Infow("supplier delete rejected", "supplier", id)
		s.notify.Notify(Notice{
			Level:   LevelError,
			Title:   "Supplier in use",
			Message: "Unlink " + name + " from its tasks before deleting it.",
			Err:     err,
		})
	case err != nil:
		s.fail("Could not delete supplier", err)
	default:
		s.succeed("Supplier removed", name)
	}
	if reconcile {
		s.refetch(ctx)
	}
	return err
}
