package store

import (
	"context"
	"fmt"

	model "task-manager.com/task-manager/internal/models"
)

// Start subscribes to the tasks and suppliers change feeds, performs the
// initial load and keeps refetching on every change notification until
// Shutdown. A failed initial load is reported but does not stop the loop.
func (s *Store) Start(ctx context.Context) error {
	if err := s.authorize(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.syncDone != nil {
		s.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	s.syncCancel, s.syncDone = cancel, done
	s.mu.Unlock()

	changes, err := s.remote.Subscribe(loopCtx, model.TableTasks, model.TableSuppliers)
	if err != nil {
		cancel()
		close(done)
		s.mu.Lock()
		s.syncCancel, s.syncDone = nil, nil
		s.mu.Unlock()
		s.fail("Could not subscribe to changes", err)
		return fmt.Errorf("subscribe to changes: %w", err)
	}

	_ = s.FetchAll(ctx)

	go s.listen(loopCtx, changes, done)
	return nil
}

func (s *Store) listen(ctx context.Context, changes <-chan model.Change, done chan struct{}) {
	defer close(done)

	s.log.Debug("store sync loop started")

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				s.log.Warn("change feed closed")
				return
			}
			coalesced := drain(changes)
			s.log.Debugw("change notification", "table", change.Table, "type", change.Type, "coalesced", coalesced)

			if err := s.FetchAll(ctx); err != nil && ctx.Err() == nil {
				s.log.Warnw("refetch after change failed", "error", err)
			}
		}
	}
}

// drain discards notifications already queued; one refetch covers them all.
func drain(changes <-chan model.Change) int {
	n := 0
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}

// Shutdown stops the sync loop and makes every later resolution a no-op.
// It must not be called from an OnChange callback.
func (s *Store) Shutdown(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel, done := s.syncCancel, s.syncDone
	s.mu.Unlock()

	s.listenersMu.Lock()
	s.listeners = make(map[int]func())
	s.listenersMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()

	select {
	case <-done:
		s.log.Debug("store sync loop shut down cleanly")
	case <-ctx.Done():
		s.log.Warn("store sync loop shutdown timed out")
	}
}

// Closed reports whether Shutdown has been called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
