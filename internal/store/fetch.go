package store

import (
	"context"
	"errors"
	"sync"

	model "task-manager.com/task-manager/internal/models"
)

// FetchAll reloads tasks and suppliers and replaces both collections in one
// step. On failure the previous state is kept. Entities mutated locally
// after the fetch started keep their local version.
func (s *Store) FetchAll(ctx context.Context) error {
	if err := s.authorize(); err != nil {
		return err
	}

	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	s.mu.RLock()
	since := s.ops.clock
	s.mu.RUnlock()

	tasks, suppliers, err := s.load(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.loading = false
	if err == nil {
		keep := func(key string) bool { return s.ops.protected(key, since) }
		s.tasks = reconcile(tasks, s.tasks, func(t model.Task) string { return taskKey(t.ID) }, keep)
		s.suppliers = reconcile(suppliers, s.suppliers, func(sp model.Supplier) string { return supplierKey(sp.ID) }, keep)
		s.ops.prune(since)
	}
	s.mu.Unlock()
	s.changed()

	if err != nil {
		s.fail("Could not load data", err)
		return err
	}
	s.log.Debugw("store refreshed", "tasks", len(tasks), "suppliers", len(suppliers))
	return nil
}

func (s *Store) load(ctx context.Context) ([]model.Task, []model.Supplier, error) {
	var (
		wg           sync.WaitGroup
		tasks        []model.Task
		suppliers    []model.Supplier
		taskErr, err error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		tasks, taskErr = s.remote.ListTasks(ctx)
	}()
	suppliers, err = s.remote.ListSuppliers(ctx)
	wg.Wait()

	if err = errors.Join(taskErr, err); err != nil {
		return nil, nil, err
	}
	return tasks, suppliers, nil
}

// reconcile replaces local with fetched, except for entities keep protects:
// those retain their local version, or stay absent if removed locally.
func reconcile[T any](fetched, local []T, key func(T) string, keep func(string) bool) []T {
	localByKey := make(map[string]T, len(local))
	for _, item := range local {
		localByKey[key(item)] = item
	}

	out := make([]T, 0, len(fetched))
	seen := make(map[string]bool, len(fetched))
	for _, item := range fetched {
		k := key(item)
		seen[k] = true
		if keep(k) {
			if l, ok := localByKey[k]; ok {
				out = append(out, l)
			}
			continue
		}
		out = append(out, item)
	}
	for _, item := range local {
		if k := key(item); !seen[k] && keep(k) {
			out = append(out, item)
		}
	}
	return out
}
