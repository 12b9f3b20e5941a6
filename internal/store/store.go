// Package store holds the signed-in user's tasks and suppliers in memory,
// keeps them in sync with the backing service and derives the filtered
// views the presentation layer renders.
//
// A Store is built for one session and shut down when that session ends.
// Local mutations are applied optimistically and reverted or reconciled by
// refetch when the remote write fails.
package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

// Remote is the backing service as seen by the store. Every call is scoped
// to the session the implementation was authenticated with.
type Remote interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)
	CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) error
	DeleteTask(ctx context.Context, id string) error
	CreateSupplier(ctx context.Context, in model.SupplierInput) (model.Supplier, error)
	UpdateSupplier(ctx context.Context, id string, patch model.SupplierPatch) error
	DeleteSupplier(ctx context.Context, id string) error
	Subscribe(ctx context.Context, tables ...string) (<-chan model.Change, error)
}

type Store struct {
	remote  Remote
	session model.Session
	notify  Notifier
	log     *zap.SugaredLogger
	now     func() time.Time

	mu        sync.RWMutex
	tasks     []model.Task
	suppliers []model.Supplier
	filter    Filter
	loading   bool
	closed    bool
	ops       *sequencer

	// fetchMu serializes refetches so each one lands as a single replacement.
	fetchMu sync.Mutex

	listenersMu  sync.Mutex
	listeners    map[int]func()
	nextListener int

	syncCancel context.CancelFunc
	syncDone   chan struct{}
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notify = n }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Store) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(remote Remote, session model.Session, opts ...Option) *Store {
	s := &Store{
		remote:    remote,
		session:   session,
		notify:    NotifierFunc(func(Notice) {}),
		log:       zap.NewNop().Sugar(),
		now:       time.Now,
		tasks:     []model.Task{},
		suppliers: []model.Supplier{},
		filter:    Filter{Status: StatusAll, Priority: PriorityAll},
		loading:   true,
		ops:       newSequencer(),
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Session() model.Session {
	return s.session
}

// authorize fails closed when there is no usable session.
func (s *Store) authorize() error {
	if !s.session.Authenticated(s.now()) {
		return apperrors.ErrNoSession
	}
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return apperrors.ErrStoreClosed
	}
	return nil
}

// OnChange registers fn to run after every state change. The returned func
// unregisters it. Callbacks run without store locks held.
func (s *Store) OnChange(fn func()) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) changed() {
	s.listenersMu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *Store) succeed(title, message string) {
	s.notify.Notify(Notice{Level: LevelSuccess, Title: title, Message: message})
}

func (s *Store) fail(title string, err error) {
	s.log.Warnw(title, "error", err)
	s.notify.Notify(Notice{Level: LevelError, Title: title, Message: err.Error(), Err: err})
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Filter() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *Store) SetStatusFilter(f StatusFilter) {
	s.mu.Lock()
	s.filter.Status = f
	s.mu.Unlock()
	s.changed()
}

func (s *Store) SetPriorityFilter(f PriorityFilter) {
	s.mu.Lock()
	s.filter.Priority = f
	s.mu.Unlock()
	s.changed()
}

func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	s.filter.Query = q
	s.mu.Unlock()
	s.changed()
}

// Tasks returns every task, trashed ones included, in storage order.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) Suppliers() []model.Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Supplier{}, s.suppliers...)
}

func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexTask(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return model.Task{}, false
}

func (s *Store) Supplier(id string) (model.Supplier, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexSupplier(id); i >= 0 {
		return s.suppliers[i], true
	}
	return model.Supplier{}, false
}

func (s *Store) ActiveTasks() []model.TaskWithSupplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return joinSuppliers(activeTasks(s.tasks), s.suppliers)
}

func (s *Store) TrashedTasks() []model.TaskWithSupplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return joinSuppliers(trashedTasks(s.tasks), s.suppliers)
}

// FilteredTasks returns active tasks matching the current filter, sorted
// by priority and then due date.
func (s *Store) FilteredTasks() []model.TaskWithSupplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return joinSuppliers(filterTasks(s.tasks, s.filter), s.suppliers)
}

func (s *Store) TasksWithSupplier() []model.TaskWithSupplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return joinSuppliers(s.tasks, s.suppliers)
}

func (s *Store) PendingCount() int {
	return s.Stats().Pending
}

func (s *Store) CompletedCount() int {
	return s.Stats().Completed
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countStats(s.tasks)
}

func (s *Store) indexTask(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) indexSupplier(id string) int {
	for i := range s.suppliers {
		if s.suppliers[i].ID == id {
			return i
		}
	}
	return -1
}

func taskKey(id string) string {
	return model.TableTasks + "/" + id
}

func supplierKey(id string) string {
	return model.TableSuppliers + "/" + id
}
