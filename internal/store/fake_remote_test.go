package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

// gate blocks one remote call until released.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

// fakeRemote is an in-memory backing service with scripted failures and
// gates for controlling when calls resolve.
type fakeRemote struct {
	mu sync.Mutex

	tasks     []model.Task
	suppliers []model.Supplier
	nextID    int
	now       time.Time

	calls    []string
	failures map[string][]error
	gates    map[string][]*gate

	changes chan model.Change
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		now:      time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		failures: make(map[string][]error),
		gates:    make(map[string][]*gate),
		changes:  make(chan model.Change, 16),
	}
}

func (f *fakeRemote) failNext(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = append(f.failures[method], err)
}

func (f *fakeRemote) gateNext(method string) *gate {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := &gate{entered: make(chan struct{}, 1), release: make(chan struct{})}
	f.gates[method] = append(f.gates[method], g)
	return g
}

func (f *fakeRemote) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (f *fakeRemote) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// hook records the call, waits on a pending gate, fails on a done context
// and pops a scripted failure.
func (f *fakeRemote) hook(ctx context.Context, method string) error {
	f.mu.Lock()
	f.calls = append(f.calls, method)
	var g *gate
	if queue := f.gates[method]; len(queue) > 0 {
		g = queue[0]
		f.gates[method] = queue[1:]
	}
	f.mu.Unlock()

	if g != nil {
		g.entered <- struct{}{}
		select {
		case <-g.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// Like a real transport, nothing is sent on a finished context.
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if queue := f.failures[method]; len(queue) > 0 {
		f.failures[method] = queue[1:]
		return queue[0]
	}
	return nil
}

func (f *fakeRemote) seedTask(t model.Task) model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == "" {
		f.nextID++
		t.ID = fmt.Sprintf("task-%d", f.nextID)
	}
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	t.CreatedAt, t.UpdatedAt = f.now, f.now
	f.tasks = append(f.tasks, t)
	return t
}

func (f *fakeRemote) seedSupplier(s model.Supplier) model.Supplier {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == "" {
		f.nextID++
		s.ID = fmt.Sprintf("supplier-%d", f.nextID)
	}
	s.CreatedAt = f.now
	f.suppliers = append(f.suppliers, s)
	return s
}

func (f *fakeRemote) serverTask(id string) (model.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return model.Task{}, false
}

func (f *fakeRemote) ListTasks(ctx context.Context) ([]model.Task, error) {
	f.mu.Lock()
	out := make([]model.Task, len(f.tasks))
	for i, t := range f.tasks {
		out[i] = t.Clone()
	}
	f.mu.Unlock()

	if err := f.hook(ctx, "ListTasks"); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeRemote) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	f.mu.Lock()
	out := append([]model.Supplier{}, f.suppliers...)
	f.mu.Unlock()

	if err := f.hook(ctx, "ListSuppliers"); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeRemote) CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error) {
	if err := f.hook(ctx, "CreateTask"); err != nil {
		return model.Task{}, err
	}
	return f.seedTask(model.Task{
		Title:          in.Title,
		Description:    in.Description,
		Notes:          in.Notes,
		Status:         model.StatusPending,
		Priority:       in.Priority,
		DueDate:        in.DueDate,
		SupplierID:     in.SupplierID,
		EstimatedHours: in.EstimatedHours,
		Tags:           in.Tags,
	}), nil
}

func (f *fakeRemote) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) error {
	if err := f.hook(ctx, "UpdateTask"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			patch.Apply(&f.tasks[i])
			f.tasks[i].UpdatedAt = f.now
			return nil
		}
	}
	return apperrors.ErrTaskNotFound
}

func (f *fakeRemote) DeleteTask(ctx context.Context, id string) error {
	if err := f.hook(ctx, "DeleteTask"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrTaskNotFound
}

func (f *fakeRemote) CreateSupplier(ctx context.Context, in model.SupplierInput) (model.Supplier, error) {
	if err := f.hook(ctx, "CreateSupplier"); err != nil {
		return model.Supplier{}, err
	}
	return f.seedSupplier(model.Supplier{
		Name:         in.Name,
		Phone:        in.Phone,
		LocationName: in.LocationName,
		Email:        in.Email,
		Category:     in.Category,
		Notes:        in.Notes,
	}), nil
}

func (f *fakeRemote) UpdateSupplier(ctx context.Context, id string, patch model.SupplierPatch) error {
	if err := f.hook(ctx, "UpdateSupplier"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.suppliers {
		if f.suppliers[i].ID == id {
			patch.Apply(&f.suppliers[i])
			return nil
		}
	}
	return apperrors.ErrSupplierNotFound
}

func (f *fakeRemote) DeleteSupplier(ctx context.Context, id string) error {
	if err := f.hook(ctx, "DeleteSupplier"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.SupplierID != nil && *t.SupplierID == id {
			return apperrors.ErrSupplierInUse
		}
	}
	for i := range f.suppliers {
		if f.suppliers[i].ID == id {
			f.suppliers = append(f.suppliers[:i], f.suppliers[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrSupplierNotFound
}

func (f *fakeRemote) Subscribe(ctx context.Context, tables ...string) (<-chan model.Change, error) {
	if err := f.hook(ctx, "Subscribe"); err != nil {
		return nil, err
	}
	return f.changes, nil
}

// recorder collects notices.
type recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}
	}
	return r.notices[len(r.notices)-1]
}

func (r *recorder) errorsTitled(title string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, notice := range r.notices {
		if notice.Level == LevelError && notice.Title == title {
			n++
		}
	}
	return n
}
