package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

type subscriber struct {
	userID string
	ch     chan model.Change
}

// MemoryFeed fans changes out to subscribers of the same process.
type MemoryFeed struct {
	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int
	closed bool
	log    *zap.SugaredLogger
}

func NewMemoryFeed(log *zap.SugaredLogger) *MemoryFeed {
	return &MemoryFeed{
		subs: make(map[int]*subscriber),
		log:  log,
	}
}

func (f *MemoryFeed) Publish(_ context.Context, change model.Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return apperrors.ErrFeedClosed
	}
	for id, sub := range f.subs {
		if sub.userID != change.UserID {
			continue
		}
		if !offer(sub.ch, change) {
			f.log.Debugw("subscriber buffer full, change coalesced", "subscriber", id, "table", change.Table)
		}
	}
	return nil
}

func (f *MemoryFeed) Subscribe(ctx context.Context, userID string) (<-chan model.Change, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, apperrors.ErrFeedClosed
	}

	id := f.nextID
	f.nextID++
	sub := &subscriber{userID: userID, ch: make(chan model.Change, subscriberBuffer)}
	f.subs[id] = sub

	go func() {
		<-ctx.Done()
		f.remove(id)
	}()

	return sub.ch, nil
}

func (f *MemoryFeed) remove(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sub, ok := f.subs[id]; ok {
		delete(f.subs, id)
		close(sub.ch)
	}
}

// Subscribers reports how many subscriptions are open.
func (f *MemoryFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close ends every subscription. Later calls fail with ErrFeedClosed.
func (f *MemoryFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	for id, sub := range f.subs {
		delete(f.subs, id)
		close(sub.ch)
	}
}
