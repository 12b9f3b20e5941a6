package store

import "context"

// sequencer stamps local mutations with a monotonic clock and chains remote
// writes per entity so they reach the service in issue order. It is guarded
// by Store.mu.
type sequencer struct {
	clock    uint64
	entities map[string]*entityState
}

type entityState struct {
	touched  uint64
	inflight int
	dirty    bool
	tail     chan struct{}
}

// op is one issued mutation of one entity.
type op struct {
	key  string
	seq  uint64
	prev chan struct{}
	done chan struct{}
}

func newSequencer() *sequencer {
	return &sequencer{entities: make(map[string]*entityState)}
}

func (q *sequencer) entity(key string) *entityState {
	e, ok := q.entities[key]
	if !ok {
		e = &entityState{}
		q.entities[key] = e
	}
	return e
}

// begin registers a new in-flight mutation of key.
func (q *sequencer) begin(key string) *op {
	q.clock++
	e := q.entity(key)
	e.touched = q.clock
	e.inflight++
	o := &op{key: key, seq: q.clock, prev: e.tail, done: make(chan struct{})}
	e.tail = o.done
	return o
}

// stamp records a local write of key that has no remote call pending.
func (q *sequencer) stamp(key string) {
	q.clock++
	q.entity(key).touched = q.clock
}

// latest reports whether o is the most recent mutation issued for its entity
// and no earlier failure left the entity needing reconciliation.
func (q *sequencer) latest(o *op) bool {
	e := q.entities[o.key]
	return e != nil && e.touched == o.seq && !e.dirty
}

func (q *sequencer) markDirty(key string) {
	q.entity(key).dirty = true
}

// finish releases o. It returns true when o was the last in-flight mutation
// of a dirty entity, in which case the caller must refetch.
func (q *sequencer) finish(o *op) bool {
	close(o.done)
	e := q.entities[o.key]
	e.inflight--
	if e.inflight > 0 {
		return false
	}
	e.tail = nil
	dirty := e.dirty
	e.dirty = false
	return dirty
}

// protected reports whether a fetch that started at since must keep the
// local copy of key.
func (q *sequencer) protected(key string, since uint64) bool {
	e, ok := q.entities[key]
	return ok && (e.inflight > 0 || e.touched > since)
}

// prune forgets settled entities older than since. Fetches are serialized,
// so no fetch older than since can still be running.
func (q *sequencer) prune(since uint64) {
	for key, e := range q.entities {
		if e.inflight == 0 && e.touched <= since {
			delete(q.entities, key)
		}
	}
}

// wait blocks until every earlier mutation of the same entity has been sent.
func (o *op) wait(ctx context.Context) error {
	if o.prev == nil {
		return nil
	}
	select {
	case <-o.prev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
