package store

import "context"

// initialSync tracks which group collections have not yet delivered their
// first snapshot. All methods are nil-safe and called with s.mu held.
type initialSync struct {
	waiting map[Kind]bool
	done    chan struct{}
}

func newInitialSync(subs []subscription) *initialSync {
	r := &initialSync{waiting: make(map[Kind]bool, len(subs)), done: make(chan struct{})}
	for _, sub := range subs {
		r.waiting[sub.kind] = true
	}
	if len(r.waiting) == 0 {
		close(r.done)
	}
	return r
}

func (r *initialSync) mark(kinds ...Kind) {
	if r == nil || len(r.waiting) == 0 {
		return
	}
	for _, k := range kinds {
		delete(r.waiting, k)
	}
	if len(r.waiting) == 0 {
		close(r.done)
	}
}

// release unblocks waiters of a sync that is being torn down.
func (r *initialSync) release() {
	if r == nil || len(r.waiting) == 0 {
		return
	}
	clear(r.waiting)
	close(r.done)
}

// delivered records the first snapshot of k for sync generation gen.
func (s *Store) delivered(gen uint64, k Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncGen == gen {
		s.ready.mark(k)
	}
}

// WaitSynced blocks until every group subscription has delivered its first
// snapshot or failed to open. It returns immediately in solo mode.
func (s *Store) WaitSynced(ctx context.Context) error {
	s.mu.Lock()
	var done <-chan struct{}
	if s.ready != nil {
		done = s.ready.done
	}
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
