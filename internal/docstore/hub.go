package docstore

import (
	"sync"
	"sync/atomic"
)

// Hub fans collection snapshots out to watchers. Implementations stamp each
// snapshot with a sequence number taken while their own state was locked;
// a watcher never sees a snapshot older than one it already received.
type Hub struct {
	mu        sync.Mutex
	nextID    int
	watchers  map[string]map[int]*watcher
	delivered atomic.Int64
}

type watcher struct {
	onSnapshot func([]Doc)
	last       atomic.Uint64
	closed     atomic.Bool
}

func NewHub() *Hub {
	return &Hub{watchers: make(map[string]map[int]*watcher)}
}

// Add registers a watcher on path. The returned function removes it.
func (h *Hub) Add(path string, onSnapshot func([]Doc)) (Unsubscribe, func(seq uint64, docs []Doc)) {
	w := &watcher{onSnapshot: onSnapshot}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.watchers[path] == nil {
		h.watchers[path] = make(map[int]*watcher)
	}
	h.watchers[path][id] = w
	h.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			w.closed.Store(true)
			h.mu.Lock()
			delete(h.watchers[path], id)
			if len(h.watchers[path]) == 0 {
				delete(h.watchers, path)
			}
			h.mu.Unlock()
		})
	}
	deliver := func(seq uint64, docs []Doc) {
		h.deliver(w, seq, docs)
	}
	return unsub, deliver
}

// Publish delivers docs to every watcher of path. It must be called without
// holding locks the watchers might need.
func (h *Hub) Publish(path string, seq uint64, docs []Doc) {
	h.mu.Lock()
	targets := make([]*watcher, 0, len(h.watchers[path]))
	for _, w := range h.watchers[path] {
		targets = append(targets, w)
	}
	h.mu.Unlock()

	for _, w := range targets {
		h.deliver(w, seq, docs)
	}
}

// Watchers returns the number of active watchers across all paths.
func (h *Hub) Watchers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, ws := range h.watchers {
		n += len(ws)
	}
	return n
}

// Delivered counts snapshots handed to watchers since creation.
func (h *Hub) Delivered() int64 {
	return h.delivered.Load()
}

func (h *Hub) deliver(w *watcher, seq uint64, docs []Doc) {
	if w.closed.Load() {
		return
	}
	for {
		last := w.last.Load()
		if seq <= last && last != 0 {
			return
		}
		if w.last.CompareAndSwap(last, seq) {
			break
		}
	}
	h.delivered.Add(1)
	w.onSnapshot(docs)
}
