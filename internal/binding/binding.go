// Package binding splits the store's single change signal into per-domain
// views. A view recomputes only when the store revision moves and publishes
// only when its selected value actually differs.
package binding

import (
	"context"
	"slices"
	"sync"

	"github.com/alexanderramin/hearth/internal/store"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

// Source is the part of the store a view reads.
type Source interface {
	Snapshot() store.State
	Revision() uint64
	Subscribe(fn func(rev uint64)) (cancel func())
}

var equalOpts = []cmp.Option{
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
}

// View is a derived, change-filtered slice of the store state.
type View[T any] struct {
	src    Source
	choose func(store.State) T

	mu       sync.Mutex
	rev      uint64
	value    T
	computes int
	watchers map[int]func(T)
	nextID   int
	cancel   func()
}

// NewView selects T from the store with choose.
func NewView[T any](src Source, choose func(store.State) T) *View[T] {
	v := &View[T]{
		src:      src,
		choose:   choose,
		watchers: make(map[int]func(T)),
	}
	v.rev = src.Revision()
	v.value = choose(src.Snapshot())
	return v
}

// Value returns the current selection. An unwatched view recomputes it if
// the store moved since the last look; a watched view is kept current by
// the store's notifications.
func (v *View[T]) Value() T {
	v.mu.Lock()
	watched := len(v.watchers) > 0
	v.mu.Unlock()
	if !watched {
		v.refresh(v.src.Revision())
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Computes reports how many times the selection was recomputed.
func (v *View[T]) Computes() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.computes
}

// Watch calls fn with every new distinct value. The view listens to the
// store only while at least one watcher is registered.
func (v *View[T]) Watch(fn func(T)) (cancel func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.watchers[id] = fn
	first := len(v.watchers) == 1
	v.mu.Unlock()

	if first {
		unsub := v.src.Subscribe(v.onChange)
		v.mu.Lock()
		v.cancel = unsub
		v.mu.Unlock()
		// Catch changes made before the subscription was in place.
		v.onChange(v.src.Revision())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.watchers, id)
			var unsub func()
			if len(v.watchers) == 0 {
				unsub, v.cancel = v.cancel, nil
			}
			v.mu.Unlock()
			if unsub != nil {
				unsub()
			}
		})
	}
}

// Updates streams distinct values until ctx is done. A slow reader only
// ever sees the latest value.
func (v *View[T]) Updates(ctx context.Context) <-chan T {
	out := make(chan T, 1)
	latest := make(chan T, 1)
	cancel := v.Watch(func(val T) {
		select {
		case <-latest:
		default:
		}
		latest <- val
	})
	go func() {
		defer close(out)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case val := <-latest:
				select {
				case out <- val:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (v *View[T]) onChange(rev uint64) {
	if !v.refresh(rev) {
		return
	}
	v.mu.Lock()
	val := v.value
	ids := make([]int, 0, len(v.watchers))
	for id := range v.watchers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, v.watchers[id])
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(val)
	}
}

// refresh recomputes the selection for rev and reports whether it changed.
func (v *View[T]) refresh(rev uint64) bool {
	v.mu.Lock()
	if rev == v.rev {
		v.mu.Unlock()
		return false
	}
	v.mu.Unlock()

	next := v.choose(v.src.Snapshot())

	v.mu.Lock()
	defer v.mu.Unlock()
	if rev <= v.rev {
		return false
	}
	v.rev = rev
	v.computes++
	if cmp.Equal(v.value, next, equalOpts...) {
		return false
	}
	v.value = next
	return true
}
