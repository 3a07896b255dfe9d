package store

import (
	"slices"
	"sync"
	"time"
)

// Kind names a persisted collection. Each kind has its own debounce timer.
type Kind string

const (
	KindTodos       Kind = "todos"
	KindBudgets     Kind = "budgets"
	KindAccounts    Kind = "accounts"
	KindCategories  Kind = "categories"
	KindInvestments Kind = "investments"
	KindSavings     Kind = "savings"
	KindGroup       Kind = "group"
)

// debouncer collapses bursts of saves per kind. Scheduling a kind cancels
// its pending timer and starts a new one; only the last timer fires.
type debouncer struct {
	wait  time.Duration
	after AfterFunc
	fire  func(Kind)

	mu      sync.Mutex
	gen     uint64
	pending map[Kind]pendingSave

	// firing counts saves whose timer expired and that have not returned.
	firing int
	idle   *sync.Cond
}

type pendingSave struct {
	gen   uint64
	timer Timer
}

func newDebouncer(wait time.Duration, fire func(Kind)) *debouncer {
	d := &debouncer{
		wait: wait,
		after: func(d time.Duration, fn func()) Timer {
			return time.AfterFunc(d, fn)
		},
		fire:    fire,
		pending: make(map[Kind]pendingSave),
	}
	d.idle = sync.NewCond(&d.mu)
	return d
}

func (d *debouncer) schedule(k Kind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pending[k]; ok {
		p.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending[k] = pendingSave{
		gen: gen,
		timer: d.after(d.wait, func() {
			d.expire(k, gen)
		}),
	}
}

// expire fires k unless the timer was superseded or cancelled meanwhile.
func (d *debouncer) expire(k Kind, gen uint64) {
	d.mu.Lock()
	p, ok := d.pending[k]
	if !ok || p.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.pending, k)
	d.firing++
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.firing--
		if d.firing == 0 {
			d.idle.Broadcast()
		}
		d.mu.Unlock()
	}()
	d.fire(k)
}

// waitIdle blocks until no expired save is still running.
func (d *debouncer) waitIdle() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.firing > 0 {
		d.idle.Wait()
	}
}

// cancel drops pending saves without firing them.
func (d *debouncer) cancel(kinds ...Kind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, k := range kinds {
		if p, ok := d.pending[k]; ok {
			p.timer.Stop()
			delete(d.pending, k)
		}
	}
}

// takeAll stops every pending timer and returns the kinds that were
// waiting, in a stable order.
func (d *debouncer) takeAll() []Kind {
	d.mu.Lock()
	defer d.mu.Unlock()
	kinds := make([]Kind, 0, len(d.pending))
	for k, p := range d.pending {
		p.timer.Stop()
		kinds = append(kinds, k)
	}
	clear(d.pending)
	slices.Sort(kinds)
	return kinds
}

func (d *debouncer) pendingKinds() []Kind {
	d.mu.Lock()
	defer d.mu.Unlock()
	kinds := make([]Kind, 0, len(d.pending))
	for k := range d.pending {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}
