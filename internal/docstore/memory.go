package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store. Snapshots are delivered synchronously on
// the writing goroutine unless delivery is held with Hold.
type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string]Fields
	seq         uint64
	hub         *Hub

	held    bool
	pending []pendingSnapshot

	// Writes counts committed write calls: every Add, Set, Merge and
	// Delete plus one per Batch.
	writes int
	batches []int
}

type pendingSnapshot struct {
	path string
	seq  uint64
	docs []Doc
}

func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]Fields),
		hub:         NewHub(),
	}
}

// Hold queues snapshots instead of delivering them until Release.
func (m *Memory) Hold() {
	m.mu.Lock()
	m.held = true
	m.mu.Unlock()
}

// Release delivers every queued snapshot in order and resumes synchronous
// delivery.
func (m *Memory) Release() {
	m.mu.Lock()
	m.held = false
	queued := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, p := range queued {
		m.hub.Publish(p.path, p.seq, p.docs)
	}
}

// Writes returns the number of committed write calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// BatchSizes returns the operation count of every committed Batch.
func (m *Memory) BatchSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.batches...)
}

// Watchers returns the number of live watches.
func (m *Memory) Watchers() int {
	return m.hub.Watchers()
}

func (m *Memory) Add(ctx context.Context, path string, fields Fields) (string, error) {
	id := uuid.New().String()
	if err := m.Set(ctx, path, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Memory) Set(_ context.Context, path, id string, fields Fields) error {
	return m.commit(func() ([]string, error) {
		return m.applyLocked(Op{Kind: OpSet, Path: path, ID: id, Fields: fields})
	})
}

func (m *Memory) Merge(_ context.Context, path, id string, fields Fields) error {
	return m.commit(func() ([]string, error) {
		return m.applyLocked(Op{Kind: OpMerge, Path: path, ID: id, Fields: fields})
	})
}

func (m *Memory) Delete(_ context.Context, path, id string) error {
	return m.commit(func() ([]string, error) {
		return m.applyLocked(Op{Kind: OpDelete, Path: path, ID: id})
	})
}

func (m *Memory) Batch(_ context.Context, ops []Op) error {
	if len(ops) > MaxBatchWrites {
		return fmt.Errorf("%w: %d operations", ErrBatchTooLarge, len(ops))
	}
	return m.commit(func() ([]string, error) {
		// Ops run against copies of the touched collections, which replace
		// the live ones only once every op succeeded.
		scratch := make(map[string]map[string]Fields)
		for _, op := range ops {
			p, err := prepare(op)
			if err != nil {
				return nil, err
			}
			if _, ok := scratch[p]; !ok {
				scratch[p] = cloneCollection(m.collections[p])
			}
		}
		var touched []string
		for _, op := range ops {
			paths, err := applyTo(scratch, op)
			if err != nil {
				return nil, err
			}
			touched = append(touched, paths...)
		}
		for p, coll := range scratch {
			m.collections[p] = coll
		}
		m.batches = append(m.batches, len(ops))
		return touched, nil
	})
}

func (m *Memory) Get(_ context.Context, path, id string) (Doc, error) {
	p, err := CleanPath(path)
	if err != nil {
		return Doc{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.collections[p][id]
	if !ok {
		return Doc{}, fmt.Errorf("%s/%s: %w", p, id, ErrNotFound)
	}
	return Doc{ID: id, Fields: cloneFields(f)}, nil
}

func (m *Memory) Query(_ context.Context, path string, filters ...Filter) ([]Doc, error) {
	p, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Doc
	for _, d := range m.snapshotLocked(p) {
		if Matches(d.Fields, filters) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *Memory) Watch(_ context.Context, path string, onSnapshot func([]Doc), onError func(error)) (Unsubscribe, error) {
	p, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	unsub, deliver := m.hub.Add(p, onSnapshot)

	m.mu.Lock()
	docs := m.snapshotLocked(p)
	seq := m.seq
	m.mu.Unlock()

	deliver(seq, docs)
	return unsub, nil
}

// commit runs fn under the lock and publishes a snapshot of every touched
// collection afterwards.
func (m *Memory) commit(fn func() ([]string, error)) error {
	m.mu.Lock()
	touched, err := fn()
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.writes++
	m.seq++
	seq := m.seq
	var out []pendingSnapshot
	seen := make(map[string]bool, len(touched))
	for _, p := range touched {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, pendingSnapshot{path: p, seq: seq, docs: m.snapshotLocked(p)})
	}
	if m.held {
		m.pending = append(m.pending, out...)
		out = nil
	}
	m.mu.Unlock()

	for _, s := range out {
		m.hub.Publish(s.path, s.seq, s.docs)
	}
	return nil
}

func (m *Memory) applyLocked(op Op) ([]string, error) {
	return applyTo(m.collections, op)
}

func applyTo(collections map[string]map[string]Fields, op Op) ([]string, error) {
	p, err := prepare(op)
	if err != nil {
		return nil, err
	}
	coll := collections[p]
	switch op.Kind {
	case OpSet:
		if coll == nil {
			coll = make(map[string]Fields)
			collections[p] = coll
		}
		f, err := Normalize(op.Fields)
		if err != nil {
			return nil, err
		}
		coll[op.ID] = f
	case OpMerge:
		cur, ok := coll[op.ID]
		if !ok {
			return nil, fmt.Errorf("%s/%s: %w", p, op.ID, ErrNotFound)
		}
		f, err := Normalize(op.Fields)
		if err != nil {
			return nil, err
		}
		for k, v := range f {
			cur[k] = v
		}
	case OpDelete:
		delete(coll, op.ID)
	}
	return []string{p}, nil
}

func (m *Memory) snapshotLocked(path string) []Doc {
	coll := m.collections[path]
	docs := make([]Doc, 0, len(coll))
	for id, f := range coll {
		docs = append(docs, Doc{ID: id, Fields: cloneFields(f)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

// prepare validates an operation and returns its cleaned path.
func prepare(op Op) (string, error) {
	p, err := CleanPath(op.Path)
	if err != nil {
		return "", err
	}
	if op.ID == "" {
		return "", fmt.Errorf("%w: empty document id in %s", ErrInvalidPath, p)
	}
	switch op.Kind {
	case OpSet, OpMerge:
		if err := op.Fields.Validate(); err != nil {
			return "", err
		}
	case OpDelete:
	default:
		return "", fmt.Errorf("unknown operation %q", op.Kind)
	}
	return p, nil
}

func cloneCollection(coll map[string]Fields) map[string]Fields {
	out := make(map[string]Fields, len(coll))
	for id, f := range coll {
		out[id] = cloneFields(f)
	}
	return out
}

func cloneFields(f Fields) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return map[string]any(cloneFields(val))
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
