package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/alexanderramin/hearth/internal/repository"
)

// MemoryKV is an in-memory repository.KVRepo that records every Put so
// tests can assert how often, and with what payload, a key was saved.
type MemoryKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	puts   map[string]int
	failOn map[string]error
	gates  map[string]putGate
}

type putGate struct {
	started chan struct{}
	release chan struct{}
}

var _ repository.KVRepo = (*MemoryKV)(nil)

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		data:   make(map[string][]byte),
		puts:   make(map[string]int),
		failOn: make(map[string]error),
		gates:  make(map[string]putGate),
	}
}

// BlockPuts makes the next Put to key wait until release is called. The
// returned channel is closed once that Put has started.
func (m *MemoryKV) BlockPuts(key string) (started <-chan struct{}, release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := putGate{started: make(chan struct{}), release: make(chan struct{})}
	m.gates[key] = g
	var once sync.Once
	return g.started, func() { once.Do(func() { close(g.release) }) }
}

// FailPuts makes every Put to key return err.
func (m *MemoryKV) FailPuts(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[key] = err
}

// PutCount returns how many successful or failed Put calls key received.
func (m *MemoryKV) PutCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts[key]
}

// Raw returns the last stored payload for key.
func (m *MemoryKV) Raw(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data[key]...)
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("key %q: %w", key, repository.ErrNotFound)
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	g, gated := m.gates[key]
	delete(m.gates, key)
	m.mu.Unlock()
	if gated {
		close(g.started)
		<-g.release
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts[key]++
	if err := m.failOn[key]; err != nil {
		return err
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryKV) Keys(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
