package store

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/hearth/internal/auth"
	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/alexanderramin/hearth/internal/remote"
	"github.com/alexanderramin/hearth/internal/repository"
	"github.com/alexanderramin/hearth/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

const testWait = 500 * time.Millisecond

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type harness struct {
	store   *Store
	kv      *testutil.MemoryKV
	timers  *testutil.FakeTimers
	mem     *docstore.Memory
	gateway *remote.Gateway
	notes   *atomic.Int64
}

// newHarness builds a loaded solo store whose group features talk to an
// in-process document store as uid.
func newHarness(t *testing.T, uid string, opts ...Option) *harness {
	t.Helper()
	return newHarnessOn(t, docstore.NewMemory(), uid, opts...)
}

func newHarnessOn(t *testing.T, mem *docstore.Memory, uid string, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		kv:     testutil.NewMemoryKV(),
		timers: testutil.NewFakeTimers(),
		mem:    mem,
		notes:  new(atomic.Int64),
	}
	h.gateway = remote.New(mem, auth.Static(uid), zerolog.Nop(),
		remote.WithClock(func() time.Time { return testNow }))
	h.store = h.build(h.kv, h.gateway, opts...)
	require.NoError(t, h.store.Load(context.Background()))
	h.store.Subscribe(func(uint64) { h.notes.Add(1) })
	t.Cleanup(func() { _ = h.store.Close(context.Background()) })
	return h
}

func (h *harness) build(kv repository.KVRepo, r Remote, opts ...Option) *Store {
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithAfterFunc(func(d time.Duration, fn func()) Timer { return h.timers.AfterFunc(d, fn) }),
		WithRemote(r),
	}
	return New(kv, zerolog.Nop(), append(base, opts...)...)
}

// settle lets every pending debounce timer fire.
func (h *harness) settle() {
	h.timers.Advance(testWait)
}

func (h *harness) stored(t *testing.T, key string, out any) {
	t.Helper()
	raw := h.kv.Raw(key)
	require.NotEmpty(t, raw, "nothing saved under %s", key)
	require.NoError(t, json.Unmarshal(raw, out))
}

func (h *harness) syncGen() uint64 {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return h.store.syncGen
}
