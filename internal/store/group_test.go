package store

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/hearth/internal/auth"
	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/alexanderramin/hearth/internal/remote"
	"github.com/alexanderramin/hearth/internal/repository"
	"github.com/alexanderramin/hearth/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnavailable = errors.New("service unavailable")

// flakyRemote fails selected gateway calls.
type flakyRemote struct {
	*remote.Gateway
	failSubs  map[string]bool
	failFetch bool
}

func (f *flakyRemote) SubscribeBudgets(ctx context.Context, onData func([]domain.BudgetEntry), onError func(error)) (docstore.Unsubscribe, error) {
	if f.failSubs["budgets"] {
		return nil, errUnavailable
	}
	return f.Gateway.SubscribeBudgets(ctx, onData, onError)
}

func (f *flakyRemote) SubscribeTodos(ctx context.Context, onData func([]domain.Todo), onError func(error)) (docstore.Unsubscribe, error) {
	if f.failSubs["todos"] {
		return nil, errUnavailable
	}
	return f.Gateway.SubscribeTodos(ctx, onData, onError)
}

func (f *flakyRemote) SubscribeAccounts(ctx context.Context, onData func([]domain.Account), onError func(error)) (docstore.Unsubscribe, error) {
	if f.failSubs["accounts"] {
		return nil, errUnavailable
	}
	return f.Gateway.SubscribeAccounts(ctx, onData, onError)
}

func (f *flakyRemote) SubscribeCategories(ctx context.Context, onData func(domain.CategorySettings, bool), onError func(error)) (docstore.Unsubscribe, error) {
	if f.failSubs["categories"] {
		return nil, errUnavailable
	}
	return f.Gateway.SubscribeCategories(ctx, onData, onError)
}

func (f *flakyRemote) SubscribeGroup(ctx context.Context, onData func(domain.Group, bool), onError func(error)) (docstore.Unsubscribe, error) {
	if f.failSubs["group"] {
		return nil, errUnavailable
	}
	return f.Gateway.SubscribeGroup(ctx, onData, onError)
}

func (f *flakyRemote) FetchBudgetsByAuthor(ctx context.Context, code, uid string) ([]domain.BudgetEntry, error) {
	if f.failFetch {
		return nil, errUnavailable
	}
	return f.Gateway.FetchBudgetsByAuthor(ctx, code, uid)
}

func newFlakyHarness(t *testing.T, flaky *flakyRemote) *harness {
	t.Helper()
	mem := docstore.NewMemory()
	flaky.Gateway = remote.New(mem, auth.Static("me"), zerolog.Nop())
	return newHarnessOn(t, mem, "me", WithRemote(flaky))
}

func TestGroupAdd_IsNotOptimistic(t *testing.T) {
	h := newHarness(t, "me")
	ctx := context.Background()
	_, err := h.store.CreateGroup(ctx, "우리집", "민지")
	require.NoError(t, err)
	require.Equal(t, domain.SyncConnected, h.store.Status())

	h.mem.Hold()
	_, err = h.store.AddTodo(ctx, testutil.NewTestTodo("설거지"))
	require.NoError(t, err)
	assert.Empty(t, h.store.Snapshot().Todos, "no local apply before the echo")

	h.mem.Release()
	todos := h.store.Snapshot().Todos
	require.Len(t, todos, 1)
	assert.Equal(t, "설거지", todos[0].Title)
	assert.Equal(t, "me", todos[0].AuthorID)
}

func TestGroupWrites_PreconditionFailureLeavesState(t *testing.T) {
	h := newHarness(t, "me")
	ctx := context.Background()
	_, err := h.store.CreateGroup(ctx, "우리집", "")
	require.NoError(t, err)
	h.gateway.Unbind()
	rev := h.store.Revision()

	_, err = h.store.AddBudget(ctx, testutil.NewTestEntry("커피", -4500))
	assert.ErrorIs(t, err, remote.ErrNoActiveGroup)
	assert.Empty(t, h.store.Snapshot().Budgets)
	assert.Equal(t, rev, h.store.Revision())
}

func TestCreateGroup_UploadsLocalDataInChunks(t *testing.T) {
	h := newHarness(t, "me")
	ctx := context.Background()

	entries := make([]domain.BudgetEntry, 1200)
	for i := range entries {
		entries[i] = testutil.NewTestEntry("항목", -1000)
	}
	h.store.mutate(func(st *State) bool {
		st.Budgets = entries
		return true
	})

	grp, err := h.store.CreateGroup(ctx, "우리집", "민지")
	require.NoError(t, err)
	assert.Len(t, grp.Code, domain.GroupCodeLength)

	sizes := h.mem.BatchSizes()
	require.GreaterOrEqual(t, len(sizes), 3)
	assert.Equal(t, []int{500, 500, 200}, sizes[:3])

	snap := h.store.Snapshot()
	assert.Equal(t, domain.ModeGroup, snap.Mode)
	assert.Equal(t, grp.Code, snap.GroupCode)
	require.Len(t, snap.Budgets, 1200, "the replica is the uploaded set")
	for _, e := range snap.Budgets {
		assert.Equal(t, "me", e.AuthorID)
	}
	assert.Equal(t, "me", snap.Accounts[0].OwnerID)
	assert.Equal(t, 5, h.mem.Watchers())

	var code string
	h.stored(t, repository.KeyGroupCode, &code)
	assert.Equal(t, grp.Code, code, "membership is saved right away")
}

func TestCreateGroup_Preconditions(t *testing.T) {
	ctx := context.Background()

	h := &harness{timers: testutil.NewFakeTimers()}
	offline := h.build(testutil.NewMemoryKV(), nil)
	_, err := offline.CreateGroup(ctx, "x", "")
	assert.ErrorIs(t, err, ErrGroupsDisabled)
	assert.ErrorIs(t, offline.StartGroupSync(ctx), ErrGroupsDisabled)

	solo := newHarness(t, "me")
	assert.ErrorIs(t, solo.store.StartGroupSync(ctx), ErrNotInGroup)
	assert.ErrorIs(t, solo.store.DisconnectGroup(ctx), ErrNotInGroup)

	_, err = solo.store.CreateGroup(ctx, "우리집", "")
	require.NoError(t, err)
	_, err = solo.store.CreateGroup(ctx, "또", "")
	assert.ErrorIs(t, err, ErrAlreadyInGroup)

	_, err = newHarness(t, "you").store.JoinGroup(ctx, "0O1I00", "")
	assert.ErrorIs(t, err, domain.ErrInvalidGroupCode)

	_, err = newHarness(t, "you").store.JoinGroup(ctx, "ZZZZZZ", "")
	assert.ErrorIs(t, err, remote.ErrGroupNotFound)
}

func TestStartGroupSync_PartialFailure(t *testing.T) {
	h := newFlakyHarness(t, &flakyRemote{failSubs: map[string]bool{"todos": true}})
	ctx := context.Background()

	_, err := h.store.CreateGroup(ctx, "우리집", "")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncConnected, h.store.Status())
	assert.Equal(t, 4, h.mem.Watchers())

	_, err = h.store.AddBudget(ctx, testutil.NewTestEntry("점심", -9000))
	require.NoError(t, err)
	assert.Len(t, h.store.Snapshot().Budgets, 1, "other collections keep syncing")

	_, err = h.store.AddTodo(ctx, testutil.NewTestTodo("청소"))
	require.NoError(t, err)
	assert.Empty(t, h.store.Snapshot().Todos, "the failed collection stays stale")
}

func TestStartGroupSync_AllSubscriptionsFail(t *testing.T) {
	all := map[string]bool{"budgets": true, "todos": true, "accounts": true, "categories": true, "group": true}
	h := newFlakyHarness(t, &flakyRemote{failSubs: all})

	_, err := h.store.CreateGroup(context.Background(), "우리집", "")
	assert.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, domain.SyncDisconnected, h.store.Status())
	assert.Zero(t, h.mem.Watchers())
}

func TestStartGroupSync_ReentrantCallIsNoop(t *testing.T) {
	h := newHarness(t, "me")
	h.store.mu.Lock()
	h.store.syncing = true
	h.store.state.GroupCode = "ABC234"
	h.store.mu.Unlock()

	require.NoError(t, h.store.StartGroupSync(context.Background()))
	assert.Zero(t, h.mem.Watchers())
	assert.Equal(t, domain.SyncDisconnected, h.store.Status())
}

// slowIdentity holds Identity calls until release is closed.
type slowIdentity struct {
	*remote.Gateway
	entered chan struct{}
	release chan struct{}
}

func (r *slowIdentity) Identity(ctx context.Context) (string, error) {
	r.entered <- struct{}{}
	<-r.release
	return r.Gateway.Identity(ctx)
}

func TestStartGroupSync_LeaveWhileConnectingWins(t *testing.T) {
	h := newHarness(t, "me")
	ctx := context.Background()
	_, err := h.store.CreateGroup(ctx, "우리집", "민지")
	require.NoError(t, err)

	slow := &slowIdentity{Gateway: h.gateway, entered: make(chan struct{}, 1), release: make(chan struct{})}
	h.store.mu.Lock()
	h.store.remote = slow
	h.store.mu.Unlock()

	started := make(chan error, 1)
	go func() { started <- h.store.StartGroupSync(ctx) }()
	<-slow.entered
	require.NoError(t, h.store.DisconnectGroup(ctx))
	close(slow.release)
	require.NoError(t, <-started)

	st := h.store.Snapshot()
	assert.Equal(t, domain.ModeSolo, st.Mode)
	assert.Equal(t, domain.SyncDisconnected, st.Status)
	assert.Empty(t, st.GroupCode)
	assert.Empty(t, h.gateway.Code(), "the gateway stays unbound")
	assert.Zero(t, h.mem.Watchers())

	before := len(st.Todos)
	_, err = h.store.AddTodo(ctx, testutil.NewTestTodo("혼자"))
	require.NoError(t, err)
	assert.Len(t, h.store.Snapshot().Todos, before+1, "solo writes apply at once")
}

func TestStartGroupSync_ReconnectReplacesSubscriptions(t *testing.T) {
	h := newHarness(t, "me")
	ctx := context.Background()
	_, err := h.store.CreateGroup(ctx, "우리집", "")
	require.NoError(t, err)
	first := h.syncGen()

	require.NoError(t, h.store.StartGroupSync(ctx))
	assert.Equal(t, 5, h.mem.Watchers(), "stale listeners are torn down first")
	assert.Greater(t, h.syncGen(), first)
}

func TestLoad_ResumesGroup(t *testing.T) {
	h := newHarness(t, "me")
	ctx := context.Background()
	grp, err := h.store.CreateGroup(ctx, "우리집", "민지")
	require.NoError(t, err)
	require.NoError(t, h.store.Close(ctx))

	restarted := h.build(h.kv, h.gateway)
	require.NoError(t, restarted.Load(ctx))
	t.Cleanup(func() { _ = restarted.Close(ctx) })

	snap := restarted.Snapshot()
	assert.Equal(t, domain.ModeGroup, snap.Mode)
	assert.Equal(t, domain.SyncConnected, snap.Status)
	assert.Equal(t, grp.Code, snap.GroupCode)
	assert.Equal(t, "민지", snap.Group.MemberName("me"))
}

func TestDisconnectGroup_KeepsOnlyOwnRecords(t *testing.T) {
	mem := docstore.NewMemory()
	me := newHarnessOn(t, mem, "me")
	you := newHarnessOn(t, mem, "you")
	ctx := context.Background()

	grp, err := me.store.CreateGroup(ctx, "우리집", "민지")
	require.NoError(t, err)
	_, err = you.store.JoinGroup(ctx, grp.Code, "준호")
	require.NoError(t, err)

	_, err = me.store.AddTodo(ctx, testutil.NewTestTodo("내 할일"))
	require.NoError(t, err)
	_, err = me.store.AddBudget(ctx, testutil.NewTestEntry("내 지출", -1000))
	require.NoError(t, err)
	_, err = you.store.AddTodo(ctx, testutil.NewTestTodo("남의 할일"))
	require.NoError(t, err)
	_, err = you.store.AddBudget(ctx, testutil.NewTestEntry("남의 지출", -2000))
	require.NoError(t, err)
	require.NoError(t, you.store.AddAccount(ctx, domain.Account{Name: "카드"}))

	before := me.store.Snapshot()
	require.Len(t, before.Todos, 2)
	require.Len(t, before.Budgets, 2)
	require.Len(t, before.Accounts, 2)

	require.NoError(t, me.store.DisconnectGroup(ctx))

	after := me.store.Snapshot()
	assert.Equal(t, domain.ModeSolo, after.Mode)
	assert.Equal(t, domain.SyncDisconnected, after.Status)
	assert.Empty(t, after.GroupCode)
	require.Len(t, after.Todos, 1)
	assert.Equal(t, "내 할일", after.Todos[0].Title)
	require.Len(t, after.Budgets, 1)
	assert.Equal(t, "내 지출", after.Budgets[0].Title)
	assert.Equal(t, []domain.Account{{Name: domain.DefaultAccount, OwnerID: "me"}}, after.Accounts)

	var saved []domain.Account
	me.stored(t, repository.KeyAccounts, &saved)
	assert.Equal(t, after.Accounts, saved, "ownership is persisted with the accounts")
	var savedTodos []domain.TodoRecord
	me.stored(t, repository.KeyTodos, &savedTodos)
	assert.Len(t, savedTodos, 1)

	_, err = you.store.AddTodo(ctx, testutil.NewTestTodo("늦은 할일"))
	require.NoError(t, err)
	assert.Len(t, me.store.Snapshot().Todos, 1, "no snapshot reaches a disconnected store")

	members := you.store.Snapshot().Group.Members
	assert.Equal(t, []string{"you"}, members)
}

func TestDisconnectGroup_FetchFailureClears(t *testing.T) {
	h := newFlakyHarness(t, &flakyRemote{failFetch: true})
	ctx := context.Background()
	_, err := h.store.CreateGroup(ctx, "우리집", "")
	require.NoError(t, err)
	_, err = h.store.AddTodo(ctx, testutil.NewTestTodo("할일"))
	require.NoError(t, err)
	require.NoError(t, h.store.AddAccount(ctx, domain.Account{Name: "카드"}))

	err = h.store.DisconnectGroup(ctx)
	assert.ErrorIs(t, err, errUnavailable)

	snap := h.store.Snapshot()
	assert.Equal(t, domain.ModeSolo, snap.Mode)
	assert.Empty(t, snap.Todos)
	assert.Empty(t, snap.Budgets)
	assert.Equal(t, []domain.Account{{Name: domain.DefaultAccount}}, snap.Accounts)
}

func TestOrphanAccount_HealedWithOneWrite(t *testing.T) {
	h := newHarness(t, "me")
	ctx := context.Background()
	grp, err := h.store.CreateGroup(ctx, "우리집", "")
	require.NoError(t, err)
	batches := len(h.mem.BatchSizes())

	orphan, err := docstore.Encode(domain.Account{Name: "현금", InitialBalance: 30000})
	require.NoError(t, err)
	path := docstore.CollectionPath(grp.Code, remote.CollectionAccounts)
	require.NoError(t, h.mem.Set(ctx, path, "현금", orphan))

	owner := func() string {
		for _, a := range h.store.Snapshot().Accounts {
			if a.Name == "현금" {
				return a.OwnerID
			}
		}
		return ""
	}
	assert.Equal(t, "me", owner())
	assert.Len(t, h.mem.BatchSizes(), batches+1, "one correction write")

	doc, err := h.mem.Get(ctx, path, "현금")
	require.NoError(t, err)
	assert.Equal(t, "me", doc.Fields["ownerId"])

	stale := []domain.Account{{Name: domain.DefaultAccount, OwnerID: "me"}, {Name: "현금", InitialBalance: 30000}}
	gen := h.syncGen()
	h.store.onAccounts(ctx, gen, stale)
	h.store.onAccounts(ctx, gen, stale)
	assert.Equal(t, "me", owner())
	assert.Len(t, h.mem.BatchSizes(), batches+1, "replayed snapshots do not claim again")
}

func TestUpdateProfile(t *testing.T) {
	h := newHarness(t, "me")
	ctx := context.Background()
	_, err := h.store.CreateGroup(ctx, "우리집", "민지")
	require.NoError(t, err)

	require.NoError(t, h.store.UpdateProfile(ctx, "엄마", domain.MemberPalette[2]))
	snap := h.store.Snapshot()
	assert.Equal(t, "엄마", snap.DisplayName)
	assert.Equal(t, "엄마", snap.Group.MemberName("me"))
	assert.Equal(t, domain.MemberPalette[2], snap.Group.MemberColors["me"])
}

func TestClose_StopsSubscriptions(t *testing.T) {
	h := newHarness(t, "me")
	ctx := context.Background()
	_, err := h.store.CreateGroup(ctx, "우리집", "")
	require.NoError(t, err)
	require.Equal(t, 5, h.mem.Watchers())

	require.NoError(t, h.store.Close(ctx))
	assert.Zero(t, h.mem.Watchers())
}

func TestWaitSynced(t *testing.T) {
	ctx := context.Background()

	t.Run("solo returns at once", func(t *testing.T) {
		h := newHarness(t, "me")
		assert.NoError(t, h.store.WaitSynced(ctx))
	})

	t.Run("first snapshots delivered", func(t *testing.T) {
		h := newHarness(t, "me")
		_, err := h.store.CreateGroup(ctx, "우리집", "")
		require.NoError(t, err)
		assert.NoError(t, h.store.WaitSynced(ctx))
	})

	t.Run("failed subscription counts as settled", func(t *testing.T) {
		h := newFlakyHarness(t, &flakyRemote{failSubs: map[string]bool{"group": true}})
		_, err := h.store.CreateGroup(ctx, "우리집", "")
		require.NoError(t, err)
		assert.NoError(t, h.store.WaitSynced(ctx))
	})

	t.Run("pending sync honours the context", func(t *testing.T) {
		h := newHarness(t, "me")
		h.store.mu.Lock()
		h.store.ready = newInitialSync([]subscription{{kind: KindTodos}})
		h.store.mu.Unlock()

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, h.store.WaitSynced(cctx), context.Canceled)

		h.store.delivered(h.syncGen()+1, KindTodos)
		assert.ErrorIs(t, h.store.WaitSynced(cctx), context.Canceled, "other generations are ignored")

		h.store.delivered(h.syncGen(), KindTodos)
		assert.NoError(t, h.store.WaitSynced(ctx))
	})

	t.Run("teardown releases waiters", func(t *testing.T) {
		h := newHarness(t, "me")
		h.store.mu.Lock()
		h.store.ready = newInitialSync([]subscription{{kind: KindTodos}, {kind: KindGroup}})
		subs, cancel := h.store.takeSubscriptionsLocked()
		h.store.mu.Unlock()
		stopSubscriptions(subs, cancel)

		assert.NoError(t, h.store.WaitSynced(ctx))
	})
}
