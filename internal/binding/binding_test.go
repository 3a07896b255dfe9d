package binding

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/alexanderramin/hearth/internal/store"
	"github.com/alexanderramin/hearth/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	timers := testutil.NewFakeTimers()
	s := store.New(testutil.NewMemoryKV(), zerolog.Nop(),
		store.WithAfterFunc(func(d time.Duration, fn func()) store.Timer { return timers.AfterFunc(d, fn) }))
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestView_IgnoresUnrelatedChanges(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	accounts := AccountsView(s)
	var published []Accounts
	cancel := accounts.Watch(func(a Accounts) { published = append(published, a) })
	defer cancel()

	todo, err := s.AddTodo(ctx, testutil.NewTestTodo("빨래"))
	require.NoError(t, err)
	_, err = s.ToggleTodo(ctx, todo.ID)
	require.NoError(t, err)
	assert.Empty(t, published, "todo changes do not reach the accounts view")

	_, err = s.AddBudget(ctx, testutil.NewTestEntry("커피", -4500))
	require.NoError(t, err)
	require.Len(t, published, 1, "a budget moves a balance")
	assert.Equal(t, int64(-4500), published[0].Balances[domain.DefaultAccount])
}

func TestView_RecomputesOnlyOnNewRevision(t *testing.T) {
	s := newStore(t)
	todos := TodosView(s)
	base := todos.Computes()

	_ = todos.Value()
	_ = todos.Value()
	assert.Equal(t, base, todos.Computes(), "same revision, no recompute")

	_, err := s.AddTodo(context.Background(), testutil.NewTestTodo("청소"))
	require.NoError(t, err)
	assert.Len(t, todos.Value(), 1)
	assert.Equal(t, base+1, todos.Computes())
}

func TestView_NeverHidesARealChange(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	todos := TodosView(s)

	var got [][]domain.Todo
	cancel := todos.Watch(func(v []domain.Todo) { got = append(got, v) })
	defer cancel()

	todo, err := s.AddTodo(ctx, testutil.NewTestTodo("운동"))
	require.NoError(t, err)
	_, err = s.ToggleTodo(ctx, todo.ID)
	require.NoError(t, err)
	_, err = s.ToggleTodo(ctx, todo.ID)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.False(t, got[0][0].Completed)
	assert.True(t, got[1][0].Completed)
	assert.False(t, got[2][0].Completed)
}

func TestPortfolioView_ComparesDecimalsByValue(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	portfolio := PortfolioView(s)

	var calls int
	cancel := portfolio.Watch(func(Portfolio) { calls++ })
	defer cancel()

	inv, err := s.AddInvestment(ctx, testutil.NewTestInvestment("005930"))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = s.UpdateInvestment(ctx, inv.ID, func(i *domain.Investment) {
		i.Quantity = decimal.NewFromInt(11)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, portfolio.Value().Investments[0].Quantity.Equal(decimal.NewFromInt(11)))
}

func TestWatch_CancelStopsListening(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	todos := TodosView(s)

	var calls int
	cancel := todos.Watch(func([]domain.Todo) { calls++ })
	_, err := s.AddTodo(ctx, testutil.NewTestTodo("a"))
	require.NoError(t, err)
	cancel()
	cancel()

	_, err = s.AddTodo(ctx, testutil.NewTestTodo("b"))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, todos.Value(), 2, "an unwatched view still answers reads")
}

func TestUpdates_DeliversLatest(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	group := GroupView(s)
	ledger := LedgerView(s)

	updates := ledger.Updates(ctx)
	_, err := s.AddCategory(ctx, "육아")
	require.NoError(t, err)

	select {
	case l := <-updates:
		assert.Contains(t, l.Categories.Categories, "육아")
	case <-time.After(time.Second):
		t.Fatal("no ledger update")
	}
	assert.Equal(t, domain.ModeSolo, group.Value().Mode)

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-updates
		return !open
	}, time.Second, 10*time.Millisecond)
}

func TestAccounts_Mine(t *testing.T) {
	a := Accounts{
		Identity: "me",
		Accounts: []domain.Account{{Name: "기본"}, {Name: "카드", OwnerID: "you"}},
	}
	assert.True(t, a.Mine("기본"))
	assert.False(t, a.Mine("카드"))
	assert.False(t, a.Mine("없음"))
}
