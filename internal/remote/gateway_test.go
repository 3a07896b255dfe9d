package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/hearth/internal/auth"
	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCode = "ABC234"

func newTestGateway(t *testing.T, uid string) (*Gateway, *docstore.Memory) {
	t.Helper()
	mem := docstore.NewMemory()
	g := New(mem, auth.Static(uid), zerolog.Nop(), WithClock(func() time.Time {
		return time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	}))
	return g, mem
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGateway_PreconditionsWriteNothing(t *testing.T) {
	ctx := context.Background()

	signedOut, mem := newTestGateway(t, "")
	signedOut.Bind(testCode)
	_, err := signedOut.CreateTodo(ctx, domain.Todo{Title: "a", Schedule: domain.MonthlyDay{Day: 1}})
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.True(t, IsPrecondition(err))

	unbound, _ := newTestGateway(t, "me")
	_, err = unbound.CreateBudget(ctx, domain.NewBudgetEntry("커피", -4500, "", date(2024, 6, 1)))
	assert.ErrorIs(t, err, ErrNoActiveGroup)
	assert.ErrorIs(t, unbound.DeleteTodo(ctx, "x"), ErrNoActiveGroup)
	_, err = unbound.SubscribeBudgets(ctx, func([]domain.BudgetEntry) {}, nil)
	assert.ErrorIs(t, err, ErrNoActiveGroup)

	assert.Zero(t, mem.Writes())
}

func TestGateway_BudgetUsesSignedAmount(t *testing.T) {
	ctx := context.Background()
	g, mem := newTestGateway(t, "me")
	g.Bind(testCode)

	e := domain.NewBudgetEntry("커피", -4500, domain.EntryExpense, date(2024, 6, 1))
	e.Category = "식비"
	e.Account = domain.DefaultAccount
	id, err := g.CreateBudget(ctx, e)
	require.NoError(t, err)

	doc, err := mem.Get(ctx, docstore.CollectionPath(testCode, CollectionBudgets), id)
	require.NoError(t, err)
	assert.Equal(t, json.Number("-4500"), doc.Fields["amount"])
	assert.Equal(t, "2024-06-01", doc.Fields["date"])
	assert.Equal(t, "me", doc.Fields["authorId"])
	assert.NotContains(t, doc.Fields, "type")
	assert.NotContains(t, doc.Fields, "savingsId")

	var got []domain.BudgetEntry
	_, err = g.SubscribeBudgets(ctx, func(es []domain.BudgetEntry) { got = es }, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(4500), got[0].Amount)
	assert.Equal(t, domain.EntryExpense, got[0].Type)
	assert.Equal(t, date(2024, 6, 1), got[0].Date)
}

func TestGateway_TodoPayloadHoldsOnlyActiveScheduleFields(t *testing.T) {
	ctx := context.Background()
	g, mem := newTestGateway(t, "me")
	g.Bind(testCode)
	path := docstore.CollectionPath(testCode, CollectionTodos)

	todo := domain.Todo{Title: "운동", Schedule: domain.Deadline{Date: date(2024, 7, 1)}}
	id, err := g.CreateTodo(ctx, todo)
	require.NoError(t, err)

	todo.ID = id
	todo.Schedule = domain.Weekly{Weekday: time.Monday}
	require.NoError(t, g.UpdateTodo(ctx, todo))

	doc, err := mem.Get(ctx, path, id)
	require.NoError(t, err)
	assert.Equal(t, "WEEKLY", doc.Fields["type"])
	assert.Equal(t, "MON", doc.Fields["weekday"])
	for _, stale := range []string{"deadline", "day", "date", "startDate", "endDate"} {
		assert.NotContains(t, doc.Fields, stale)
	}
	for k, v := range doc.Fields {
		assert.NotNil(t, v, k)
	}
}

func TestGateway_UploadChunksAtBatchLimit(t *testing.T) {
	ctx := context.Background()
	g, mem := newTestGateway(t, "me")
	g.Bind(testCode)

	entries := make([]domain.BudgetEntry, 1200)
	for i := range entries {
		entries[i] = domain.NewBudgetEntry(fmt.Sprintf("entry %d", i), -1000, "", date(2024, 6, 1))
		entries[i].ID = fmt.Sprintf("b%04d", i)
	}
	require.NoError(t, g.UploadBudgets(ctx, entries))

	assert.Equal(t, []int{500, 500, 200}, mem.BatchSizes())
	docs, err := mem.Query(ctx, docstore.CollectionPath(testCode, CollectionBudgets), docstore.Where("authorId", "me"))
	require.NoError(t, err)
	assert.Len(t, docs, 1200)
}

func TestGateway_FetchByAuthor(t *testing.T) {
	ctx := context.Background()
	me, mem := newTestGateway(t, "me")
	me.Bind(testCode)
	other := New(mem, auth.Static("you"), zerolog.Nop())
	other.Bind(testCode)

	_, err := me.CreateTodo(ctx, domain.Todo{Title: "mine", Schedule: domain.MonthlyDay{Day: 3}})
	require.NoError(t, err)
	_, err = other.CreateTodo(ctx, domain.Todo{Title: "theirs", Schedule: domain.MonthlyDay{Day: 4}})
	require.NoError(t, err)

	todos, err := me.FetchTodosByAuthor(ctx, testCode, "me")
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "mine", todos[0].Title)
}

func TestGateway_ClaimAccounts(t *testing.T) {
	ctx := context.Background()
	g, mem := newTestGateway(t, "me")
	g.Bind(testCode)
	path := docstore.CollectionPath(testCode, CollectionAccounts)
	require.NoError(t, mem.Set(ctx, path, "카드", docstore.Fields{"name": "카드", "initialBalance": 0}))

	require.NoError(t, g.ClaimAccounts(ctx, []string{"카드"}))

	var got []domain.Account
	_, err := g.SubscribeAccounts(ctx, func(as []domain.Account) { got = as }, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "me", got[0].OwnerID)
}

func TestGateway_CreateGroupRetriesOnCollision(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemory()
	require.NoError(t, mem.Set(ctx, groupDocPath("AAAAAA"), GroupDocID, docstore.Fields{"code": "AAAAAA"}))

	src := append(bytes.Repeat([]byte{0}, 6), bytes.Repeat([]byte{1}, 6)...)
	g := New(mem, auth.Static("me"), zerolog.Nop(), WithCodeSource(bytes.NewReader(src)))

	grp, err := g.CreateGroup(ctx, "우리집", "민지")
	require.NoError(t, err)
	assert.Equal(t, "BBBBBB", grp.Code)
	assert.Equal(t, []string{"me"}, grp.Members)
	assert.Empty(t, g.Code(), "creating does not bind")

	stored, err := g.FetchGroup(ctx, "BBBBBB")
	require.NoError(t, err)
	assert.Equal(t, "민지", stored.MemberName("me"))
}

func TestGateway_CreateGroupGivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	mem := docstore.NewMemory()
	require.NoError(t, mem.Set(ctx, groupDocPath("AAAAAA"), GroupDocID, docstore.Fields{"code": "AAAAAA"}))

	g := New(mem, auth.Static("me"), zerolog.Nop(),
		WithCodeSource(bytes.NewReader(make([]byte, 6*MaxCodeAttempts))))
	_, err := g.CreateGroup(ctx, "", "")
	assert.ErrorIs(t, err, ErrCodeExhausted)
}

func TestGateway_JoinAndLeave(t *testing.T) {
	ctx := context.Background()
	owner, mem := newTestGateway(t, "owner")
	grp, err := owner.CreateGroup(ctx, "우리집", "")
	require.NoError(t, err)

	joiner := New(mem, auth.Static("joiner"), zerolog.Nop())
	_, err = joiner.JoinGroup(ctx, "ZZZZZZ", "")
	assert.ErrorIs(t, err, ErrGroupNotFound)
	_, err = joiner.JoinGroup(ctx, "bad", "")
	assert.ErrorIs(t, err, domain.ErrInvalidGroupCode)

	joined, err := joiner.JoinGroup(ctx, grp.Code, "준호")
	require.NoError(t, err)
	assert.Equal(t, []string{"owner", "joiner"}, joined.Members)
	assert.NotEqual(t, joined.MemberColors["owner"], joined.MemberColors["joiner"])

	var seen domain.Group
	joiner.Bind(grp.Code)
	_, err = joiner.SubscribeGroup(ctx, func(g domain.Group, found bool) {
		if found {
			seen = g
		}
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "준호", seen.MemberName("joiner"))

	require.NoError(t, joiner.LeaveGroup(ctx))
	assert.Equal(t, []string{"owner"}, seen.Members)

	owner.Bind(grp.Code)
	require.NoError(t, owner.LeaveGroup(ctx))
	_, err = owner.FetchGroup(ctx, grp.Code)
	assert.ErrorIs(t, err, ErrGroupNotFound, "the last member deletes the group")
}

func TestGateway_CategoriesSingleDocument(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGateway(t, "me")
	g.Bind(testCode)

	var found bool
	var got domain.CategorySettings
	_, err := g.SubscribeCategories(ctx, func(c domain.CategorySettings, ok bool) {
		got, found = c, ok
	}, nil)
	require.NoError(t, err)
	assert.False(t, found)

	settings := domain.DefaultCategorySettings()
	settings.MonthlyGoals["2024-06"] = 500000
	require.NoError(t, g.SaveCategories(ctx, settings))
	assert.True(t, found)
	assert.Equal(t, int64(500000), got.MonthlyGoals["2024-06"])
	assert.Equal(t, settings.FixedCategories, got.FixedCategories)
}
