package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/hearth/internal/binding"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/alexanderramin/hearth/internal/teatest"
	"github.com/alexanderramin/hearth/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock() time.Time { return testNow }

func viewOf(m *watchModel) string {
	return ansi.ReplaceAllString(m.View(), "")
}

func TestWatchModel_QuitKeys(t *testing.T) {
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
	} {
		m := newWatchModelFrom(clock, watchFeeds{})
		_, cmd := m.Update(k)
		require.NotNil(t, cmd, k.String())
		assert.IsType(t, tea.QuitMsg{}, cmd(), k.String())
	}
}

func TestWatchModel_RendersViewValues(t *testing.T) {
	m := newWatchModelFrom(clock, watchFeeds{})

	m.Update(viewMsg[[]domain.Todo]{value: []domain.Todo{
		testutil.NewTestTodo("분리수거", testutil.WithSchedule(domain.Weekly{Weekday: time.Saturday})),
		testutil.NewTestTodo("회의", testutil.WithSchedule(domain.Weekly{Weekday: time.Monday})),
	}})
	m.Update(viewMsg[binding.Ledger]{value: binding.Ledger{
		Budgets: []domain.BudgetEntry{testutil.NewTestEntry("점심", -9000, testutil.WithEntryDate(testNow))},
	}})
	m.Update(viewMsg[binding.Accounts]{value: binding.Accounts{
		Accounts: []domain.Account{{Name: domain.DefaultAccount, InitialBalance: 50000}},
		Balances: map[string]int64{domain.DefaultAccount: 41000},
	}})

	out := viewOf(m)
	assert.Contains(t, out, "분리수거")
	assert.NotContains(t, out, "회의", "only today's todos")
	assert.Contains(t, out, "₩9,000")
	assert.Contains(t, out, "₩41,000")
	assert.Contains(t, out, "SOLO")
	assert.Contains(t, out, "2024-06-15")
}

func TestWatchModel_SpinnerWhileConnecting(t *testing.T) {
	m := newWatchModelFrom(clock, watchFeeds{})

	m.Update(viewMsg[binding.Group]{value: binding.Group{Mode: domain.ModeGroup, Status: domain.SyncConnecting, Code: "ABC234"}})
	assert.Contains(t, viewOf(m), "Connecting…")

	_, cmd := m.Update(m.spinner.Tick())
	assert.NotNil(t, cmd, "the spinner keeps ticking")

	m.Update(viewMsg[binding.Group]{value: binding.Group{Mode: domain.ModeGroup, Status: domain.SyncConnected, Code: "ABC234"}})
	out := viewOf(m)
	assert.NotContains(t, out, "Connecting…")
	assert.Contains(t, out, "CONNECTED")
	assert.Contains(t, out, "ABC234")
}

func TestWatchModel_ClockMovesToday(t *testing.T) {
	m := newWatchModelFrom(clock, watchFeeds{})
	m.Update(viewMsg[[]domain.Todo]{value: []domain.Todo{
		testutil.NewTestTodo("회의", testutil.WithSchedule(domain.Weekly{Weekday: time.Monday})),
	}})
	assert.NotContains(t, viewOf(m), "회의")

	_, cmd := m.Update(clockMsg(testNow.AddDate(0, 0, 2)))
	assert.NotNil(t, cmd)
	assert.Contains(t, viewOf(m), "회의")
}

func TestWatchModel_SideBySideWhenWide(t *testing.T) {
	m := newWatchModelFrom(clock, watchFeeds{})
	narrow := viewOf(m)

	m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	wide := viewOf(m)

	assert.Less(t, strings.Count(wide, "\n"), strings.Count(narrow, "\n"))
}

func TestWatchModel_FollowsStore(t *testing.T) {
	app := testApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := teatest.New(t, newWatchModel(ctx, app), teatest.WithSize(160, 40))
	d.DrainInit()
	assert.Contains(t, d.View(), "Nothing scheduled.")

	_, err := app.Store.AddTodo(ctx, testutil.NewTestTodo("청소", testutil.WithSchedule(domain.OnDate{Date: domain.DateOf(testNow)})))
	require.NoError(t, err)
	assert.True(t, d.WaitFor("청소", time.Second), "todo feed reaches the dashboard")

	_, err = app.Store.AddBudget(ctx, testutil.NewTestEntry("점심", -9000, testutil.WithEntryDate(testNow)))
	require.NoError(t, err)
	assert.True(t, d.WaitFor("₩9,000", time.Second), "ledger feed reaches the dashboard")

	d.PressKey('q')
	assert.True(t, d.Quitting)
}

var _ tea.Model = (*watchModel)(nil)
