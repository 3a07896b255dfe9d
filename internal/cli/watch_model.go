package cli

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/hearth/internal/analytics"
	"github.com/alexanderramin/hearth/internal/binding"
	"github.com/alexanderramin/hearth/internal/cli/formatter"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ── messages ─────────────────────────────────────────────────────────────────

// viewMsg carries a new value published by one of the binding views.
type viewMsg[T any] struct{ value T }

// clockMsg moves the dashboard's notion of today.
type clockMsg time.Time

// listen waits for the next value on ch. A closed feed ends the loop.
func listen[T any](ch <-chan T) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return viewMsg[T]{value: v}
	}
}

func tickClock(now func() time.Time) tea.Cmd {
	return tea.Every(time.Minute, func(time.Time) tea.Msg { return clockMsg(now()) })
}

// ── feeds ────────────────────────────────────────────────────────────────────

// watchFeeds are the view streams the dashboard renders.
type watchFeeds struct {
	todos    <-chan []domain.Todo
	ledger   <-chan binding.Ledger
	accounts <-chan binding.Accounts
	group    <-chan binding.Group
}

// watchKeys are the dashboard's key bindings.
type watchKeys struct {
	quit key.Binding
}

func newWatchKeys() watchKeys {
	return watchKeys{
		quit: key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// ── model ────────────────────────────────────────────────────────────────────

// watchModel is the live dashboard. Every panel is fed by its own view so a
// ledger change never re-renders from a stale todo list and vice versa.
type watchModel struct {
	now     func() time.Time
	today   time.Time
	feeds   watchFeeds
	keys    watchKeys
	spinner spinner.Model
	width   int

	todos    []domain.Todo
	ledger   binding.Ledger
	accounts binding.Accounts
	group    binding.Group
}

// newWatchModel opens views on the app's store, seeds the model with their
// current values and streams later changes until ctx is done.
func newWatchModel(ctx context.Context, app *App) *watchModel {
	todos := binding.TodosView(app.Store)
	ledger := binding.LedgerView(app.Store)
	accounts := binding.AccountsView(app.Store)
	group := binding.GroupView(app.Store)

	m := newWatchModelFrom(app.today, watchFeeds{
		todos:    todos.Updates(ctx),
		ledger:   ledger.Updates(ctx),
		accounts: accounts.Updates(ctx),
		group:    group.Updates(ctx),
	})
	m.todos = todos.Value()
	m.ledger = ledger.Value()
	m.accounts = accounts.Value()
	m.group = group.Value()
	return m
}

func newWatchModelFrom(now func() time.Time, feeds watchFeeds) *watchModel {
	return &watchModel{
		now:   now,
		today: now(),
		feeds: feeds,
		keys:  newWatchKeys(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(formatter.StylePurple),
		),
	}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tickClock(m.now),
		listen(m.feeds.todos),
		listen(m.feeds.ledger),
		listen(m.feeds.accounts),
		listen(m.feeds.group),
	)
}

// ── update ───────────────────────────────────────────────────────────────────

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clockMsg:
		m.today = time.Time(msg)
		return m, tickClock(m.now)

	case viewMsg[[]domain.Todo]:
		m.todos = msg.value
		return m, listen(m.feeds.todos)

	case viewMsg[binding.Ledger]:
		m.ledger = msg.value
		return m, listen(m.feeds.ledger)

	case viewMsg[binding.Accounts]:
		m.accounts = msg.value
		return m, listen(m.feeds.accounts)

	case viewMsg[binding.Group]:
		m.group = msg.value
		return m, listen(m.feeds.group)
	}

	return m, nil
}

// ── view rendering ───────────────────────────────────────────────────────────

// watchSplitWidth is the terminal width from which panels sit side by side.
const watchSplitWidth = 110

func (m *watchModel) View() string {
	var b strings.Builder

	b.WriteString("\n  " + m.renderHeader() + "\n\n")

	left := m.renderToday() + "\n\n" + m.renderMonth()
	right := m.renderAccounts() + "\n\n" + formatter.FormatGroupStatus(m.group, m.accounts.Identity)

	if m.width >= watchSplitWidth {
		half := (m.width - 4) / 2
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(half).Render(left),
			"  ",
			lipgloss.NewStyle().Width(half).Render(right),
		))
	} else {
		b.WriteString(left + "\n\n" + right)
	}

	b.WriteString("\n\n" + formatter.Dim(m.keys.quit.Help().Key+": "+m.keys.quit.Help().Desc))
	return b.String()
}

func (m *watchModel) renderHeader() string {
	parts := []string{formatter.StyleHeader.Render("hearth"), formatter.ModeBadge(m.group.Mode)}
	if m.group.Status == domain.SyncConnecting {
		parts = append(parts, m.spinner.View()+" "+formatter.Dim("Connecting…"))
	} else if m.group.Mode == domain.ModeGroup {
		parts = append(parts, formatter.StatusIndicator(m.group.Status))
	}
	parts = append(parts, formatter.Dim(m.today.Format(domain.DateLayout)))
	return strings.Join(parts, "  ")
}

func (m *watchModel) renderToday() string {
	var today []domain.Todo
	for _, t := range m.todos {
		if t.OccursOn(m.today) {
			today = append(today, t)
		}
	}
	if len(today) == 0 {
		return formatter.RenderBox("Today", formatter.Dim("Nothing scheduled."))
	}
	body := formatter.TodoCounts(today) + "\n\n" + strings.TrimRight(formatter.FormatTodoList(today, m.group.Group), "\n")
	return formatter.RenderBox("Today", body)
}

func (m *watchModel) renderMonth() string {
	month := domain.MonthKey(m.today)
	return formatter.FormatMonthSummary(analytics.Summarize(month, m.ledger.Budgets, m.ledger.Categories))
}

func (m *watchModel) renderAccounts() string {
	return formatter.RenderBox("Accounts", strings.TrimRight(formatter.FormatAccounts(m.accounts, m.group.Group), "\n"))
}
