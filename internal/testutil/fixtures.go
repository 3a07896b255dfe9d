package testutil

import (
	"time"

	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Todo options
type TodoOption func(*domain.Todo)

func WithSchedule(s domain.Schedule) TodoOption {
	return func(t *domain.Todo) {
		t.Schedule = s
	}
}

func WithTodoAuthor(uid string) TodoOption {
	return func(t *domain.Todo) {
		t.AuthorID = uid
	}
}

func WithCompleted(done bool) TodoOption {
	return func(t *domain.Todo) {
		t.Completed = done
	}
}

func NewTestTodo(title string, opts ...TodoOption) domain.Todo {
	t := domain.Todo{
		ID:        uuid.New().String(),
		Title:     title,
		Schedule:  domain.OnDate{Date: domain.DateOf(time.Now())},
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// BudgetEntry options
type EntryOption func(*domain.BudgetEntry)

func WithEntryAccount(name string) EntryOption {
	return func(e *domain.BudgetEntry) {
		e.Account = name
	}
}

func WithEntryCategory(c string) EntryOption {
	return func(e *domain.BudgetEntry) {
		e.Category = c
	}
}

func WithEntryDate(d time.Time) EntryOption {
	return func(e *domain.BudgetEntry) {
		e.Date = domain.DateOf(d)
	}
}

func WithEntryAuthor(uid string) EntryOption {
	return func(e *domain.BudgetEntry) {
		e.AuthorID = uid
	}
}

// NewTestEntry builds an entry from a signed amount: negative is an expense.
func NewTestEntry(title string, signed int64, opts ...EntryOption) domain.BudgetEntry {
	e := domain.NewBudgetEntry(title, signed, "", time.Now())
	e.ID = uuid.New().String()
	e.Account = domain.DefaultAccount
	e.CreatedAt = time.Now().UTC()
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Savings options
type SavingsOption func(*domain.Savings)

func WithLinkedAccount(name string) SavingsOption {
	return func(s *domain.Savings) {
		s.LinkedAccount = name
	}
}

func WithPaymentDay(day int) SavingsOption {
	return func(s *domain.Savings) {
		s.PaymentDay = day
	}
}

func WithSavingsPeriod(start, end time.Time) SavingsOption {
	return func(s *domain.Savings) {
		s.StartDate = domain.DateOf(start)
		s.EndDate = domain.DateOf(end)
	}
}

// NewTestInstallment builds a valid installment product that started three
// months ago and pays on the 1st.
func NewTestInstallment(name string, opts ...SavingsOption) domain.Savings {
	now := time.Now().UTC()
	s := domain.Savings{
		ID:            uuid.New().String(),
		Kind:          domain.SavingsInstallment,
		Name:          name,
		Bank:          "테스트은행",
		Rate:          decimal.RequireFromString("3.5"),
		StartDate:     domain.DateOf(now.AddDate(0, -3, 0)),
		EndDate:       domain.DateOf(now.AddDate(1, 0, 0)),
		MonthlyAmount: 100000,
		PaymentDay:    1,
		CreatedAt:     now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func NewTestInvestment(ticker string) domain.Investment {
	now := time.Now().UTC()
	return domain.Investment{
		ID:        uuid.New().String(),
		Kind:      domain.InvestmentDomestic,
		Ticker:    ticker,
		Name:      ticker,
		Market:    "KOSPI",
		Quantity:  decimal.NewFromInt(10),
		AvgPrice:  decimal.NewFromInt(70000),
		Currency:  "KRW",
		CreatedAt: now,
		UpdatedAt: now,
	}
}
