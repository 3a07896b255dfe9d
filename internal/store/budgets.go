package store

import (
	"context"

	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/google/uuid"
)

// AddBudget records a ledger entry. Entries without an account go to the
// default account.
func (s *Store) AddBudget(ctx context.Context, e domain.BudgetEntry) (domain.BudgetEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	if e.Account == "" {
		e.Account = domain.DefaultAccount
	}
	e.Date = domain.DateOf(e.Date)
	if err := e.Validate(); err != nil {
		return domain.BudgetEntry{}, err
	}
	if err := addItem(ctx, s, budgetsCollection, s.currentWriters().budgets, e); err != nil {
		return domain.BudgetEntry{}, err
	}
	return e, nil
}

func (s *Store) UpdateBudget(ctx context.Context, id string, fn func(*domain.BudgetEntry)) (bool, error) {
	return updateItem(ctx, s, budgetsCollection, s.currentWriters().budgets, id, fn, func(e *domain.BudgetEntry) error {
		e.Date = domain.DateOf(e.Date)
		return e.Validate()
	})
}

func (s *Store) DeleteBudget(ctx context.Context, id string) (bool, error) {
	return deleteItem(ctx, s, budgetsCollection, s.currentWriters().budgets, id)
}
