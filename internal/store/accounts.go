package store

import (
	"context"

	"github.com/alexanderramin/hearth/internal/domain"
)

// AddAccount creates a named account. Names are unique.
func (s *Store) AddAccount(ctx context.Context, a domain.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if _, exists := accountsCollection.find(s, a.Name); exists {
		return ErrDuplicateAccount
	}
	return addItem(ctx, s, accountsCollection, s.currentWriters().accounts, a)
}

// UpdateAccount applies fn to the account called name. The name itself is
// the account's identity and cannot be changed.
func (s *Store) UpdateAccount(ctx context.Context, name string, fn func(*domain.Account)) (bool, error) {
	return updateItem(ctx, s, accountsCollection, s.currentWriters().accounts, name, fn, (*domain.Account).Validate)
}

// DeleteAccount removes an account. Entries that reference it keep their
// account tag and simply stop counting toward any balance.
func (s *Store) DeleteAccount(ctx context.Context, name string) (bool, error) {
	if name == domain.DefaultAccount {
		return false, ErrProtectedAccount
	}
	return deleteItem(ctx, s, accountsCollection, s.currentWriters().accounts, name)
}

// ensureAccount creates the account called name unless it exists.
func (s *Store) ensureAccount(ctx context.Context, name string, initial int64) error {
	if _, exists := accountsCollection.find(s, name); exists {
		return nil
	}
	return addItem(ctx, s, accountsCollection, s.currentWriters().accounts, domain.Account{
		Name:           name,
		InitialBalance: initial,
	})
}
