package store

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/hearth/internal/db"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/alexanderramin/hearth/internal/repository"
)

// saveTimeout bounds a debounced save, which runs detached from any caller.
const saveTimeout = 10 * time.Second

// Load reads every persisted collection, seeds defaults on first run and
// either resumes group sync or, in solo mode, materializes due savings
// payments. A failed group resume is logged; the store keeps serving the
// local replica.
func (s *Store) Load(ctx context.Context) error {
	records, err := repository.Load(ctx, s.kv, repository.KeyTodos, []domain.TodoRecord{})
	if err != nil {
		return err
	}
	todos := make([]domain.Todo, 0, len(records))
	for _, r := range records {
		t, err := domain.TodoFromRecord(r)
		if err != nil {
			s.log.Warn().Err(err).Str("id", r.ID).Msg("skipping unreadable todo")
			continue
		}
		todos = append(todos, t)
	}
	budgets, err := repository.Load(ctx, s.kv, repository.KeyBudgets, []domain.BudgetEntry{})
	if err != nil {
		return err
	}
	accounts, err := repository.Load(ctx, s.kv, repository.KeyAccounts, []domain.Account{})
	if err != nil {
		return err
	}
	seeded := indexOf(accounts, domain.DefaultAccount, accountsCollection.key) < 0
	if seeded {
		accounts = append([]domain.Account{{Name: domain.DefaultAccount}}, accounts...)
	}
	categories, err := repository.Load(ctx, s.kv, repository.KeyCategories, domain.DefaultCategorySettings())
	if err != nil {
		return err
	}
	categories.Normalize()
	investments, err := repository.Load(ctx, s.kv, repository.KeyInvestments, []domain.Investment{})
	if err != nil {
		return err
	}
	savings, err := repository.Load(ctx, s.kv, repository.KeySavings, []domain.Savings{})
	if err != nil {
		return err
	}
	code, err := repository.Load(ctx, s.kv, repository.KeyGroupCode, "")
	if err != nil {
		return err
	}
	group, err := repository.Load(ctx, s.kv, repository.KeyGroup, domain.Group{})
	if err != nil {
		return err
	}
	displayName, err := repository.Load(ctx, s.kv, repository.KeyDisplayName, "")
	if err != nil {
		return err
	}

	s.mutate(func(st *State) bool {
		st.Todos = todos
		st.Budgets = budgets
		st.Accounts = accounts
		st.Categories = categories
		st.Investments = investments
		st.Savings = savings
		st.GroupCode = code
		st.Group = group
		st.DisplayName = displayName
		return true
	})
	if seeded {
		s.deb.schedule(KindAccounts)
	}

	if code != "" {
		if s.remote == nil {
			s.log.Warn().Str("code", code).Msg("persisted group ignored: group sync is not configured")
			return nil
		}
		if err := s.StartGroupSync(ctx); err != nil {
			s.log.Error().Err(err).Str("code", code).Msg("resuming group sync failed")
		}
		return nil
	}
	s.materializeSavings()
	return nil
}

// saveKind persists the current value of one collection. Failures are
// logged and never roll back memory.
func (s *Store) saveKind(k Kind) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	_ = s.persist(ctx, k)
}

func (s *Store) persist(ctx context.Context, kinds ...Kind) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	values := make(map[string]any)
	for _, k := range kinds {
		for key, v := range persistedValues(&s.state, k) {
			values[key] = v
		}
	}
	s.mu.Unlock()

	if err := s.saveAll(ctx, values); err != nil {
		s.log.Error().Err(err).Strs("kinds", kindNames(kinds)).Msg("local save failed")
		return err
	}
	return nil
}

// persistedValues returns deep copies of the values stored for kind, keyed
// by storage key.
func persistedValues(st *State, k Kind) map[string]any {
	switch k {
	case KindTodos:
		records := make([]domain.TodoRecord, 0, len(st.Todos))
		for _, t := range st.Todos {
			records = append(records, t.Record())
		}
		return map[string]any{repository.KeyTodos: records}
	case KindBudgets:
		return map[string]any{repository.KeyBudgets: cloneOrEmpty(st.Budgets)}
	case KindAccounts:
		return map[string]any{repository.KeyAccounts: cloneOrEmpty(st.Accounts)}
	case KindCategories:
		return map[string]any{repository.KeyCategories: st.Categories.Clone()}
	case KindInvestments:
		return map[string]any{repository.KeyInvestments: cloneOrEmpty(st.Investments)}
	case KindSavings:
		return map[string]any{repository.KeySavings: cloneOrEmpty(st.Savings)}
	case KindGroup:
		return map[string]any{
			repository.KeyGroupCode:   st.GroupCode,
			repository.KeyGroup:       st.Group.Clone(),
			repository.KeyDisplayName: st.DisplayName,
		}
	}
	return nil
}

// saveAll writes every value. With a unit of work the writes commit
// together; otherwise they are written one by one.
func (s *Store) saveAll(ctx context.Context, values map[string]any) error {
	if s.uow == nil {
		for key, v := range values {
			if err := repository.Save(ctx, s.kv, key, v); err != nil {
				return err
			}
		}
		return nil
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		kv := repository.NewSQLiteKVRepo(tx)
		for key, v := range values {
			if err := repository.Save(ctx, kv, key, v); err != nil {
				return fmt.Errorf("saving %s: %w", key, err)
			}
		}
		return nil
	})
}

// Flush writes every collection with a pending debounced save now and
// waits for saves whose timer already fired.
func (s *Store) Flush(ctx context.Context) error {
	kinds := s.deb.takeAll()
	var err error
	if len(kinds) > 0 {
		err = s.persist(ctx, kinds...)
	}
	s.deb.waitIdle()
	return err
}

// PendingSaves lists the kinds waiting for their debounce timer.
func (s *Store) PendingSaves() []Kind {
	return s.deb.pendingKinds()
}

// Close stops group subscriptions without leaving the group and flushes
// pending saves.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	s.syncGen++
	subs, cancel := s.takeSubscriptionsLocked()
	s.mu.Unlock()
	stopSubscriptions(subs, cancel)
	return s.Flush(ctx)
}

func cloneOrEmpty[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func kindNames(kinds []Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
