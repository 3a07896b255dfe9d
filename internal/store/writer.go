package store

import (
	"context"
	"slices"

	"github.com/alexanderramin/hearth/internal/domain"
)

// writer applies one kind of change for a collection. The local writer
// applies the change to memory and schedules a save; the remote writer
// submits it to the gateway and leaves memory untouched until the
// subscription echoes it back.
type writer[T any] interface {
	add(ctx context.Context, v T) error
	update(ctx context.Context, v T) error
	remove(ctx context.Context, v T) error
}

// collection locates a slice of State and the identity of its items.
type collection[T any] struct {
	kind  Kind
	items func(*State) *[]T
	key   func(T) string
}

var (
	todosCollection = collection[domain.Todo]{
		kind:  KindTodos,
		items: func(st *State) *[]domain.Todo { return &st.Todos },
		key:   func(t domain.Todo) string { return t.ID },
	}
	budgetsCollection = collection[domain.BudgetEntry]{
		kind:  KindBudgets,
		items: func(st *State) *[]domain.BudgetEntry { return &st.Budgets },
		key:   func(e domain.BudgetEntry) string { return e.ID },
	}
	accountsCollection = collection[domain.Account]{
		kind:  KindAccounts,
		items: func(st *State) *[]domain.Account { return &st.Accounts },
		key:   func(a domain.Account) string { return a.Name },
	}
	investmentsCollection = collection[domain.Investment]{
		kind:  KindInvestments,
		items: func(st *State) *[]domain.Investment { return &st.Investments },
		key:   func(i domain.Investment) string { return i.ID },
	}
	savingsCollection = collection[domain.Savings]{
		kind:  KindSavings,
		items: func(st *State) *[]domain.Savings { return &st.Savings },
		key:   func(s domain.Savings) string { return s.ID },
	}
)

// find returns a copy of the item with id.
func (c collection[T]) find(s *Store, id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := *c.items(&s.state)
	i := indexOf(items, id, c.key)
	if i < 0 {
		var zero T
		return zero, false
	}
	return items[i], true
}

type localWriter[T any] struct {
	s *Store
	c collection[T]
}

func (w localWriter[T]) add(_ context.Context, v T) error {
	w.s.mutate(func(st *State) bool {
		items := w.c.items(st)
		*items = append(slices.Clone(*items), v)
		return true
	}, w.c.kind)
	return nil
}

func (w localWriter[T]) update(_ context.Context, v T) error {
	w.s.mutate(func(st *State) bool {
		items := w.c.items(st)
		i := indexOf(*items, w.c.key(v), w.c.key)
		if i < 0 {
			return false
		}
		next := slices.Clone(*items)
		next[i] = v
		*items = next
		return true
	}, w.c.kind)
	return nil
}

func (w localWriter[T]) remove(_ context.Context, v T) error {
	w.s.mutate(func(st *State) bool {
		items := w.c.items(st)
		i := indexOf(*items, w.c.key(v), w.c.key)
		if i < 0 {
			return false
		}
		*items = slices.Delete(slices.Clone(*items), i, i+1)
		return true
	}, w.c.kind)
	return nil
}

// remoteWriter forwards each change to the gateway.
type remoteWriter[T any] struct {
	create  func(context.Context, T) error
	replace func(context.Context, T) error
	del     func(context.Context, T) error
}

func (w remoteWriter[T]) add(ctx context.Context, v T) error    { return w.create(ctx, v) }
func (w remoteWriter[T]) update(ctx context.Context, v T) error { return w.replace(ctx, v) }
func (w remoteWriter[T]) remove(ctx context.Context, v T) error { return w.del(ctx, v) }

// categoryWriter replaces the whole category settings value.
type categoryWriter interface {
	save(ctx context.Context, c domain.CategorySettings) error
}

type localCategories struct{ s *Store }

func (w localCategories) save(_ context.Context, c domain.CategorySettings) error {
	w.s.mutate(func(st *State) bool {
		st.Categories = c
		return true
	}, KindCategories)
	return nil
}

type remoteCategories struct{ r Remote }

func (w remoteCategories) save(ctx context.Context, c domain.CategorySettings) error {
	return w.r.SaveCategories(ctx, c)
}

// writers is the strategy set for one mode.
type writers struct {
	todos       writer[domain.Todo]
	budgets     writer[domain.BudgetEntry]
	accounts    writer[domain.Account]
	categories  categoryWriter
	investments writer[domain.Investment]
	savings     writer[domain.Savings]
}

// writersFor builds the strategy set for mode. Investments and savings are
// never shared and always stay local.
func (s *Store) writersFor(mode domain.Mode) writers {
	w := writers{
		todos:       localWriter[domain.Todo]{s: s, c: todosCollection},
		budgets:     localWriter[domain.BudgetEntry]{s: s, c: budgetsCollection},
		accounts:    localWriter[domain.Account]{s: s, c: accountsCollection},
		categories:  localCategories{s: s},
		investments: localWriter[domain.Investment]{s: s, c: investmentsCollection},
		savings:     localWriter[domain.Savings]{s: s, c: savingsCollection},
	}
	if mode != domain.ModeGroup || s.remote == nil {
		return w
	}
	r := s.remote
	w.todos = remoteWriter[domain.Todo]{
		create: func(ctx context.Context, t domain.Todo) error {
			_, err := r.CreateTodo(ctx, t)
			return err
		},
		replace: r.UpdateTodo,
		del:     func(ctx context.Context, t domain.Todo) error { return r.DeleteTodo(ctx, t.ID) },
	}
	w.budgets = remoteWriter[domain.BudgetEntry]{
		create: func(ctx context.Context, e domain.BudgetEntry) error {
			_, err := r.CreateBudget(ctx, e)
			return err
		},
		replace: r.UpdateBudget,
		del:     func(ctx context.Context, e domain.BudgetEntry) error { return r.DeleteBudget(ctx, e.ID) },
	}
	w.accounts = remoteWriter[domain.Account]{
		create:  r.CreateAccount,
		replace: r.UpdateAccount,
		del:     func(ctx context.Context, a domain.Account) error { return r.DeleteAccount(ctx, a.Name) },
	}
	w.categories = remoteCategories{r: r}
	return w
}
