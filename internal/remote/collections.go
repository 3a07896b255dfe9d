package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/google/uuid"
)

// CreateBudget stores a new entry authored by the current identity and
// returns its id. The entry only reaches local state through the budgets
// subscription.
func (g *Gateway) CreateBudget(ctx context.Context, e domain.BudgetEntry) (string, error) {
	code, uid, err := g.scope(ctx)
	if err != nil {
		return "", err
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.AuthorID = uid
	if e.CreatedAt.IsZero() {
		e.CreatedAt = g.now().UTC()
	}
	f, err := budgetFields(e)
	if err != nil {
		return "", err
	}
	if err := g.store.Set(ctx, docstore.CollectionPath(code, CollectionBudgets), e.ID, f); err != nil {
		return "", fmt.Errorf("creating budget: %w", err)
	}
	return e.ID, nil
}

// UpdateBudget replaces the stored entry.
func (g *Gateway) UpdateBudget(ctx context.Context, e domain.BudgetEntry) error {
	code, uid, err := g.scope(ctx)
	if err != nil {
		return err
	}
	if e.AuthorID == "" {
		e.AuthorID = uid
	}
	f, err := budgetFields(e)
	if err != nil {
		return err
	}
	if err := g.store.Set(ctx, docstore.CollectionPath(code, CollectionBudgets), e.ID, f); err != nil {
		return fmt.Errorf("updating budget %s: %w", e.ID, err)
	}
	return nil
}

func (g *Gateway) DeleteBudget(ctx context.Context, id string) error {
	code, _, err := g.scope(ctx)
	if err != nil {
		return err
	}
	if err := g.store.Delete(ctx, docstore.CollectionPath(code, CollectionBudgets), id); err != nil {
		return fmt.Errorf("deleting budget %s: %w", id, err)
	}
	return nil
}

// SubscribeBudgets delivers the group's full ledger on every change.
func (g *Gateway) SubscribeBudgets(ctx context.Context, onData func([]domain.BudgetEntry), onError func(error)) (docstore.Unsubscribe, error) {
	return watch(ctx, g, CollectionBudgets, budgetFromDoc, onData, onError)
}

// FetchBudgetsByAuthor returns the group entries authored by uid.
func (g *Gateway) FetchBudgetsByAuthor(ctx context.Context, code, uid string) ([]domain.BudgetEntry, error) {
	path := docstore.CollectionPath(code, CollectionBudgets)
	docs, err := g.store.Query(ctx, path, docstore.Where("authorId", uid))
	if err != nil {
		return nil, fmt.Errorf("fetching budgets: %w", err)
	}
	return decodeAll(g.log, path, docs, budgetFromDoc), nil
}

// CreateTodo stores a new todo authored by the current identity.
func (g *Gateway) CreateTodo(ctx context.Context, t domain.Todo) (string, error) {
	code, uid, err := g.scope(ctx)
	if err != nil {
		return "", err
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.AuthorID = uid
	if t.CreatedAt.IsZero() {
		t.CreatedAt = g.now().UTC()
	}
	f, err := todoFields(t)
	if err != nil {
		return "", err
	}
	if err := g.store.Set(ctx, docstore.CollectionPath(code, CollectionTodos), t.ID, f); err != nil {
		return "", fmt.Errorf("creating todo: %w", err)
	}
	return t.ID, nil
}

// UpdateTodo replaces the stored todo, so a schedule change drops every
// field of the previous kind.
func (g *Gateway) UpdateTodo(ctx context.Context, t domain.Todo) error {
	code, uid, err := g.scope(ctx)
	if err != nil {
		return err
	}
	if t.AuthorID == "" {
		t.AuthorID = uid
	}
	f, err := todoFields(t)
	if err != nil {
		return err
	}
	if err := g.store.Set(ctx, docstore.CollectionPath(code, CollectionTodos), t.ID, f); err != nil {
		return fmt.Errorf("updating todo %s: %w", t.ID, err)
	}
	return nil
}

func (g *Gateway) DeleteTodo(ctx context.Context, id string) error {
	code, _, err := g.scope(ctx)
	if err != nil {
		return err
	}
	if err := g.store.Delete(ctx, docstore.CollectionPath(code, CollectionTodos), id); err != nil {
		return fmt.Errorf("deleting todo %s: %w", id, err)
	}
	return nil
}

func (g *Gateway) SubscribeTodos(ctx context.Context, onData func([]domain.Todo), onError func(error)) (docstore.Unsubscribe, error) {
	return watch(ctx, g, CollectionTodos, todoFromDoc, onData, onError)
}

// FetchTodosByAuthor returns the group todos authored by uid.
func (g *Gateway) FetchTodosByAuthor(ctx context.Context, code, uid string) ([]domain.Todo, error) {
	path := docstore.CollectionPath(code, CollectionTodos)
	docs, err := g.store.Query(ctx, path, docstore.Where("authorId", uid))
	if err != nil {
		return nil, fmt.Errorf("fetching todos: %w", err)
	}
	return decodeAll(g.log, path, docs, todoFromDoc), nil
}

// CreateAccount stores an account owned by the current identity. Account
// names are document ids.
func (g *Gateway) CreateAccount(ctx context.Context, a domain.Account) error {
	code, uid, err := g.scope(ctx)
	if err != nil {
		return err
	}
	if a.OwnerID == "" {
		a.OwnerID = uid
	}
	f, err := accountFields(a)
	if err != nil {
		return err
	}
	if err := g.store.Set(ctx, docstore.CollectionPath(code, CollectionAccounts), a.Name, f); err != nil {
		return fmt.Errorf("creating account %s: %w", a.Name, err)
	}
	return nil
}

// UpdateAccount replaces the stored account.
func (g *Gateway) UpdateAccount(ctx context.Context, a domain.Account) error {
	code, uid, err := g.scope(ctx)
	if err != nil {
		return err
	}
	if a.OwnerID == "" {
		a.OwnerID = uid
	}
	f, err := accountFields(a)
	if err != nil {
		return err
	}
	if err := g.store.Set(ctx, docstore.CollectionPath(code, CollectionAccounts), a.Name, f); err != nil {
		return fmt.Errorf("updating account %s: %w", a.Name, err)
	}
	return nil
}

func (g *Gateway) DeleteAccount(ctx context.Context, name string) error {
	code, _, err := g.scope(ctx)
	if err != nil {
		return err
	}
	if err := g.store.Delete(ctx, docstore.CollectionPath(code, CollectionAccounts), name); err != nil {
		return fmt.Errorf("deleting account %s: %w", name, err)
	}
	return nil
}

func (g *Gateway) SubscribeAccounts(ctx context.Context, onData func([]domain.Account), onError func(error)) (docstore.Unsubscribe, error) {
	return watch(ctx, g, CollectionAccounts, accountFromDoc, onData, onError)
}

// ClaimAccounts records the current identity as owner of the named
// accounts.
func (g *Gateway) ClaimAccounts(ctx context.Context, names []string) error {
	code, uid, err := g.scope(ctx)
	if err != nil {
		return err
	}
	path := docstore.CollectionPath(code, CollectionAccounts)
	ops := make([]docstore.Op, 0, len(names))
	for _, n := range names {
		ops = append(ops, docstore.Op{Kind: docstore.OpMerge, Path: path, ID: n, Fields: docstore.Fields{"ownerId": uid}})
	}
	return g.writeChunks(ctx, ops)
}

// SaveCategories replaces the group's category settings.
func (g *Gateway) SaveCategories(ctx context.Context, c domain.CategorySettings) error {
	code, _, err := g.scope(ctx)
	if err != nil {
		return err
	}
	f, err := categoryFields(c)
	if err != nil {
		return err
	}
	if err := g.store.Set(ctx, docstore.CollectionPath(code, CollectionCategories), CategoriesDocID, f); err != nil {
		return fmt.Errorf("saving categories: %w", err)
	}
	return nil
}

// SubscribeCategories delivers the group's category settings. found is
// false while the group has none stored yet.
func (g *Gateway) SubscribeCategories(ctx context.Context, onData func(c domain.CategorySettings, found bool), onError func(error)) (docstore.Unsubscribe, error) {
	return watch(ctx, g, CollectionCategories, categoryFromDoc, func(all []domain.CategorySettings) {
		if len(all) == 0 {
			onData(domain.CategorySettings{}, false)
			return
		}
		onData(all[0], true)
	}, onError)
}

// SubscribeGroup delivers the active group document. found is false once
// the group has been deleted.
func (g *Gateway) SubscribeGroup(ctx context.Context, onData func(grp domain.Group, found bool), onError func(error)) (docstore.Unsubscribe, error) {
	return watch(ctx, g, CollectionMeta, groupFromDoc, func(all []domain.Group) {
		for _, grp := range all {
			if grp.Code != "" {
				onData(grp, true)
				return
			}
		}
		onData(domain.Group{}, false)
	}, onError)
}

// IsPrecondition reports whether err is a missing identity or group.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNoIdentity) || errors.Is(err, ErrNoActiveGroup)
}
