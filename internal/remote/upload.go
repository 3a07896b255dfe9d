package remote

import (
	"context"
	"fmt"

	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/google/uuid"
)

// UploadBudgets seeds the active group with existing local entries,
// authored by the current identity.
func (g *Gateway) UploadBudgets(ctx context.Context, entries []domain.BudgetEntry) error {
	code, uid, err := g.scope(ctx)
	if err != nil {
		return err
	}
	path := docstore.CollectionPath(code, CollectionBudgets)
	ops := make([]docstore.Op, 0, len(entries))
	for _, e := range entries {
		e.AuthorID = uid
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		f, err := budgetFields(e)
		if err != nil {
			return err
		}
		ops = append(ops, docstore.Op{Kind: docstore.OpSet, Path: path, ID: e.ID, Fields: f})
	}
	return g.writeChunks(ctx, ops)
}

// UploadTodos seeds the active group with existing local todos.
func (g *Gateway) UploadTodos(ctx context.Context, todos []domain.Todo) error {
	code, uid, err := g.scope(ctx)
	if err != nil {
		return err
	}
	path := docstore.CollectionPath(code, CollectionTodos)
	ops := make([]docstore.Op, 0, len(todos))
	for _, t := range todos {
		t.AuthorID = uid
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		f, err := todoFields(t)
		if err != nil {
			return err
		}
		ops = append(ops, docstore.Op{Kind: docstore.OpSet, Path: path, ID: t.ID, Fields: f})
	}
	return g.writeChunks(ctx, ops)
}

// UploadAccounts seeds the active group with local accounts, owned by the
// current identity.
func (g *Gateway) UploadAccounts(ctx context.Context, accounts []domain.Account) error {
	code, uid, err := g.scope(ctx)
	if err != nil {
		return err
	}
	path := docstore.CollectionPath(code, CollectionAccounts)
	ops := make([]docstore.Op, 0, len(accounts))
	for _, a := range accounts {
		a.OwnerID = uid
		f, err := accountFields(a)
		if err != nil {
			return err
		}
		ops = append(ops, docstore.Op{Kind: docstore.OpSet, Path: path, ID: a.Name, Fields: f})
	}
	return g.writeChunks(ctx, ops)
}

// writeChunks commits ops in sequential batches of at most
// docstore.MaxBatchWrites. A failed chunk stops the upload; earlier chunks
// stay committed.
func (g *Gateway) writeChunks(ctx context.Context, ops []docstore.Op) error {
	for start := 0; start < len(ops); start += docstore.MaxBatchWrites {
		end := min(start+docstore.MaxBatchWrites, len(ops))
		if err := g.store.Batch(ctx, ops[start:end]); err != nil {
			return fmt.Errorf("writing batch %d-%d of %d: %w", start, end, len(ops), err)
		}
	}
	return nil
}
