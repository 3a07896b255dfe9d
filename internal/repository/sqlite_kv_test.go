package repository_test

import (
	"context"
	"testing"

	"github.com/alexanderramin/hearth/internal/db"
	"github.com/alexanderramin/hearth/internal/domain"
	"github.com/alexanderramin/hearth/internal/repository"
	"github.com/alexanderramin/hearth/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVRepo_GetMissingKey(t *testing.T) {
	repo := repository.NewSQLiteKVRepo(testutil.NewTestDB(t))

	_, err := repo.Get(context.Background(), repository.KeyTodos)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestKVRepo_PutOverwritesAndBumpsRevision(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteKVRepo(database)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, repository.KeyBudgets, []byte(`[1]`)))
	require.NoError(t, repo.Put(ctx, repository.KeyBudgets, []byte(`[1,2]`)))

	got, err := repo.Get(ctx, repository.KeyBudgets)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, string(got))

	var rev int
	require.NoError(t, database.QueryRow(`SELECT revision FROM kv_store WHERE key = ?`, repository.KeyBudgets).Scan(&rev))
	assert.Equal(t, 2, rev)
}

func TestKVRepo_DeleteAndKeys(t *testing.T) {
	repo := repository.NewSQLiteKVRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, repository.KeyTodos, []byte(`[]`)))
	require.NoError(t, repo.Put(ctx, repository.KeyAccounts, []byte(`[]`)))

	keys, err := repo.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{repository.KeyAccounts, repository.KeyTodos}, keys)

	require.NoError(t, repo.Delete(ctx, repository.KeyTodos))
	_, err = repo.Get(ctx, repository.KeyTodos)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLoad_ReturnsDefaultWhenAbsent(t *testing.T) {
	repo := repository.NewSQLiteKVRepo(testutil.NewTestDB(t))

	got, err := repository.Load(context.Background(), repo, repository.KeyCategories, domain.DefaultCategorySettings())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategorySettings(), got)
}

func TestSaveLoad_TypedRoundTrip(t *testing.T) {
	repo := repository.NewSQLiteKVRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	accounts := []domain.Account{{Name: "기본", InitialBalance: 1000, OwnerID: "u1"}}
	require.NoError(t, repository.Save(ctx, repo, repository.KeyAccounts, accounts))

	got, err := repository.Load[[]domain.Account](ctx, repo, repository.KeyAccounts, nil)
	require.NoError(t, err)
	assert.Equal(t, accounts, got)
}

func TestLoad_CorruptValue(t *testing.T) {
	repo := repository.NewSQLiteKVRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Put(ctx, repository.KeyAccounts, []byte(`{not json`)))

	got, err := repository.Load(ctx, repo, repository.KeyAccounts, []domain.Account{{Name: "fallback"}})
	require.Error(t, err)
	assert.Equal(t, "fallback", got[0].Name)
}

func TestSave_WithinTransaction(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := db.NewSQLiteUnitOfWork(database)
	ctx := context.Background()

	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRepo := repository.NewSQLiteKVRepo(tx)
		if err := repository.Save(ctx, txRepo, repository.KeyTodos, []domain.TodoRecord{}); err != nil {
			return err
		}
		return repository.Save(ctx, txRepo, repository.KeyBudgets, []domain.BudgetEntry{})
	})
	require.NoError(t, err)

	keys, err := repository.NewSQLiteKVRepo(database).Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{repository.KeyBudgets, repository.KeyTodos}, keys)
}
