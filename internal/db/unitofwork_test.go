package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/hearth/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestUoW(t *testing.T) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewSQLiteUnitOfWork(database)
}

func putKey(ctx context.Context, tx db.DBTX, key, value string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, '2024-01-01T00:00:00Z')`, key, value)
	return err
}

func readKey(t *testing.T, uow *db.SQLiteUnitOfWork, key string) (string, bool) {
	t.Helper()
	var val string
	var found bool
	_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := tx.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&val); err != nil {
			return nil
		}
		found = true
		return nil
	})
	return val, found
}

func TestWithinTx_CommitsEveryKey(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := putKey(ctx, tx, "@budgets", "[]"); err != nil {
			return err
		}
		return putKey(ctx, tx, "@todos", "[]")
	})
	require.NoError(t, err)

	for _, k := range []string{"@budgets", "@todos"} {
		val, found := readKey(t, uow, k)
		assert.True(t, found, k)
		assert.Equal(t, "[]", val)
	}
}

func TestWithinTx_RollsBackPartialWrites(t *testing.T) {
	uow := openTestUoW(t)
	boom := errors.New("accounts write failed")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := putKey(ctx, tx, "@budgets", "[]"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, found := readKey(t, uow, "@budgets")
	assert.False(t, found, "first write must not survive the failed transaction")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow := openTestUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = putKey(ctx, tx, "@todos", "[]")
			panic("boom")
		})
	})

	_, found := readKey(t, uow, "@todos")
	assert.False(t, found)
}

func TestUnitOfWorkFunc(t *testing.T) {
	called := false
	uow := db.UnitOfWorkFunc(func(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
		called = true
		return fn(ctx, nil)
	})
	require.NoError(t, uow.WithinTx(context.Background(), func(context.Context, db.DBTX) error { return nil }))
	assert.True(t, called)
}
