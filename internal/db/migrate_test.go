package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMigratedDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openMigratedDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesKVStore(t *testing.T) {
	db := openMigratedDB(t)

	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='kv_store'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "kv_store", name)

	var idx string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name='idx_kv_store_updated'`).Scan(&idx)
	require.NoError(t, err)
}

func TestMigrate_RevisionColumn(t *testing.T) {
	db := openMigratedDB(t)

	_, err := db.Exec(`INSERT INTO kv_store (key, value, updated_at) VALUES ('k', '{}', '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)

	var rev int
	require.NoError(t, db.QueryRow(`SELECT revision FROM kv_store WHERE key = 'k'`).Scan(&rev))
	assert.Equal(t, 0, rev)
}

func TestOpenDB_CreatesParentDirectory(t *testing.T) {
	path := t.TempDir() + "/nested/dir/hearth.db"
	db, err := OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping())
}
