package database

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestOpenCreatesSchema(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "tax.db"))
	require.NoError(t, err)
	defer db.Close()

	cols, err := columnNames(db, "snapshots")
	require.NoError(t, err)
	for _, name := range []string{"id", "owner", "kind", "tax_year", "jurisdiction", "input_json", "result_json", "etag", "created_at"} {
		assert.True(t, cols[name], name)
	}
}

func TestOpenMigratesOldTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	old, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = old.Exec(`CREATE TABLE snapshots (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		tax_year INTEGER NOT NULL,
		input_json TEXT NOT NULL,
		result_json TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)
	_, err = old.Exec(`INSERT INTO snapshots (id, kind, tax_year, input_json, result_json) VALUES ('a', 'federal', 2024, '{}', '{}')`)
	require.NoError(t, err)
	require.NoError(t, old.Close())

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	cols, err := columnNames(db, "snapshots")
	require.NoError(t, err)
	assert.True(t, cols["jurisdiction"])
	assert.True(t, cols["etag"])

	var jurisdiction string
	require.NoError(t, db.QueryRow(`SELECT jurisdiction FROM snapshots WHERE id = 'a'`).Scan(&jurisdiction))
	assert.Equal(t, "", jurisdiction)
}
