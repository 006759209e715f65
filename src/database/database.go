package database

import (
	"database/sql"
	"fmt"
	stdlog "log"

	"github.com/username/ustax/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

const createTableStatement = `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		tax_year INTEGER NOT NULL,
		jurisdiction TEXT NOT NULL DEFAULT '',
		input_json TEXT NOT NULL,
		result_json TEXT NOT NULL,
		etag TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_owner ON snapshots(owner, created_at);
	`

// InitDB opens the database at databasePath into DB and aborts the process on failure.
func InitDB(databasePath string) {
	db, err := Open(databasePath)
	if err != nil {
		stdlog.Fatalf("failed to initialise database at %s: %v", databasePath, err)
	}
	DB = db
}

// Open opens a SQLite database and ensures the schema exists.
func Open(databasePath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", databasePath, err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	logger.L.Info("Checking database migrations", "databasePath", databasePath)
	migrateSnapshotTable(db)

	if _, err = db.Exec(createTableStatement); err != nil {
		logger.L.Error("failed to create tables", "error", err)
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	logger.L.Info("Database tables ensured/created.")
	return db, nil
}

// migrateSnapshotTable adds columns introduced after the first release to an existing table.
func migrateSnapshotTable(db *sql.DB) {
	var tableName string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='snapshots'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			logger.L.Info("'snapshots' table does not exist, no migration needed as table will be created.")
			return
		}
		logger.L.Error("Error checking for 'snapshots' table", "error", err)
		return
	}

	columns, err := columnNames(db, "snapshots")
	if err != nil {
		logger.L.Error("Error reading table schema for 'snapshots'", "error", err)
		return
	}

	added := []struct{ name, ddl string }{
		{"jurisdiction", "ALTER TABLE snapshots ADD COLUMN jurisdiction TEXT NOT NULL DEFAULT ''"},
		{"etag", "ALTER TABLE snapshots ADD COLUMN etag TEXT"},
	}
	for _, col := range added {
		if columns[col.name] {
			continue
		}
		if _, err := db.Exec(col.ddl); err != nil {
			logger.L.Error("Error adding column to 'snapshots' table", "column", col.name, "error", err)
		} else {
			logger.L.Info("Added column to 'snapshots' table", "column", col.name)
		}
	}
}

func columnNames(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			return nil, err
		}
		columnExists[name] = true
	}
	return columnExists, rows.Err()
}
