package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var currentSchemaVersion = len(migrations)

// OpenDB opens (creating if needed) the history database and brings its
// schema up to date.
func OpenDB(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating parent directories: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if err := migrateSchema(db, dbPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// migrateSchema applies the migrations above the version recorded in the
// database's user_version pragma.
func migrateSchema(db *sql.DB, dbPath string) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf(
			"history schema version %d is newer than this jarviz supports (max: %d); upgrade jarviz or delete %s to start fresh",
			version, currentSchemaVersion, dbPath,
		)
	}

	for v := version; v < currentSchemaVersion; v++ {
		if err := applyMigration(db, v+1, migrations[v]); err != nil {
			return fmt.Errorf("migration v%d→v%d: %w", v, v+1, err)
		}
	}
	return nil
}

// migrations[i] brings the schema from version i to i+1.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS downloads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			repo TEXT NOT NULL,
			branch TEXT NOT NULL,
			url TEXT,
			path TEXT,
			bytes INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error TEXT,
			at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS capture_sessions (
			session_id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			mode TEXT NOT NULL,
			target_window TEXT,
			events INTEGER NOT NULL DEFAULT 0,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_at ON downloads(at)`,
		`CREATE INDEX IF NOT EXISTS idx_captures_ended ON capture_sessions(ended_at)`,
	},
}

func applyMigration(db *sql.DB, version int, stmts []string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	// PRAGMA does not take bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("recording schema version: %w", err)
	}
	return tx.Commit()
}
