package db

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/billmal071/olsearch/internal/config"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("not found")

var database *sql.DB

const schema = `
CREATE TABLE IF NOT EXISTS search_cache (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    cache_key       TEXT UNIQUE NOT NULL,
    query           TEXT NOT NULL,
    filters         TEXT,
    results_json    TEXT NOT NULL,
    result_count    INTEGER DEFAULT 0,
    created_at      DATETIME DEFAULT CURRENT_TIMESTAMP,
    expires_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_search_cache_expires ON search_cache(expires_at);

CREATE TABLE IF NOT EXISTS search_history (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    query           TEXT NOT NULL,
    result_count    INTEGER DEFAULT 0,
    filters         TEXT,
    created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_search_history_query ON search_history(query);

CREATE TABLE IF NOT EXISTS saved_books (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    work_key            TEXT UNIQUE NOT NULL,
    title               TEXT NOT NULL,
    authors             TEXT,
    first_publish_year  INTEGER,
    languages           TEXT,
    notes               TEXT,
    created_at          DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Init opens the database at the configured path
func Init() error {
	return Open(config.GetDBPath())
}

// Open opens (creating if needed) the database at path and applies the schema
func Open(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}

	// One writer; avoids SQLITE_BUSY between the cache and history writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return err
	}

	database = db
	return nil
}

// DB returns the database connection
func DB() *sql.DB {
	return database
}

// Close closes the database connection
func Close() error {
	if database != nil {
		err := database.Close()
		database = nil
		return err
	}
	return nil
}
