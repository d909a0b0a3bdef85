package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DSN builds the go-sqlite3 connection string for path. Transactions take
// the write lock at BEGIN (_txlock=immediate) so two engine operations on
// the same database are serialized instead of failing at commit.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_txlock=immediate&_foreign_keys=on&_busy_timeout=5000", path)
}

// Open opens the database at path, creating its directory if needed, and
// brings the schema up to date.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	database, err := sql.Open("sqlite3", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := InitSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}
