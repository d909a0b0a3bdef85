// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Instead, use
// setupTestDB() and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/docroute/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// The pool is pinned to one connection: every ":memory:" connection is its
// own database, and transactions must see what the test seeded.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedRoute inserts a route with a single step approved by approverID.
func seedRoute(t *testing.T, db *sql.DB, id, name, approverID string) string {
	t.Helper()
	if id == "" {
		id = "ROUTE-001"
	}
	if name == "" {
		name = "Default Route"
	}
	if approverID == "" {
		approverID = "alice"
	}
	mustExec(t, db, "INSERT INTO routes (id, name) VALUES (?, ?)", id, name)
	mustExec(t, db, "INSERT INTO route_steps (route_id, step_order) VALUES (?, 1)", id)
	mustExec(t, db, "INSERT INTO route_step_approvers (route_id, step_order, position, approver_id) VALUES (?, 1, 0, ?)", id, approverID)
	return id
}

// seedDocument inserts a document with the given status and returns its ID.
func seedDocument(t *testing.T, db *sql.DB, id, status, routeID string) string {
	t.Helper()
	if id == "" {
		id = "DOC-001"
	}
	if status == "" {
		status = "draft"
	}
	var route any
	if routeID != "" {
		route = routeID
	}
	mustExec(t, db, "INSERT INTO documents (id, title, status, approval_route_id) VALUES (?, 'Test Document', ?, ?)", id, status, route)
	return id
}

// seedInstance inserts an approval instance and returns its ID.
func seedInstance(t *testing.T, db *sql.DB, id, documentID, routeID, status string, attempt int) string {
	t.Helper()
	mustExec(t, db,
		`INSERT INTO approval_instances (id, document_id, route_id, route_snapshot, status, current_step_order, attempt, started_at)
		 VALUES (?, ?, ?, '{"steps":[]}', ?, 1, ?, CURRENT_TIMESTAMP)`,
		id, documentID, routeID, status, attempt)
	return id
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("failed to exec %q: %v", query, err)
	}
}
