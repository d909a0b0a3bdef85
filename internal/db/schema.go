package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh docroute installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(); if repository code references a column
// that doesn't exist here, tests fail immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Route definitions (named, versioned step templates)
CREATE TABLE IF NOT EXISTS routes (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	version INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS route_steps (
	route_id TEXT NOT NULL,
	step_order INTEGER NOT NULL CHECK(step_order > 0),
	deadline_hours INTEGER CHECK(deadline_hours IS NULL OR deadline_hours > 0),
	PRIMARY KEY (route_id, step_order),
	FOREIGN KEY (route_id) REFERENCES routes(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS route_step_approvers (
	route_id TEXT NOT NULL,
	step_order INTEGER NOT NULL,
	position INTEGER NOT NULL,
	approver_id TEXT NOT NULL,
	PRIMARY KEY (route_id, step_order, approver_id),
	FOREIGN KEY (route_id, step_order) REFERENCES route_steps(route_id, step_order) ON DELETE CASCADE
);

-- Documents (only the approval-relevant fields)
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL CHECK(status IN ('draft', 'pending_approval', 'approved', 'rejected', 'cancelled')) DEFAULT 'draft',
	approval_route_id TEXT,
	version INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (approval_route_id) REFERENCES routes(id)
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);

-- Approval instances (one row per attempt)
CREATE TABLE IF NOT EXISTS approval_instances (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	route_id TEXT NOT NULL,
	route_snapshot TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('in_progress', 'approved', 'rejected')),
	current_step_order INTEGER NOT NULL,
	attempt INTEGER NOT NULL CHECK(attempt >= 1),
	started_at DATETIME NOT NULL,
	completed_at DATETIME,
	FOREIGN KEY (document_id) REFERENCES documents(id),
	FOREIGN KEY (route_id) REFERENCES routes(id),
	UNIQUE(document_id, attempt)
);

-- At most one attempt per document may be in progress.
CREATE UNIQUE INDEX IF NOT EXISTS idx_approval_instances_active
	ON approval_instances(document_id) WHERE status = 'in_progress';

-- Step instances (one row per attempt x step x approver)
CREATE TABLE IF NOT EXISTS approval_step_instances (
	id TEXT PRIMARY KEY,
	instance_id TEXT NOT NULL,
	step_order INTEGER NOT NULL,
	approver_id TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending', 'approved', 'rejected', 'skipped')) DEFAULT 'pending',
	decision_at DATETIME,
	comment TEXT,
	deadline_at DATETIME,
	carry_over INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (instance_id) REFERENCES approval_instances(id),
	UNIQUE(instance_id, step_order, approver_id)
);

CREATE INDEX IF NOT EXISTS idx_step_instances_pending_deadline
	ON approval_step_instances(deadline_at) WHERE status = 'pending';

-- Audit trail of every engine mutation
CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
	actor_id TEXT,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL CHECK(action IN ('create', 'update')),
	field_name TEXT,
	old_value TEXT,
	new_value TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_type, entity_id);
`

// InitSchema brings the database up to date. Fresh databases get SchemaSQL
// directly with every migration marked applied; existing ones run pending
// migrations.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}

	if tableCount > 0 {
		return RunMigrations(database)
	}

	if _, err := database.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := ensureVersionTable(database); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to mark migration %d applied: %w", m.Version, err)
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
