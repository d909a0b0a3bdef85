package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/docroute/internal/ports/secondary"
)

// AuditLogRepository implements secondary.AuditLogRepository with SQLite.
type AuditLogRepository struct {
	db *sql.DB
}

// NewAuditLogRepository creates a new SQLite audit log repository.
func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create persists a new audit log entry.
func (r *AuditLogRepository) Create(ctx context.Context, log *secondary.AuditLogRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO audit_logs (id, actor_id, entity_type, entity_id, action, field_name, old_value, new_value) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		nullString(log.ActorID),
		log.EntityType,
		log.EntityID,
		log.Action,
		nullString(log.FieldName),
		nullString(log.OldValue),
		nullString(log.NewValue),
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

// List retrieves audit log entries matching the given filters, newest first.
func (r *AuditLogRepository) List(ctx context.Context, filters secondary.AuditLogFilters) ([]*secondary.AuditLogRecord, error) {
	query := `SELECT id, timestamp, actor_id, entity_type, entity_id, action, field_name, old_value, new_value FROM audit_logs WHERE 1=1`
	args := []any{}

	if filters.EntityType != "" {
		query += " AND entity_type = ?"
		args = append(args, filters.EntityType)
	}

	if filters.EntityID != "" {
		query += " AND entity_id = ?"
		args = append(args, filters.EntityID)
	}

	if filters.ActorID != "" {
		query += " AND actor_id = ?"
		args = append(args, filters.ActorID)
	}

	query += " ORDER BY timestamp DESC, rowid DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*secondary.AuditLogRecord
	for rows.Next() {
		var (
			actorID   sql.NullString
			fieldName sql.NullString
			oldValue  sql.NullString
			newValue  sql.NullString
			timestamp time.Time
		)

		record := &secondary.AuditLogRecord{}
		err := rows.Scan(&record.ID,
			&timestamp,
			&actorID,
			&record.EntityType,
			&record.EntityID,
			&record.Action,
			&fieldName,
			&oldValue,
			&newValue)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		record.Timestamp = timestamp.Format(time.RFC3339)
		record.ActorID = actorID.String
		record.FieldName = fieldName.String
		record.OldValue = oldValue.String
		record.NewValue = newValue.String

		logs = append(logs, record)
	}

	return logs, rows.Err()
}

// Ensure AuditLogRepository implements the interface
var _ secondary.AuditLogRepository = (*AuditLogRepository)(nil)
