package sqlite

import (
	"context"

	"github.com/example/docroute/internal/ctxutil"
	"github.com/example/docroute/internal/idgen"
	"github.com/example/docroute/internal/ports/secondary"
)

// LogWriterAdapter implements secondary.LogWriter using AuditLogRepository.
// Entries are written with the caller's context, so a repository running
// inside a transaction logs inside the same transaction.
type LogWriterAdapter struct {
	logRepo secondary.AuditLogRepository
}

// NewLogWriterAdapter creates a new LogWriterAdapter.
func NewLogWriterAdapter(logRepo secondary.AuditLogRepository) *LogWriterAdapter {
	return &LogWriterAdapter{logRepo: logRepo}
}

// LogCreate logs a create operation for an entity.
func (w *LogWriterAdapter) LogCreate(ctx context.Context, entityType, entityID string) error {
	return w.writeLog(ctx, entityType, entityID, "create", "", "", "")
}

// LogUpdate logs an update operation for an entity field.
func (w *LogWriterAdapter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	return w.writeLog(ctx, entityType, entityID, "update", fieldName, oldValue, newValue)
}

// writeLog writes a log entry with common logic.
func (w *LogWriterAdapter) writeLog(ctx context.Context, entityType, entityID, action, fieldName, oldValue, newValue string) error {
	record := &secondary.AuditLogRecord{
		ID:         idgen.New(),
		ActorID:    ctxutil.ActorFromContext(ctx),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		FieldName:  fieldName,
		OldValue:   oldValue,
		NewValue:   newValue,
	}

	return w.logRepo.Create(ctx, record)
}

// Ensure LogWriterAdapter implements the interface
var _ secondary.LogWriter = (*LogWriterAdapter)(nil)
