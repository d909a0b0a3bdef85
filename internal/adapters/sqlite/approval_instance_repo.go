package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/example/docroute/internal/ports/secondary"
)

// ApprovalInstanceRepository implements secondary.ApprovalInstanceRepository with SQLite.
type ApprovalInstanceRepository struct {
	db        *sql.DB
	logWriter secondary.LogWriter
}

// NewApprovalInstanceRepository creates a new SQLite approval instance repository.
// logWriter is optional - if nil, no audit logging is performed.
func NewApprovalInstanceRepository(db *sql.DB, logWriter secondary.LogWriter) *ApprovalInstanceRepository {
	return &ApprovalInstanceRepository{db: db, logWriter: logWriter}
}

const instanceColumns = `id, document_id, route_id, route_snapshot, status, current_step_order, attempt, started_at, completed_at`

// Create persists a new approval instance.
func (r *ApprovalInstanceRepository) Create(ctx context.Context, instance *secondary.ApprovalInstanceRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO approval_instances (`+instanceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		instance.ID,
		instance.DocumentID,
		instance.RouteID,
		instance.RouteSnapshot,
		instance.Status,
		instance.CurrentStepOrder,
		instance.Attempt,
		instance.StartedAt.UTC(),
		timeArg(instance.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create approval instance: %w", err)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogCreate(ctx, "approval_instance", instance.ID)
	}

	return nil
}

// GetByID retrieves an approval instance by its ID.
func (r *ApprovalInstanceRepository) GetByID(ctx context.Context, id string) (*secondary.ApprovalInstanceRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+instanceColumns+` FROM approval_instances WHERE id = ?`, id)

	record, err := scanInstance(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("approval instance %s not found: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get approval instance: %w", err)
	}
	return record, nil
}

// GetActiveByDocument returns the in-progress instance of a document, or nil.
func (r *ApprovalInstanceRepository) GetActiveByDocument(ctx context.Context, documentID string) (*secondary.ApprovalInstanceRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+instanceColumns+` FROM approval_instances WHERE document_id = ? AND status = 'in_progress'`, documentID)

	record, err := scanInstance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active approval instance: %w", err)
	}
	return record, nil
}

// GetLatestByDocument returns the attempt with the highest number, or nil.
func (r *ApprovalInstanceRepository) GetLatestByDocument(ctx context.Context, documentID string) (*secondary.ApprovalInstanceRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+instanceColumns+` FROM approval_instances WHERE document_id = ? ORDER BY attempt DESC LIMIT 1`, documentID)

	record, err := scanInstance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest approval instance: %w", err)
	}
	return record, nil
}

// ListByDocument returns every attempt of a document, oldest first.
func (r *ApprovalInstanceRepository) ListByDocument(ctx context.Context, documentID string) ([]*secondary.ApprovalInstanceRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT `+instanceColumns+` FROM approval_instances WHERE document_id = ? ORDER BY attempt`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval instances: %w", err)
	}
	defer rows.Close()

	var instances []*secondary.ApprovalInstanceRecord
	for rows.Next() {
		record, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval instance: %w", err)
		}
		instances = append(instances, record)
	}

	return instances, rows.Err()
}

// Update writes status, current_step_order and completed_at.
// A completed instance is never written again.
func (r *ApprovalInstanceRepository) Update(ctx context.Context, instance *secondary.ApprovalInstanceRecord) error {
	q := conn(ctx, r.db)

	var (
		oldStatus string
		oldOrder  int
	)
	err := q.QueryRowContext(ctx,
		`SELECT status, current_step_order FROM approval_instances WHERE id = ?`, instance.ID,
	).Scan(&oldStatus, &oldOrder)
	if err == sql.ErrNoRows {
		return fmt.Errorf("approval instance %s not found: %w", instance.ID, secondary.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get approval instance: %w", err)
	}

	result, err := q.ExecContext(ctx,
		`UPDATE approval_instances SET status = ?, current_step_order = ?, completed_at = ?
		 WHERE id = ? AND completed_at IS NULL`,
		instance.Status,
		instance.CurrentStepOrder,
		timeArg(instance.CompletedAt),
		instance.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update approval instance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("approval instance %s already completed: %w", instance.ID, secondary.ErrStaleRecord)
	}

	if r.logWriter != nil {
		if oldStatus != instance.Status {
			_ = r.logWriter.LogUpdate(ctx, "approval_instance", instance.ID, "status", oldStatus, instance.Status)
		}
		if oldOrder != instance.CurrentStepOrder {
			_ = r.logWriter.LogUpdate(ctx, "approval_instance", instance.ID, "current_step_order", strconv.Itoa(oldOrder), strconv.Itoa(instance.CurrentStepOrder))
		}
	}

	return nil
}

// GetNextID returns the next available approval instance ID.
func (r *ApprovalInstanceRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, conn(ctx, r.db), "approval_instances", "APPR")
}

func scanInstance(row rowScanner) (*secondary.ApprovalInstanceRecord, error) {
	var (
		startedAt   time.Time
		completedAt sql.NullTime
	)

	record := &secondary.ApprovalInstanceRecord{}
	err := row.Scan(
		&record.ID,
		&record.DocumentID,
		&record.RouteID,
		&record.RouteSnapshot,
		&record.Status,
		&record.CurrentStepOrder,
		&record.Attempt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	record.StartedAt = startedAt.UTC()
	record.CompletedAt = timePtr(completedAt)

	return record, nil
}

// Ensure ApprovalInstanceRepository implements the interface
var _ secondary.ApprovalInstanceRepository = (*ApprovalInstanceRepository)(nil)
