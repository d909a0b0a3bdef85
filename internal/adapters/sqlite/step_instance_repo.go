package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/docroute/internal/ports/secondary"
)

// StepInstanceRepository implements secondary.StepInstanceRepository with SQLite.
type StepInstanceRepository struct {
	db        *sql.DB
	logWriter secondary.LogWriter
}

// NewStepInstanceRepository creates a new SQLite step instance repository.
// logWriter is optional - if nil, no audit logging is performed.
func NewStepInstanceRepository(db *sql.DB, logWriter secondary.LogWriter) *StepInstanceRepository {
	return &StepInstanceRepository{db: db, logWriter: logWriter}
}

const stepColumns = `id, instance_id, step_order, approver_id, status, decision_at, comment, deadline_at, carry_over`

// CreateBatch persists the step instances of a new attempt.
func (r *StepInstanceRepository) CreateBatch(ctx context.Context, steps []*secondary.StepInstanceRecord) error {
	q := conn(ctx, r.db)
	for _, step := range steps {
		_, err := q.ExecContext(ctx,
			`INSERT INTO approval_step_instances (`+stepColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			step.ID,
			step.InstanceID,
			step.StepOrder,
			step.ApproverID,
			step.Status,
			timeArg(step.DecisionAt),
			nullString(step.Comment),
			timeArg(step.DeadlineAt),
			step.CarryOver,
		)
		if err != nil {
			return fmt.Errorf("failed to create step instance for %s at step %d: %w", step.ApproverID, step.StepOrder, err)
		}
	}
	return nil
}

// ListByInstance returns the step instances of an attempt in step order,
// then creation order.
func (r *StepInstanceRepository) ListByInstance(ctx context.Context, instanceID string) ([]*secondary.StepInstanceRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT `+stepColumns+` FROM approval_step_instances WHERE instance_id = ? ORDER BY step_order, rowid`, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list step instances: %w", err)
	}
	defer rows.Close()

	return scanSteps(rows)
}

// RecordDecision sets status, decision_at and comment on a pending step instance.
func (r *StepInstanceRepository) RecordDecision(ctx context.Context, step *secondary.StepInstanceRecord) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE approval_step_instances SET status = ?, decision_at = ?, comment = ?
		 WHERE id = ? AND status = 'pending'`,
		step.Status,
		timeArg(step.DecisionAt),
		nullString(step.Comment),
		step.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("step instance %s is no longer pending: %w", step.ID, secondary.ErrStaleRecord)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogUpdate(ctx, "step_instance", step.ID, "status", "pending", step.Status)
	}

	return nil
}

// SetDeadline sets deadline_at on every pending step instance at order.
func (r *StepInstanceRepository) SetDeadline(ctx context.Context, instanceID string, order int, deadline *time.Time) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE approval_step_instances SET deadline_at = ?
		 WHERE instance_id = ? AND step_order = ? AND status = 'pending'`,
		timeArg(deadline), instanceID, order,
	)
	if err != nil {
		return fmt.Errorf("failed to set step deadline: %w", err)
	}
	return nil
}

// ListOverdue returns pending step instances of in-progress attempts whose
// deadline is before asOf, earliest deadline first.
func (r *StepInstanceRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*secondary.StepInstanceRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT s.id, s.instance_id, s.step_order, s.approver_id, s.status, s.decision_at, s.comment, s.deadline_at, s.carry_over
		 FROM approval_step_instances s
		 JOIN approval_instances i ON i.id = s.instance_id
		 WHERE i.status = 'in_progress'
		   AND s.status = 'pending'
		   AND s.step_order = i.current_step_order
		   AND s.deadline_at IS NOT NULL
		   AND s.deadline_at < ?
		 ORDER BY s.deadline_at, s.rowid`,
		asOf.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue step instances: %w", err)
	}
	defer rows.Close()

	return scanSteps(rows)
}

func scanSteps(rows *sql.Rows) ([]*secondary.StepInstanceRecord, error) {
	var steps []*secondary.StepInstanceRecord
	for rows.Next() {
		var (
			decisionAt sql.NullTime
			deadlineAt sql.NullTime
			comment    sql.NullString
		)

		record := &secondary.StepInstanceRecord{}
		err := rows.Scan(
			&record.ID,
			&record.InstanceID,
			&record.StepOrder,
			&record.ApproverID,
			&record.Status,
			&decisionAt,
			&comment,
			&deadlineAt,
			&record.CarryOver,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step instance: %w", err)
		}
		record.DecisionAt = timePtr(decisionAt)
		record.DeadlineAt = timePtr(deadlineAt)
		record.Comment = comment.String
		steps = append(steps, record)
	}

	return steps, rows.Err()
}

// Ensure StepInstanceRepository implements the interface
var _ secondary.StepInstanceRepository = (*StepInstanceRepository)(nil)
