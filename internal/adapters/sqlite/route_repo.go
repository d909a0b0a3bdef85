package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/example/docroute/internal/ports/secondary"
)

// RouteRepository implements secondary.RouteRepository with SQLite.
// Steps live in route_steps and their approvers in route_step_approvers;
// callers that write should run inside a Transactor so the three tables
// change together.
type RouteRepository struct {
	db        *sql.DB
	logWriter secondary.LogWriter
}

// NewRouteRepository creates a new SQLite route repository.
// logWriter is optional - if nil, no audit logging is performed.
func NewRouteRepository(db *sql.DB, logWriter secondary.LogWriter) *RouteRepository {
	return &RouteRepository{db: db, logWriter: logWriter}
}

// Create persists a new route with its steps.
func (r *RouteRepository) Create(ctx context.Context, route *secondary.RouteRecord) error {
	if route.Version == 0 {
		route.Version = 1
	}

	q := conn(ctx, r.db)
	_, err := q.ExecContext(ctx,
		`INSERT INTO routes (id, name, version) VALUES (?, ?, ?)`,
		route.ID, route.Name, route.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create route: %w", err)
	}

	if err := insertSteps(ctx, q, route.ID, route.Steps); err != nil {
		return err
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogCreate(ctx, "route", route.ID)
	}

	return nil
}

// GetByID retrieves a route and its steps by ID.
func (r *RouteRepository) GetByID(ctx context.Context, id string) (*secondary.RouteRecord, error) {
	return r.getOne(ctx, "id", id)
}

// GetByName retrieves a route and its steps by name.
func (r *RouteRepository) GetByName(ctx context.Context, name string) (*secondary.RouteRecord, error) {
	return r.getOne(ctx, "name", name)
}

func (r *RouteRepository) getOne(ctx context.Context, column, value string) (*secondary.RouteRecord, error) {
	q := conn(ctx, r.db)

	var createdAt, updatedAt time.Time
	record := &secondary.RouteRecord{}
	err := q.QueryRowContext(ctx,
		`SELECT id, name, version, created_at, updated_at FROM routes WHERE `+column+` = ?`, value,
	).Scan(&record.ID, &record.Name, &record.Version, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("route %s not found: %w", value, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	steps, err := loadSteps(ctx, q, record.ID)
	if err != nil {
		return nil, err
	}
	record.Steps = steps

	return record, nil
}

// List retrieves all routes with their steps.
func (r *RouteRepository) List(ctx context.Context) ([]*secondary.RouteRecord, error) {
	q := conn(ctx, r.db)

	rows, err := q.QueryContext(ctx, `SELECT id, name, version, created_at, updated_at FROM routes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}

	var routes []*secondary.RouteRecord
	for rows.Next() {
		var createdAt, updatedAt time.Time
		record := &secondary.RouteRecord{}
		if err := rows.Scan(&record.ID, &record.Name, &record.Version, &createdAt, &updatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		record.CreatedAt = createdAt.Format(time.RFC3339)
		record.UpdatedAt = updatedAt.Format(time.RFC3339)
		routes = append(routes, record)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	rows.Close()

	// Steps are loaded after the outer cursor is closed; a transaction holds
	// a single connection.
	for _, route := range routes {
		steps, err := loadSteps(ctx, q, route.ID)
		if err != nil {
			return nil, err
		}
		route.Steps = steps
	}

	return routes, nil
}

// ReplaceSteps swaps the steps of a route and increments its version.
func (r *RouteRepository) ReplaceSteps(ctx context.Context, id string, steps []secondary.RouteStepRecord) error {
	q := conn(ctx, r.db)

	var version int
	err := q.QueryRowContext(ctx, `SELECT version FROM routes WHERE id = ?`, id).Scan(&version)
	if err == sql.ErrNoRows {
		return fmt.Errorf("route %s not found: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get route: %w", err)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM route_step_approvers WHERE route_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear route approvers: %w", err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM route_steps WHERE route_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear route steps: %w", err)
	}
	if err := insertSteps(ctx, q, id, steps); err != nil {
		return err
	}

	_, err = q.ExecContext(ctx,
		`UPDATE routes SET version = version + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to update route version: %w", err)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogUpdate(ctx, "route", id, "version", strconv.Itoa(version), strconv.Itoa(version+1))
	}

	return nil
}

// GetNextID returns the next available route ID.
func (r *RouteRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, conn(ctx, r.db), "routes", "ROUTE")
}

func insertSteps(ctx context.Context, q querier, routeID string, steps []secondary.RouteStepRecord) error {
	for _, step := range steps {
		var deadline sql.NullInt64
		if step.DeadlineHours > 0 {
			deadline = sql.NullInt64{Int64: int64(step.DeadlineHours), Valid: true}
		}
		_, err := q.ExecContext(ctx,
			`INSERT INTO route_steps (route_id, step_order, deadline_hours) VALUES (?, ?, ?)`,
			routeID, step.Order, deadline,
		)
		if err != nil {
			return fmt.Errorf("failed to create route step %d: %w", step.Order, err)
		}

		for pos, approverID := range step.ApproverIDs {
			_, err := q.ExecContext(ctx,
				`INSERT INTO route_step_approvers (route_id, step_order, position, approver_id) VALUES (?, ?, ?, ?)`,
				routeID, step.Order, pos, approverID,
			)
			if err != nil {
				return fmt.Errorf("failed to add approver %s to step %d: %w", approverID, step.Order, err)
			}
		}
	}
	return nil
}

func loadSteps(ctx context.Context, q querier, routeID string) ([]secondary.RouteStepRecord, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT s.step_order, s.deadline_hours, a.approver_id
		 FROM route_steps s
		 LEFT JOIN route_step_approvers a ON a.route_id = s.route_id AND a.step_order = s.step_order
		 WHERE s.route_id = ?
		 ORDER BY s.step_order, a.position`,
		routeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load route steps: %w", err)
	}
	defer rows.Close()

	var steps []secondary.RouteStepRecord
	for rows.Next() {
		var (
			order      int
			deadline   sql.NullInt64
			approverID sql.NullString
		)
		if err := rows.Scan(&order, &deadline, &approverID); err != nil {
			return nil, fmt.Errorf("failed to scan route step: %w", err)
		}

		if len(steps) == 0 || steps[len(steps)-1].Order != order {
			steps = append(steps, secondary.RouteStepRecord{
				Order:         order,
				DeadlineHours: int(deadline.Int64),
			})
		}
		if approverID.Valid {
			last := &steps[len(steps)-1]
			last.ApproverIDs = append(last.ApproverIDs, approverID.String)
		}
	}

	return steps, rows.Err()
}

// Ensure RouteRepository implements the interface
var _ secondary.RouteRepository = (*RouteRepository)(nil)
