package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/docroute/internal/ports/secondary"
)

// DocumentRepository implements secondary.DocumentRepository with SQLite.
type DocumentRepository struct {
	db        *sql.DB
	logWriter secondary.LogWriter
}

// NewDocumentRepository creates a new SQLite document repository.
// logWriter is optional - if nil, no audit logging is performed.
func NewDocumentRepository(db *sql.DB, logWriter secondary.LogWriter) *DocumentRepository {
	return &DocumentRepository{db: db, logWriter: logWriter}
}

const documentColumns = `id, title, description, status, approval_route_id, version, created_at, updated_at`

// Create persists a new document.
func (r *DocumentRepository) Create(ctx context.Context, doc *secondary.DocumentRecord) error {
	if doc.Version == 0 {
		doc.Version = 1
	}

	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO documents (id, title, description, status, approval_route_id, version) VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID,
		doc.Title,
		nullString(doc.Description),
		doc.Status,
		nullString(doc.ApprovalRouteID),
		doc.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	if r.logWriter != nil {
		_ = r.logWriter.LogCreate(ctx, "document", doc.ID)
	}

	return nil
}

// GetByID retrieves a document by its ID.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*secondary.DocumentRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)

	record, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document %s not found: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return record, nil
}

// List retrieves documents matching the given filters.
func (r *DocumentRepository) List(ctx context.Context, filters secondary.DocumentFilters) ([]*secondary.DocumentRecord, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE 1=1`
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY id"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*secondary.DocumentRecord
	for rows.Next() {
		record, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, record)
	}

	return docs, rows.Err()
}

// Update writes status and approval_route_id guarded by the version the
// caller read. On success doc.Version holds the new version.
func (r *DocumentRepository) Update(ctx context.Context, doc *secondary.DocumentRecord) error {
	q := conn(ctx, r.db)

	var oldStatus, oldRoute sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT status, approval_route_id FROM documents WHERE id = ?`, doc.ID,
	).Scan(&oldStatus, &oldRoute)
	if err == sql.ErrNoRows {
		return fmt.Errorf("document %s not found: %w", doc.ID, secondary.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	result, err := q.ExecContext(ctx,
		`UPDATE documents SET status = ?, approval_route_id = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND version = ?`,
		doc.Status,
		nullString(doc.ApprovalRouteID),
		doc.ID,
		doc.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document %s at version %d: %w", doc.ID, doc.Version, secondary.ErrStaleRecord)
	}
	doc.Version++

	if r.logWriter != nil {
		if oldStatus.String != doc.Status {
			_ = r.logWriter.LogUpdate(ctx, "document", doc.ID, "status", oldStatus.String, doc.Status)
		}
		if oldRoute.String != doc.ApprovalRouteID {
			_ = r.logWriter.LogUpdate(ctx, "document", doc.ID, "approval_route_id", oldRoute.String, doc.ApprovalRouteID)
		}
	}

	return nil
}

// GetNextID returns the next available document ID.
func (r *DocumentRepository) GetNextID(ctx context.Context) (string, error) {
	return nextID(ctx, conn(ctx, r.db), "documents", "DOC")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*secondary.DocumentRecord, error) {
	var (
		description sql.NullString
		routeID     sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
	)

	record := &secondary.DocumentRecord{}
	err := row.Scan(&record.ID, &record.Title, &description, &record.Status, &routeID, &record.Version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	record.Description = description.String
	record.ApprovalRouteID = routeID.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

// Ensure DocumentRepository implements the interface
var _ secondary.DocumentRepository = (*DocumentRepository)(nil)
