// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/docroute/internal/ports/secondary"
)

type txKey struct{}

// querier is the subset of *sql.DB and *sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the transaction carried by ctx, or db when there is none.
func conn(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// Transactor implements secondary.Transactor with database/sql transactions.
type Transactor struct {
	db *sql.DB
}

// NewTransactor creates a new SQLite transactor.
func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise. A ctx that already carries a
// transaction is passed through unchanged.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// nextID computes the next sequential "<PREFIX>-NNN" identifier in table.
func nextID(ctx context.Context, q querier, table, prefix string) (string, error) {
	var maxID int
	prefixLen := len(prefix) + 2
	err := q.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM %s", prefixLen, table),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next %s ID: %w", table, err)
	}
	return fmt.Sprintf("%s-%03d", prefix, maxID+1), nil
}

// nullString maps the empty string to NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// timeArg binds an optional time as UTC, or NULL when nil.
func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// timePtr converts a scanned nullable time.
func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

// Ensure Transactor implements the interface
var _ secondary.Transactor = (*Transactor)(nil)
