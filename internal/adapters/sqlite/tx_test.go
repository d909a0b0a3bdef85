package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/docroute/internal/adapters/sqlite"
	"github.com/example/docroute/internal/ports/secondary"
)

func TestTransactor_CommitAndRollback(t *testing.T) {
	db := setupTestDB(t)
	tx := sqlite.NewTransactor(db)
	docs := sqlite.NewDocumentRepository(db, nil)
	ctx := context.Background()

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		return docs.Create(ctx, &secondary.DocumentRecord{ID: "DOC-001", Title: "kept", Status: "draft"})
	})
	if err != nil {
		t.Fatalf("WithinTx failed: %v", err)
	}

	boom := errors.New("boom")
	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := docs.Create(ctx, &secondary.DocumentRecord{ID: "DOC-002", Title: "dropped", Status: "draft"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := docs.GetByID(ctx, "DOC-001"); err != nil {
		t.Errorf("committed document missing: %v", err)
	}
	if _, err := docs.GetByID(ctx, "DOC-002"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("rolled back document should be absent, got %v", err)
	}
}

func TestTransactor_NestedJoinsOuter(t *testing.T) {
	db := setupTestDB(t)
	tx := sqlite.NewTransactor(db)
	docs := sqlite.NewDocumentRepository(db, nil)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		inner := tx.WithinTx(ctx, func(ctx context.Context) error {
			return docs.Create(ctx, &secondary.DocumentRecord{ID: "DOC-001", Title: "inner", Status: "draft"})
		})
		if inner != nil {
			return inner
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := docs.GetByID(ctx, "DOC-001"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("inner write should roll back with the outer transaction, got %v", err)
	}
}
