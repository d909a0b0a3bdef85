package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/docroute/internal/adapters/sqlite"
	"github.com/example/docroute/internal/ctxutil"
	"github.com/example/docroute/internal/ports/secondary"
)

func TestLogWriterAdapter_RecordsActorAndFields(t *testing.T) {
	db := setupTestDB(t)
	logRepo := sqlite.NewAuditLogRepository(db)
	writer := sqlite.NewLogWriterAdapter(logRepo)
	docRepo := sqlite.NewDocumentRepository(db, writer)

	ctx := ctxutil.WithActorID(context.Background(), "alice")

	doc := &secondary.DocumentRecord{ID: "DOC-001", Title: "Budget", Status: "draft"}
	if err := docRepo.Create(ctx, doc); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	doc.Status = "cancelled"
	if err := docRepo.Update(ctx, doc); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	logs, err := logRepo.List(context.Background(), secondary.AuditLogFilters{EntityType: "document", EntityID: "DOC-001"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d logs, want 2", len(logs))
	}

	update, create := logs[0], logs[1]
	if create.Action != "create" || create.ActorID != "alice" {
		t.Errorf("create log = %+v", create)
	}
	if update.Action != "update" || update.FieldName != "status" || update.OldValue != "draft" || update.NewValue != "cancelled" {
		t.Errorf("update log = %+v", update)
	}
}

func TestAuditLogRepository_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAuditLogRepository(db)
	ctx := context.Background()

	entries := []*secondary.AuditLogRecord{
		{ID: "1", ActorID: "alice", EntityType: "document", EntityID: "DOC-001", Action: "create"},
		{ID: "2", ActorID: "bob", EntityType: "document", EntityID: "DOC-002", Action: "create"},
		{ID: "3", ActorID: "bob", EntityType: "route", EntityID: "ROUTE-001", Action: "create"},
	}
	for _, e := range entries {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	tests := []struct {
		name    string
		filters secondary.AuditLogFilters
		want    int
	}{
		{"all", secondary.AuditLogFilters{}, 3},
		{"by type", secondary.AuditLogFilters{EntityType: "document"}, 2},
		{"by actor", secondary.AuditLogFilters{ActorID: "bob"}, 2},
		{"by entity", secondary.AuditLogFilters{EntityID: "ROUTE-001"}, 1},
		{"limit", secondary.AuditLogFilters{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs, err := repo.List(ctx, tt.filters)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(logs) != tt.want {
				t.Errorf("got %d logs, want %d", len(logs), tt.want)
			}
		})
	}
}
