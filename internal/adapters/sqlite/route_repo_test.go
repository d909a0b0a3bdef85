package sqlite_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/example/docroute/internal/adapters/sqlite"
	"github.com/example/docroute/internal/ports/secondary"
)

func twoStepRoute() *secondary.RouteRecord {
	return &secondary.RouteRecord{
		ID:   "ROUTE-001",
		Name: "Purchase",
		Steps: []secondary.RouteStepRecord{
			{Order: 1, ApproverIDs: []string{"bob", "alice"}, DeadlineHours: 24},
			{Order: 5, ApproverIDs: []string{"carol"}},
		},
	}
}

func TestRouteRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRouteRepository(db, nil)
	ctx := context.Background()

	if err := repo.Create(ctx, twoStepRoute()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for name, get := range map[string]func() (*secondary.RouteRecord, error){
		"by id":   func() (*secondary.RouteRecord, error) { return repo.GetByID(ctx, "ROUTE-001") },
		"by name": func() (*secondary.RouteRecord, error) { return repo.GetByName(ctx, "Purchase") },
	} {
		t.Run(name, func(t *testing.T) {
			got, err := get()
			if err != nil {
				t.Fatalf("get failed: %v", err)
			}
			if got.Version != 1 {
				t.Errorf("Version = %d, want 1", got.Version)
			}
			if !reflect.DeepEqual(got.Steps, twoStepRoute().Steps) {
				t.Errorf("Steps = %+v, want %+v", got.Steps, twoStepRoute().Steps)
			}
		})
	}
}

func TestRouteRepository_Get_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRouteRepository(db, nil)

	if _, err := repo.GetByID(context.Background(), "ROUTE-404"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("GetByID: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByName(context.Background(), "nope"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("GetByName: expected ErrNotFound, got %v", err)
	}
}

func TestRouteRepository_CreateWithoutSteps(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRouteRepository(db, nil)
	ctx := context.Background()

	if err := repo.Create(ctx, &secondary.RouteRecord{ID: "ROUTE-001", Name: "Empty"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got, err := repo.GetByID(ctx, "ROUTE-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Steps) != 0 {
		t.Errorf("expected no steps, got %+v", got.Steps)
	}
}

func TestRouteRepository_ReplaceSteps(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRouteRepository(db, nil)
	ctx := context.Background()

	if err := repo.Create(ctx, twoStepRoute()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newSteps := []secondary.RouteStepRecord{{Order: 1, ApproverIDs: []string{"dave"}, DeadlineHours: 8}}
	if err := repo.ReplaceSteps(ctx, "ROUTE-001", newSteps); err != nil {
		t.Fatalf("ReplaceSteps failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, "ROUTE-001")
	if got.Version != 2 {
		t.Errorf("Version = %d, want 2", got.Version)
	}
	if !reflect.DeepEqual(got.Steps, newSteps) {
		t.Errorf("Steps = %+v, want %+v", got.Steps, newSteps)
	}

	if err := repo.ReplaceSteps(ctx, "ROUTE-404", newSteps); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRouteRepository_List(t *testing.T) {
	db := setupTestDB(t)
	seedRoute(t, db, "ROUTE-002", "Second", "zoe")
	seedRoute(t, db, "ROUTE-001", "First", "yan")
	repo := sqlite.NewRouteRepository(db, nil)

	routes, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("got %d routes, want 2", len(routes))
	}
	if routes[0].ID != "ROUTE-001" || routes[0].Steps[0].ApproverIDs[0] != "yan" {
		t.Errorf("routes[0] = %+v", routes[0])
	}
	if routes[1].Steps[0].ApproverIDs[0] != "zoe" {
		t.Errorf("routes[1] = %+v", routes[1])
	}
}

func TestRouteRepository_GetNextID(t *testing.T) {
	db := setupTestDB(t)
	seedRoute(t, db, "ROUTE-003", "", "")
	repo := sqlite.NewRouteRepository(db, nil)

	id, err := repo.GetNextID(context.Background())
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "ROUTE-004" {
		t.Errorf("ID = %s, want ROUTE-004", id)
	}
}
