package cli

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/example/docroute/internal/ports/primary"
)

// mockRouteService implements primary.RouteService for testing
type mockRouteService struct {
	routes []*primary.Route

	lastCreateReq primary.CreateRouteRequest
	lastSteps     []primary.RouteStep
	lastPath      string
}

func (m *mockRouteService) CreateRoute(ctx context.Context, req primary.CreateRouteRequest) (*primary.Route, error) {
	m.lastCreateReq = req
	return &primary.Route{ID: "ROUTE-001", Name: req.Name, Version: 1, Steps: req.Steps}, nil
}

func (m *mockRouteService) GetRoute(ctx context.Context, routeID string) (*primary.Route, error) {
	return &primary.Route{
		ID: routeID, Name: "Purchase", Version: 3,
		Steps: []primary.RouteStep{
			{Order: 1, Approvers: []string{"alice", "bob"}, DeadlineHours: 24},
			{Order: 2, Approvers: []string{"carol"}},
		},
	}, nil
}

func (m *mockRouteService) ListRoutes(ctx context.Context) ([]*primary.Route, error) {
	return m.routes, nil
}

func (m *mockRouteService) UpdateRouteSteps(ctx context.Context, routeID string, steps []primary.RouteStep) (*primary.Route, error) {
	m.lastSteps = steps
	return &primary.Route{ID: routeID, Version: 2, Steps: steps}, nil
}

func (m *mockRouteService) ImportRoutes(ctx context.Context, path string) (*primary.ImportRoutesResponse, error) {
	m.lastPath = path
	return &primary.ImportRoutesResponse{
		Created: []*primary.Route{{ID: "ROUTE-002", Name: "Leave", Version: 1}},
		Updated: []*primary.Route{{ID: "ROUTE-001", Name: "Purchase", Version: 4}},
	}, nil
}

func TestParseStepSpecs(t *testing.T) {
	steps, err := ParseStepSpecs([]string{"1:alice, bob:24h", "2:carol"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []primary.RouteStep{
		{Order: 1, Approvers: []string{"alice", "bob"}, DeadlineHours: 24},
		{Order: 2, Approvers: []string{"carol"}},
	}
	if !reflect.DeepEqual(steps, want) {
		t.Errorf("got %+v, want %+v", steps, want)
	}
}

func TestParseStepSpecs_Invalid(t *testing.T) {
	for _, spec := range []string{"alice", "one:alice", "1:alice:soon", "1:a:2:3"} {
		if _, err := ParseStepSpecs([]string{spec}); err == nil {
			t.Errorf("expected error for %q", spec)
		}
	}
}

func TestRouteAdapter_Create(t *testing.T) {
	mock := &mockRouteService{}
	var buf bytes.Buffer
	adapter := NewRouteAdapter(mock, &buf)

	if err := adapter.Create(context.Background(), "Purchase", []string{"1:alice", "2:bob"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mock.lastCreateReq.Steps) != 2 {
		t.Errorf("expected 2 steps, got %d", len(mock.lastCreateReq.Steps))
	}
	if !strings.Contains(buf.String(), "Created route ROUTE-001: Purchase (2 steps)") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}

func TestRouteAdapter_SetSteps(t *testing.T) {
	mock := &mockRouteService{}
	var buf bytes.Buffer
	adapter := NewRouteAdapter(mock, &buf)

	if err := adapter.SetSteps(context.Background(), "ROUTE-001", []string{"1:zed:8"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mock.lastSteps) != 1 || mock.lastSteps[0].DeadlineHours != 8 {
		t.Errorf("unexpected steps %+v", mock.lastSteps)
	}
	if !strings.Contains(buf.String(), "updated to version 2") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}

func TestRouteAdapter_Show(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewRouteAdapter(&mockRouteService{}, &buf)

	if err := adapter.Show(context.Background(), "ROUTE-001"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "1. alice, bob (deadline 24h)") {
		t.Errorf("expected first step line, got '%s'", output)
	}
	if !strings.Contains(output, "2. carol\n") {
		t.Errorf("expected second step line, got '%s'", output)
	}
}

func TestRouteAdapter_List(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewRouteAdapter(&mockRouteService{}, &buf)
	if err := adapter.List(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "No routes found") {
		t.Errorf("expected empty message, got '%s'", buf.String())
	}

	buf.Reset()
	adapter = NewRouteAdapter(&mockRouteService{routes: []*primary.Route{{ID: "ROUTE-007", Name: "Travel", Version: 2}}}, &buf)
	if err := adapter.List(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "ROUTE-007") {
		t.Errorf("expected route row, got '%s'", buf.String())
	}
}

func TestRouteAdapter_Import(t *testing.T) {
	mock := &mockRouteService{}
	var buf bytes.Buffer
	adapter := NewRouteAdapter(mock, &buf)

	if err := adapter.Import(context.Background(), "routes.yaml"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mock.lastPath != "routes.yaml" {
		t.Errorf("expected path to be passed through, got %q", mock.lastPath)
	}
	output := buf.String()
	if !strings.Contains(output, "Created route ROUTE-002: Leave") || !strings.Contains(output, "Updated route ROUTE-001: Purchase (version 4)") {
		t.Errorf("unexpected output '%s'", output)
	}
}
