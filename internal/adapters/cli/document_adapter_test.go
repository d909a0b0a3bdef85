package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/docroute/internal/ports/primary"
)

// mockDocumentService implements primary.DocumentService for testing
type mockDocumentService struct {
	createDocumentFn func(ctx context.Context, req primary.CreateDocumentRequest) (*primary.Document, error)
	getDocumentFn    func(ctx context.Context, documentID string) (*primary.Document, error)
	listDocumentsFn  func(ctx context.Context, filters primary.DocumentFilters) ([]*primary.Document, error)
	bindRouteFn      func(ctx context.Context, documentID, routeID string) error

	// Track calls for verification
	lastCreateReq primary.CreateDocumentRequest
	lastFilters   primary.DocumentFilters
}

func (m *mockDocumentService) CreateDocument(ctx context.Context, req primary.CreateDocumentRequest) (*primary.Document, error) {
	m.lastCreateReq = req
	if m.createDocumentFn != nil {
		return m.createDocumentFn(ctx, req)
	}
	return &primary.Document{ID: "DOC-001", Title: req.Title, Status: "draft"}, nil
}

func (m *mockDocumentService) GetDocument(ctx context.Context, documentID string) (*primary.Document, error) {
	if m.getDocumentFn != nil {
		return m.getDocumentFn(ctx, documentID)
	}
	return &primary.Document{ID: documentID, Title: "Test Document", Status: "draft"}, nil
}

func (m *mockDocumentService) ListDocuments(ctx context.Context, filters primary.DocumentFilters) ([]*primary.Document, error) {
	m.lastFilters = filters
	if m.listDocumentsFn != nil {
		return m.listDocumentsFn(ctx, filters)
	}
	return []*primary.Document{}, nil
}

func (m *mockDocumentService) BindRoute(ctx context.Context, documentID, routeID string) error {
	if m.bindRouteFn != nil {
		return m.bindRouteFn(ctx, documentID, routeID)
	}
	return nil
}

func TestDocumentAdapter_Create_Success(t *testing.T) {
	mock := &mockDocumentService{}
	var buf bytes.Buffer
	adapter := NewDocumentAdapter(mock, &buf)

	err := adapter.Create(context.Background(), "Laptop", "For the new hire", "ROUTE-001")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mock.lastCreateReq.RouteID != "ROUTE-001" {
		t.Errorf("expected route 'ROUTE-001', got '%s'", mock.lastCreateReq.RouteID)
	}
	if !strings.Contains(buf.String(), "Created document DOC-001: Laptop") {
		t.Errorf("expected creation line, got '%s'", buf.String())
	}
}

func TestDocumentAdapter_Create_ServiceError(t *testing.T) {
	mock := &mockDocumentService{
		createDocumentFn: func(ctx context.Context, req primary.CreateDocumentRequest) (*primary.Document, error) {
			return nil, errors.New("invalid input: document title is required")
		},
	}
	var buf bytes.Buffer
	adapter := NewDocumentAdapter(mock, &buf)

	err := adapter.Create(context.Background(), "", "", "")

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output on error, got '%s'", buf.String())
	}
}

func TestDocumentAdapter_List_WithResults(t *testing.T) {
	mock := &mockDocumentService{
		listDocumentsFn: func(ctx context.Context, filters primary.DocumentFilters) ([]*primary.Document, error) {
			return []*primary.Document{
				{ID: "DOC-001", Title: "First", Status: "draft"},
				{ID: "DOC-002", Title: "Second", Status: "pending_approval", ApprovalRouteID: "ROUTE-001"},
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewDocumentAdapter(mock, &buf)

	err := adapter.List(context.Background(), "draft", 5)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mock.lastFilters.Status != "draft" || mock.lastFilters.Limit != 5 {
		t.Errorf("filters not passed through: %+v", mock.lastFilters)
	}
	output := buf.String()
	for _, want := range []string{"DOC-001", "DOC-002", "ROUTE-001", "pending_approval"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got '%s'", want, output)
		}
	}
}

func TestDocumentAdapter_List_Empty(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewDocumentAdapter(&mockDocumentService{}, &buf)

	if err := adapter.List(context.Background(), "", 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "No documents found") {
		t.Errorf("expected empty message, got '%s'", buf.String())
	}
}

func TestDocumentAdapter_Show_NotFound(t *testing.T) {
	mock := &mockDocumentService{
		getDocumentFn: func(ctx context.Context, documentID string) (*primary.Document, error) {
			return nil, errors.New("document not found: DOC-404")
		},
	}
	var buf bytes.Buffer
	adapter := NewDocumentAdapter(mock, &buf)

	_, err := adapter.Show(context.Background(), "DOC-404")

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to get document") {
		t.Errorf("expected wrapped error, got '%s'", err.Error())
	}
}

func TestDocumentAdapter_BindRoute(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewDocumentAdapter(&mockDocumentService{}, &buf)

	if err := adapter.BindRoute(context.Background(), "DOC-001", "ROUTE-002"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "Document DOC-001 bound to route ROUTE-002") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}
