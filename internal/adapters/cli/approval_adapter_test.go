package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/docroute/internal/ports/primary"
)

// mockApprovalService implements primary.ApprovalService for testing
type mockApprovalService struct {
	instance *primary.ApprovalInstance
	attempts []*primary.ApprovalInstance
	overdue  []*primary.StepInstance
	err      error

	lastSubmit primary.SubmitRequest
	lastDecide primary.DecideRequest
	lastAsOf   time.Time
}

func (m *mockApprovalService) Submit(ctx context.Context, req primary.SubmitRequest) (*primary.ApprovalInstance, error) {
	m.lastSubmit = req
	return m.instance, m.err
}

func (m *mockApprovalService) Resubmit(ctx context.Context, documentID string) (*primary.ApprovalInstance, error) {
	return m.instance, m.err
}

func (m *mockApprovalService) Decide(ctx context.Context, req primary.DecideRequest) (*primary.ApprovalInstance, error) {
	m.lastDecide = req
	return m.instance, m.err
}

func (m *mockApprovalService) Cancel(ctx context.Context, documentID string) error {
	return m.err
}

func (m *mockApprovalService) GetApprovalSheet(ctx context.Context, instanceID string) (*primary.ApprovalInstance, error) {
	return m.instance, m.err
}

func (m *mockApprovalService) ListAttempts(ctx context.Context, documentID string) ([]*primary.ApprovalInstance, error) {
	return m.attempts, m.err
}

func (m *mockApprovalService) ListOverdueSteps(ctx context.Context, asOf time.Time) ([]*primary.StepInstance, error) {
	m.lastAsOf = asOf
	return m.overdue, m.err
}

func sampleInstance() *primary.ApprovalInstance {
	started := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	deadline := started.Add(24 * time.Hour)
	return &primary.ApprovalInstance{
		ID:               "APPR-002",
		DocumentID:       "DOC-001",
		RouteID:          "ROUTE-001",
		Status:           "in_progress",
		CurrentStepOrder: 1,
		Attempt:          2,
		StartedAt:        started,
		Steps: []*primary.StepInstance{
			{StepOrder: 1, ApproverID: "alice", Status: "approved", DecisionAt: &started, CarryOver: true},
			{StepOrder: 1, ApproverID: "bob", Status: "pending", DeadlineAt: &deadline},
			{StepOrder: 2, ApproverID: "carol", Status: "pending"},
		},
	}
}

func TestApprovalAdapter_Submit(t *testing.T) {
	mock := &mockApprovalService{instance: sampleInstance()}
	var buf bytes.Buffer
	adapter := NewApprovalAdapter(mock, &buf)

	if err := adapter.Submit(context.Background(), "DOC-001", "ROUTE-001"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mock.lastSubmit.RouteID != "ROUTE-001" {
		t.Errorf("expected route to be passed, got %+v", mock.lastSubmit)
	}
	output := buf.String()
	if !strings.Contains(output, "Submitted DOC-001 (attempt 2, APPR-002)") {
		t.Errorf("unexpected output '%s'", output)
	}
	if !strings.Contains(output, "Awaiting step 1: bob") {
		t.Errorf("expected pending approvers, got '%s'", output)
	}
}

func TestApprovalAdapter_Resubmit_CountsCarryOver(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewApprovalAdapter(&mockApprovalService{instance: sampleInstance()}, &buf)

	if err := adapter.Resubmit(context.Background(), "DOC-001"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "1 approvals carried over") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}

func TestApprovalAdapter_Decide(t *testing.T) {
	instance := sampleInstance()
	instance.Status = "rejected"
	mock := &mockApprovalService{instance: instance}
	var buf bytes.Buffer
	adapter := NewApprovalAdapter(mock, &buf)

	if err := adapter.Decide(context.Background(), "DOC-001", "bob", "rejected", "too expensive"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mock.lastDecide.Comment != "too expensive" || mock.lastDecide.ApproverID != "bob" {
		t.Errorf("unexpected request %+v", mock.lastDecide)
	}
	if !strings.Contains(buf.String(), "Document rejected") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}

func TestApprovalAdapter_Decide_ServiceError(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewApprovalAdapter(&mockApprovalService{err: errors.New("not an authorized approver")}, &buf)

	err := adapter.Decide(context.Background(), "DOC-001", "mallory", "approved", "")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got '%s'", buf.String())
	}
}

func TestApprovalAdapter_Sheet(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewApprovalAdapter(&mockApprovalService{instance: sampleInstance()}, &buf)

	if err := adapter.Sheet(context.Background(), "APPR-002"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	output := buf.String()
	for _, want := range []string{"Attempt 2 of DOC-001", "carried over", "carol"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got '%s'", want, output)
		}
	}
}

func TestApprovalAdapter_History_NeverSubmitted(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewApprovalAdapter(&mockApprovalService{}, &buf)

	if err := adapter.History(context.Background(), "DOC-009"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "never been submitted") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}

func TestApprovalAdapter_Overdue(t *testing.T) {
	deadline := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	mock := &mockApprovalService{overdue: []*primary.StepInstance{
		{InstanceID: "APPR-001", StepOrder: 1, ApproverID: "bob", DeadlineAt: &deadline},
	}}
	var buf bytes.Buffer
	adapter := NewApprovalAdapter(mock, &buf)
	asOf := deadline.Add(time.Hour)

	if err := adapter.Overdue(context.Background(), asOf); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !mock.lastAsOf.Equal(asOf) {
		t.Errorf("expected asOf %v, got %v", asOf, mock.lastAsOf)
	}
	if !strings.Contains(buf.String(), "APPR-001") || !strings.Contains(buf.String(), "bob") {
		t.Errorf("unexpected output '%s'", buf.String())
	}
}
