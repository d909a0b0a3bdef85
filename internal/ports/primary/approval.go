package primary

import (
	"context"
	"time"
)

// ApprovalService defines the primary port for the document approval engine.
// Every mutating operation commits atomically or not at all.
type ApprovalService interface {
	// Submit starts a fresh approval attempt for a draft or rejected document.
	Submit(ctx context.Context, req SubmitRequest) (*ApprovalInstance, error)

	// Resubmit starts a new attempt for a rejected document, carrying over
	// approvals from the previous attempt.
	Resubmit(ctx context.Context, documentID string) (*ApprovalInstance, error)

	// Decide records an approver's decision on the current step.
	Decide(ctx context.Context, req DecideRequest) (*ApprovalInstance, error)

	// Cancel cancels a document, closing any in-flight attempt.
	Cancel(ctx context.Context, documentID string) error

	// GetApprovalSheet returns an attempt with its step instances.
	GetApprovalSheet(ctx context.Context, instanceID string) (*ApprovalInstance, error)

	// ListAttempts returns every attempt of a document, oldest first.
	ListAttempts(ctx context.Context, documentID string) ([]*ApprovalInstance, error)

	// ListOverdueSteps returns pending step instances whose deadline passed.
	ListOverdueSteps(ctx context.Context, asOf time.Time) ([]*StepInstance, error)
}

// SubmitRequest contains parameters for submitting a document.
type SubmitRequest struct {
	DocumentID string
	RouteID    string // Optional - falls back to the document's bound route
}

// DecideRequest contains parameters for recording a decision.
type DecideRequest struct {
	DocumentID string
	ApproverID string
	Decision   string // approved, rejected
	Comment    string
}

// ApprovalInstance is the public view of one approval attempt.
type ApprovalInstance struct {
	ID               string          `json:"id"`
	DocumentID       string          `json:"document_id"`
	RouteID          string          `json:"route_id"`
	Status           string          `json:"status"`
	CurrentStepOrder int             `json:"current_step_order"`
	Attempt          int             `json:"attempt"`
	StartedAt        time.Time       `json:"started_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	Snapshot         []RouteStep     `json:"route_snapshot"`
	Steps            []*StepInstance `json:"steps,omitempty"`
}

// StepInstance is the public view of one approver slot.
type StepInstance struct {
	ID         string     `json:"id"`
	InstanceID string     `json:"instance_id"`
	StepOrder  int        `json:"step_order"`
	ApproverID string     `json:"approver_id"`
	Status     string     `json:"status"`
	DecisionAt *time.Time `json:"decision_at,omitempty"`
	Comment    string     `json:"comment,omitempty"`
	DeadlineAt *time.Time `json:"deadline_at,omitempty"`
	CarryOver  bool       `json:"carry_over"`
}
