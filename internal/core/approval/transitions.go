// Package approval contains the pure business logic of the document approval engine.
// This is part of the Functional Core - no I/O, only pure functions. Callers
// pre-fetch every fact a guard or planner needs and pass the current time in.
package approval

import "time"

// DocumentStatus represents the lifecycle states of a document.
type DocumentStatus string

const (
	DocumentDraft           DocumentStatus = "draft"
	DocumentPendingApproval DocumentStatus = "pending_approval"
	DocumentApproved        DocumentStatus = "approved"
	DocumentRejected        DocumentStatus = "rejected"
	DocumentCancelled       DocumentStatus = "cancelled"
)

// InstanceStatus represents the states of one approval attempt.
type InstanceStatus string

const (
	InstanceInProgress InstanceStatus = "in_progress"
	InstanceApproved   InstanceStatus = "approved"
	InstanceRejected   InstanceStatus = "rejected"
)

// StepStatus represents the states of one approver's slot in a step.
type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepApproved StepStatus = "approved"
	StepRejected StepStatus = "rejected"
	// StepSkipped is reserved by the schema. No engine path assigns it, but
	// the resolver treats it as resolved so rows written by other tooling
	// never stall an instance.
	StepSkipped StepStatus = "skipped"
)

// Decision is an approver's verdict.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Valid reports whether d is one of the accepted verdicts.
func (d Decision) Valid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// Resolved reports whether a step instance no longer awaits a decision.
func (s StepStatus) Resolved() bool {
	return s == StepApproved || s == StepSkipped
}

// InitialDocumentStatus returns the status for newly created documents.
func InitialDocumentStatus() DocumentStatus {
	return DocumentDraft
}

// InstanceOutcome captures a terminal transition of an approval instance
// together with the document status it implies.
type InstanceOutcome struct {
	InstanceStatus InstanceStatus
	DocumentStatus DocumentStatus
	CompletedAt    *time.Time
}

// Reject returns the outcome of a rejection decision.
func Reject(now time.Time) InstanceOutcome {
	return InstanceOutcome{
		InstanceStatus: InstanceRejected,
		DocumentStatus: DocumentRejected,
		CompletedAt:    &now,
	}
}

// Complete returns the outcome of an instance whose every step is resolved.
func Complete(now time.Time) InstanceOutcome {
	return InstanceOutcome{
		InstanceStatus: InstanceApproved,
		DocumentStatus: DocumentApproved,
		CompletedAt:    &now,
	}
}

// Cancel returns the outcome of cancelling a document. An in-flight instance
// is closed as rejected; there is no separate cancelled instance status.
func Cancel(now time.Time) InstanceOutcome {
	return InstanceOutcome{
		InstanceStatus: InstanceRejected,
		DocumentStatus: DocumentCancelled,
		CompletedAt:    &now,
	}
}
