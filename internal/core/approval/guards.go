package approval

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Kind    error // one of the Err* kinds when not allowed
}

// Error converts the guard result to an error if not allowed.
// The returned error wraps Kind.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	if r.Kind == nil {
		return fmt.Errorf("%s", r.Reason)
	}
	return fmt.Errorf("%w: %s", r.Kind, r.Reason)
}

func deny(kind error, format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...), Kind: kind}
}

// SubmitContext provides context for submit and resubmit guards.
type SubmitContext struct {
	DocumentID  string
	Status      DocumentStatus
	RouteID     string // resolved route, empty if none
	RouteExists bool   // only checked if RouteID != ""
	StepCount   int    // only checked if RouteExists
}

// DecideContext provides context for decision guards.
type DecideContext struct {
	DocumentID        string
	Status            DocumentStatus
	Decision          Decision
	HasActiveInstance bool
	ApproverID        string
	CurrentOrder      int
	ApproverPending   bool // approver has a pending slot at CurrentOrder
}

// StatusContext provides context for guards that only depend on document status.
type StatusContext struct {
	DocumentID string
	Status     DocumentStatus
}

// CanSubmit evaluates whether a document can be submitted for approval.
// Rules:
// - Status must be "draft" or "rejected"
// - A route must be resolvable, exist, and have at least one step
func CanSubmit(ctx SubmitContext) GuardResult {
	if ctx.Status != DocumentDraft && ctx.Status != DocumentRejected {
		return deny(ErrInvalidState, "can only submit draft or rejected documents (document %s status: %s)", ctx.DocumentID, ctx.Status)
	}
	return checkRoute(ctx)
}

// CanResubmit evaluates whether a rejected document can be resubmitted.
// Rules:
// - Status must be "rejected"
// - The bound route must exist and have at least one step
func CanResubmit(ctx SubmitContext) GuardResult {
	if ctx.Status != DocumentRejected {
		return deny(ErrInvalidState, "can only resubmit rejected documents (document %s status: %s)", ctx.DocumentID, ctx.Status)
	}
	return checkRoute(ctx)
}

func checkRoute(ctx SubmitContext) GuardResult {
	if ctx.RouteID == "" {
		return deny(ErrMissingRoute, "document %s has no approval route; pass --route or bind one first", ctx.DocumentID)
	}
	if !ctx.RouteExists {
		return deny(ErrRouteNotFound, "route %s not found", ctx.RouteID)
	}
	if ctx.StepCount == 0 {
		return deny(ErrEmptyRoute, "route %s has no steps", ctx.RouteID)
	}
	return GuardResult{Allowed: true}
}

// CanDecide evaluates whether an approver may record a decision.
// Rules:
// - Status must be "pending_approval"
// - Decision must be "approved" or "rejected"
// - An in-progress instance must exist
// - The approver must hold a pending slot at the current step
func CanDecide(ctx DecideContext) GuardResult {
	if ctx.Status != DocumentPendingApproval {
		return deny(ErrInvalidState, "can only decide on documents pending approval (document %s status: %s)", ctx.DocumentID, ctx.Status)
	}
	if !ctx.Decision.Valid() {
		return deny(ErrInvalidDecision, "decision must be approved or rejected (got %q)", ctx.Decision)
	}
	if !ctx.HasActiveInstance {
		return deny(ErrNoActiveInstance, "document %s has no approval in progress", ctx.DocumentID)
	}
	if !ctx.ApproverPending {
		return deny(ErrNotAuthorizedApprover, "%s has no pending approval at step %d of document %s", ctx.ApproverID, ctx.CurrentOrder, ctx.DocumentID)
	}
	return GuardResult{Allowed: true}
}

// CanCancel evaluates whether a document can be cancelled.
// Rules:
// - Status must not be "cancelled" or "approved"
func CanCancel(ctx StatusContext) GuardResult {
	if ctx.Status == DocumentCancelled || ctx.Status == DocumentApproved {
		return deny(ErrInvalidState, "cannot cancel %s document %s", ctx.Status, ctx.DocumentID)
	}
	return GuardResult{Allowed: true}
}

// CanBindRoute evaluates whether a document's route may be changed outside
// of a submission.
// Rules:
// - Status must be "draft" or "rejected"
func CanBindRoute(ctx StatusContext) GuardResult {
	if ctx.Status != DocumentDraft && ctx.Status != DocumentRejected {
		return deny(ErrInvalidState, "can only bind a route to draft or rejected documents (document %s status: %s)", ctx.DocumentID, ctx.Status)
	}
	return GuardResult{Allowed: true}
}
