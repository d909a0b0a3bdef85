package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/example/docroute/internal/ports/primary"
)

// ApprovalAdapter translates CLI operations to ApprovalService calls.
type ApprovalAdapter struct {
	service primary.ApprovalService
	out     io.Writer
}

// NewApprovalAdapter creates a new ApprovalAdapter with the given service.
func NewApprovalAdapter(service primary.ApprovalService, out io.Writer) *ApprovalAdapter {
	return &ApprovalAdapter{
		service: service,
		out:     out,
	}
}

// Submit submits a document for approval.
func (a *ApprovalAdapter) Submit(ctx context.Context, documentID, routeID string) error {
	instance, err := a.service.Submit(ctx, primary.SubmitRequest{DocumentID: documentID, RouteID: routeID})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Submitted %s (attempt %d, %s)\n", documentID, instance.Attempt, instance.ID)
	fmt.Fprintf(a.out, "  Awaiting step %d: %s\n", instance.CurrentStepOrder, pendingAt(instance))
	return nil
}

// Resubmit resubmits a rejected document, carrying over earlier approvals.
func (a *ApprovalAdapter) Resubmit(ctx context.Context, documentID string) error {
	instance, err := a.service.Resubmit(ctx, documentID)
	if err != nil {
		return err
	}

	carried := 0
	for _, s := range instance.Steps {
		if s.CarryOver {
			carried++
		}
	}

	fmt.Fprintf(a.out, "✓ Resubmitted %s (attempt %d, %s), %d approvals carried over\n", documentID, instance.Attempt, instance.ID, carried)
	if instance.Status == "approved" {
		fmt.Fprintf(a.out, "  Document %s approved\n", colorStatus("approved", 0))
		return nil
	}
	fmt.Fprintf(a.out, "  Awaiting step %d: %s\n", instance.CurrentStepOrder, pendingAt(instance))
	return nil
}

// Decide records a decision for approverID.
func (a *ApprovalAdapter) Decide(ctx context.Context, documentID, approverID, decision, comment string) error {
	instance, err := a.service.Decide(ctx, primary.DecideRequest{
		DocumentID: documentID,
		ApproverID: approverID,
		Decision:   decision,
		Comment:    comment,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ %s %s %s\n", approverID, colorStatus(decision, 0), documentID)
	switch instance.Status {
	case "approved", "rejected":
		fmt.Fprintf(a.out, "  Document %s\n", colorStatus(instance.Status, 0))
	default:
		fmt.Fprintf(a.out, "  Awaiting step %d: %s\n", instance.CurrentStepOrder, pendingAt(instance))
	}
	return nil
}

// Cancel cancels a document.
func (a *ApprovalAdapter) Cancel(ctx context.Context, documentID string) error {
	if err := a.service.Cancel(ctx, documentID); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Document %s cancelled\n", documentID)
	return nil
}

// Sheet prints one attempt with every step instance.
func (a *ApprovalAdapter) Sheet(ctx context.Context, instanceID string) error {
	instance, err := a.service.GetApprovalSheet(ctx, instanceID)
	if err != nil {
		return fmt.Errorf("failed to get approval sheet: %w", err)
	}
	a.printSheet(instance)
	return nil
}

// History prints every attempt of a document, oldest first.
func (a *ApprovalAdapter) History(ctx context.Context, documentID string) error {
	attempts, err := a.service.ListAttempts(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to list attempts: %w", err)
	}

	if len(attempts) == 0 {
		fmt.Fprintf(a.out, "Document %s has never been submitted\n", documentID)
		return nil
	}
	for _, instance := range attempts {
		a.printSheet(instance)
	}
	return nil
}

// Overdue lists pending steps whose deadline is before asOf.
func (a *ApprovalAdapter) Overdue(ctx context.Context, asOf time.Time) error {
	steps, err := a.service.ListOverdueSteps(ctx, asOf)
	if err != nil {
		return fmt.Errorf("failed to list overdue steps: %w", err)
	}

	if len(steps) == 0 {
		fmt.Fprintln(a.out, "No overdue steps")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INSTANCE\tSTEP\tAPPROVER\tDEADLINE")
	for _, s := range steps {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", s.InstanceID, s.StepOrder, s.ApproverID, formatTime(s.DeadlineAt))
	}
	return w.Flush()
}

func (a *ApprovalAdapter) printSheet(instance *primary.ApprovalInstance) {
	fmt.Fprintf(a.out, "\nAttempt %d of %s (%s)\n", instance.Attempt, instance.DocumentID, instance.ID)
	fmt.Fprintf(a.out, "Route:   %s\n", instance.RouteID)
	fmt.Fprintf(a.out, "Status:  %s\n", colorStatus(instance.Status, 0))
	fmt.Fprintf(a.out, "Step:    %d\n", instance.CurrentStepOrder)
	fmt.Fprintf(a.out, "Started: %s\n", formatTime(&instance.StartedAt))
	if instance.CompletedAt != nil {
		fmt.Fprintf(a.out, "Completed: %s\n", formatTime(instance.CompletedAt))
	}
	fmt.Fprintln(a.out)

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tAPPROVER\tSTATUS\tDECIDED\tDEADLINE\tNOTE")
	for _, s := range instance.Steps {
		note := s.Comment
		if s.CarryOver {
			note = "carried over"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", s.StepOrder, s.ApproverID, s.Status, formatTime(s.DecisionAt), formatTime(s.DeadlineAt), note)
	}
	w.Flush()
	fmt.Fprintln(a.out)
}

// pendingAt lists the approvers still pending at the current step.
func pendingAt(instance *primary.ApprovalInstance) string {
	var ids []string
	for _, s := range instance.Steps {
		if s.StepOrder == instance.CurrentStepOrder && s.Status == "pending" {
			ids = append(ids, s.ApproverID)
		}
	}
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
