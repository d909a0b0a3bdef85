package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/docroute/internal/clock"
	coreapproval "github.com/example/docroute/internal/core/approval"
	"github.com/example/docroute/internal/ctxutil"
	"github.com/example/docroute/internal/idgen"
	"github.com/example/docroute/internal/ports/primary"
	"github.com/example/docroute/internal/ports/secondary"
)

// ApprovalServiceImpl implements the ApprovalService interface.
// Each mutating operation reads and writes inside one transaction and ends
// with a version-guarded document update, so two writers racing on the same
// document cannot both commit.
type ApprovalServiceImpl struct {
	tx           secondary.Transactor
	documentRepo secondary.DocumentRepository
	routeRepo    secondary.RouteRepository
	instanceRepo secondary.ApprovalInstanceRepository
	stepRepo     secondary.StepInstanceRepository
	logger       *slog.Logger
}

// NewApprovalService creates a new ApprovalService with injected dependencies.
func NewApprovalService(
	tx secondary.Transactor,
	documentRepo secondary.DocumentRepository,
	routeRepo secondary.RouteRepository,
	instanceRepo secondary.ApprovalInstanceRepository,
	stepRepo secondary.StepInstanceRepository,
	logger *slog.Logger,
) *ApprovalServiceImpl {
	return &ApprovalServiceImpl{
		tx:           tx,
		documentRepo: documentRepo,
		routeRepo:    routeRepo,
		instanceRepo: instanceRepo,
		stepRepo:     stepRepo,
		logger:       logger,
	}
}

// Submit starts a fresh approval attempt.
func (s *ApprovalServiceImpl) Submit(ctx context.Context, req primary.SubmitRequest) (*primary.ApprovalInstance, error) {
	var result *primary.ApprovalInstance
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doc, err := loadDocument(ctx, s.documentRepo, req.DocumentID)
		if err != nil {
			return err
		}

		routeID := req.RouteID
		if routeID == "" {
			routeID = doc.ApprovalRouteID
		}
		route, err := s.findRoute(ctx, routeID)
		if err != nil {
			return err
		}

		guard := coreapproval.CanSubmit(submitContext(doc, routeID, route))
		if !guard.Allowed {
			return guard.Error()
		}

		snapshot, err := snapshotFromRecord(route)
		if err != nil {
			return err
		}

		attempt, err := s.nextAttempt(ctx, doc.ID)
		if err != nil {
			return err
		}

		now := clock.Now()
		instance := &secondary.ApprovalInstanceRecord{
			DocumentID:       doc.ID,
			RouteID:          route.ID,
			Status:           string(coreapproval.InstanceInProgress),
			CurrentStepOrder: snapshot.MinOrder(),
			Attempt:          attempt,
			StartedAt:        now,
		}
		if err := s.startAttempt(ctx, instance, snapshot, coreapproval.ExpandSubmission(snapshot, now)); err != nil {
			return err
		}

		doc.ApprovalRouteID = route.ID
		doc.Status = string(coreapproval.DocumentPendingApproval)
		if err := updateDocument(ctx, s.documentRepo, doc); err != nil {
			return err
		}

		result, err = s.buildInstance(ctx, instance)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document submitted",
		"document_id", result.DocumentID,
		"instance_id", result.ID,
		"route_id", result.RouteID,
		"attempt", result.Attempt,
		"step_order", result.CurrentStepOrder,
		"actor", ctxutil.ActorFromContext(ctx))
	return result, nil
}

// Resubmit starts a new attempt for a rejected document, carrying over the
// approvals of the immediately preceding attempt.
func (s *ApprovalServiceImpl) Resubmit(ctx context.Context, documentID string) (*primary.ApprovalInstance, error) {
	var (
		result  *primary.ApprovalInstance
		carried int
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doc, err := loadDocument(ctx, s.documentRepo, documentID)
		if err != nil {
			return err
		}

		route, err := s.findRoute(ctx, doc.ApprovalRouteID)
		if err != nil {
			return err
		}

		guard := coreapproval.CanResubmit(submitContext(doc, doc.ApprovalRouteID, route))
		if !guard.Allowed {
			return guard.Error()
		}

		snapshot, err := snapshotFromRecord(route)
		if err != nil {
			return err
		}

		previous, err := s.instanceRepo.GetLatestByDocument(ctx, doc.ID)
		if err != nil {
			return err
		}
		attempt := 1
		var prior map[coreapproval.StepKey]coreapproval.StepStatus
		if previous != nil {
			attempt = previous.Attempt + 1
			steps, err := s.stepRepo.ListByInstance(ctx, previous.ID)
			if err != nil {
				return err
			}
			prior = coreapproval.PriorDecisions(stepStates(steps))
		}

		now := clock.Now()
		plan := coreapproval.ExpandResubmission(snapshot, prior, now)
		for _, seed := range plan.Seeds {
			if seed.CarryOver {
				carried++
			}
		}

		instance := &secondary.ApprovalInstanceRecord{
			DocumentID:       doc.ID,
			RouteID:          route.ID,
			Status:           string(coreapproval.InstanceInProgress),
			CurrentStepOrder: plan.CurrentOrder,
			Attempt:          attempt,
			StartedAt:        now,
		}
		doc.Status = string(coreapproval.DocumentPendingApproval)

		// Every slot was carried over: nothing is left to decide.
		if !plan.HasPending {
			outcome := coreapproval.Complete(now)
			instance.Status = string(outcome.InstanceStatus)
			instance.CompletedAt = outcome.CompletedAt
			doc.Status = string(outcome.DocumentStatus)
		}

		if err := s.startAttempt(ctx, instance, snapshot, plan.Seeds); err != nil {
			return err
		}
		if err := updateDocument(ctx, s.documentRepo, doc); err != nil {
			return err
		}

		result, err = s.buildInstance(ctx, instance)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document resubmitted",
		"document_id", result.DocumentID,
		"instance_id", result.ID,
		"attempt", result.Attempt,
		"carried_over", carried,
		"status", result.Status,
		"step_order", result.CurrentStepOrder,
		"actor", ctxutil.ActorFromContext(ctx))
	return result, nil
}

// Decide records an approver's decision on the current step and advances,
// completes or terminates the attempt accordingly.
func (s *ApprovalServiceImpl) Decide(ctx context.Context, req primary.DecideRequest) (*primary.ApprovalInstance, error) {
	var (
		result      *primary.ApprovalInstance
		decidedStep int
	)
	decision := coreapproval.Decision(req.Decision)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doc, err := loadDocument(ctx, s.documentRepo, req.DocumentID)
		if err != nil {
			return err
		}

		instance, err := s.instanceRepo.GetActiveByDocument(ctx, doc.ID)
		if err != nil {
			return err
		}

		var (
			steps  []*secondary.StepInstanceRecord
			states []coreapproval.StepState
			idx    = -1
			order  int
		)
		if instance != nil {
			order = instance.CurrentStepOrder
			steps, err = s.stepRepo.ListByInstance(ctx, instance.ID)
			if err != nil {
				return err
			}
			states = stepStates(steps)
			idx = coreapproval.FindPending(states, order, req.ApproverID)
		}

		guard := coreapproval.CanDecide(coreapproval.DecideContext{
			DocumentID:        doc.ID,
			Status:            coreapproval.DocumentStatus(doc.Status),
			Decision:          decision,
			HasActiveInstance: instance != nil,
			ApproverID:        req.ApproverID,
			CurrentOrder:      order,
			ApproverPending:   idx >= 0,
		})
		if !guard.Allowed {
			return guard.Error()
		}

		now := clock.Now()
		step := steps[idx]
		step.Status = string(decision)
		step.DecisionAt = &now
		step.Comment = req.Comment
		if err := s.stepRepo.RecordDecision(ctx, step); err != nil {
			return concurrentUpdate(err)
		}
		states[idx].Status = coreapproval.StepStatus(decision)
		decidedStep = order

		switch {
		case decision == coreapproval.DecisionRejected:
			outcome := coreapproval.Reject(now)
			instance.Status = string(outcome.InstanceStatus)
			instance.CompletedAt = outcome.CompletedAt
			doc.Status = string(outcome.DocumentStatus)
			if err := s.updateInstance(ctx, instance); err != nil {
				return err
			}

		case coreapproval.StepComplete(states, order):
			snapshot, err := coreapproval.ParseSnapshot(instance.RouteSnapshot)
			if err != nil {
				return err
			}
			if next, ok := coreapproval.NextActionableOrder(states, order); ok {
				instance.CurrentStepOrder = next
				if err := s.updateInstance(ctx, instance); err != nil {
					return err
				}
				if err := s.stepRepo.SetDeadline(ctx, instance.ID, next, snapshot.DeadlineAt(next, now)); err != nil {
					return err
				}
			} else {
				outcome := coreapproval.Complete(now)
				instance.Status = string(outcome.InstanceStatus)
				instance.CompletedAt = outcome.CompletedAt
				instance.CurrentStepOrder = snapshot.MaxOrder()
				doc.Status = string(outcome.DocumentStatus)
				if err := s.updateInstance(ctx, instance); err != nil {
					return err
				}
			}
		}

		// The document row is written on every decision, even when its
		// status is unchanged; its version check serializes peers deciding
		// on the same step.
		if err := updateDocument(ctx, s.documentRepo, doc); err != nil {
			return err
		}

		result, err = s.buildInstance(ctx, instance)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("decision recorded",
		"document_id", result.DocumentID,
		"instance_id", result.ID,
		"attempt", result.Attempt,
		"approver", req.ApproverID,
		"decision", req.Decision,
		"decided_step", decidedStep,
		"step_order", result.CurrentStepOrder,
		"status", result.Status,
		"actor", ctxutil.ActorFromContext(ctx))
	return result, nil
}

// Cancel cancels a document. An in-progress attempt is closed as rejected.
func (s *ApprovalServiceImpl) Cancel(ctx context.Context, documentID string) error {
	var closed string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doc, err := loadDocument(ctx, s.documentRepo, documentID)
		if err != nil {
			return err
		}

		guard := coreapproval.CanCancel(coreapproval.StatusContext{
			DocumentID: doc.ID,
			Status:     coreapproval.DocumentStatus(doc.Status),
		})
		if !guard.Allowed {
			return guard.Error()
		}

		outcome := coreapproval.Cancel(clock.Now())

		instance, err := s.instanceRepo.GetActiveByDocument(ctx, doc.ID)
		if err != nil {
			return err
		}
		if instance != nil {
			instance.Status = string(outcome.InstanceStatus)
			instance.CompletedAt = outcome.CompletedAt
			if err := s.updateInstance(ctx, instance); err != nil {
				return err
			}
			closed = instance.ID
		}

		doc.Status = string(outcome.DocumentStatus)
		return updateDocument(ctx, s.documentRepo, doc)
	})
	if err != nil {
		return err
	}

	s.logger.Info("document cancelled",
		"document_id", documentID,
		"closed_instance", closed,
		"actor", ctxutil.ActorFromContext(ctx))
	return nil
}

// GetApprovalSheet returns an attempt with its step instances.
func (s *ApprovalServiceImpl) GetApprovalSheet(ctx context.Context, instanceID string) (*primary.ApprovalInstance, error) {
	instance, err := s.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	return s.buildInstance(ctx, instance)
}

// ListAttempts returns every attempt of a document, oldest first.
func (s *ApprovalServiceImpl) ListAttempts(ctx context.Context, documentID string) ([]*primary.ApprovalInstance, error) {
	if _, err := loadDocument(ctx, s.documentRepo, documentID); err != nil {
		return nil, err
	}

	records, err := s.instanceRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	attempts := make([]*primary.ApprovalInstance, 0, len(records))
	for _, r := range records {
		instance, err := s.buildInstance(ctx, r)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, instance)
	}
	return attempts, nil
}

// ListOverdueSteps returns pending step instances whose deadline passed.
func (s *ApprovalServiceImpl) ListOverdueSteps(ctx context.Context, asOf time.Time) ([]*primary.StepInstance, error) {
	records, err := s.stepRepo.ListOverdue(ctx, asOf)
	if err != nil {
		return nil, err
	}

	steps := make([]*primary.StepInstance, 0, len(records))
	for _, r := range records {
		steps = append(steps, recordToStepInstance(r))
	}
	return steps, nil
}

// findRoute returns the route, or nil when routeID is empty or unknown.
func (s *ApprovalServiceImpl) findRoute(ctx context.Context, routeID string) (*secondary.RouteRecord, error) {
	if routeID == "" {
		return nil, nil
	}
	route, err := s.routeRepo.GetByID(ctx, routeID)
	if errors.Is(err, secondary.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return route, nil
}

func (s *ApprovalServiceImpl) nextAttempt(ctx context.Context, documentID string) (int, error) {
	latest, err := s.instanceRepo.GetLatestByDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}
	if latest == nil {
		return 1, nil
	}
	return latest.Attempt + 1, nil
}

// startAttempt persists instance with the encoded snapshot and its step
// instances. instance.ID is assigned here.
func (s *ApprovalServiceImpl) startAttempt(ctx context.Context, instance *secondary.ApprovalInstanceRecord, snapshot coreapproval.RouteSnapshot, seeds []coreapproval.StepSeed) error {
	encoded, err := snapshot.Encode()
	if err != nil {
		return err
	}

	id, err := s.instanceRepo.GetNextID(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate approval instance ID: %w", err)
	}
	instance.ID = id
	instance.RouteSnapshot = encoded

	if err := s.instanceRepo.Create(ctx, instance); err != nil {
		return err
	}

	steps := make([]*secondary.StepInstanceRecord, 0, len(seeds))
	for _, seed := range seeds {
		steps = append(steps, &secondary.StepInstanceRecord{
			ID:         idgen.New(),
			InstanceID: id,
			StepOrder:  seed.Order,
			ApproverID: seed.ApproverID,
			Status:     string(seed.Status),
			DecisionAt: seed.DecisionAt,
			DeadlineAt: seed.DeadlineAt,
			CarryOver:  seed.CarryOver,
		})
	}
	return s.stepRepo.CreateBatch(ctx, steps)
}

func (s *ApprovalServiceImpl) updateInstance(ctx context.Context, instance *secondary.ApprovalInstanceRecord) error {
	if err := s.instanceRepo.Update(ctx, instance); err != nil {
		return concurrentUpdate(err)
	}
	return nil
}

// buildInstance assembles the public view of an attempt from storage.
func (s *ApprovalServiceImpl) buildInstance(ctx context.Context, record *secondary.ApprovalInstanceRecord) (*primary.ApprovalInstance, error) {
	snapshot, err := coreapproval.ParseSnapshot(record.RouteSnapshot)
	if err != nil {
		return nil, err
	}
	steps, err := s.stepRepo.ListByInstance(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	instance := &primary.ApprovalInstance{
		ID:               record.ID,
		DocumentID:       record.DocumentID,
		RouteID:          record.RouteID,
		Status:           record.Status,
		CurrentStepOrder: record.CurrentStepOrder,
		Attempt:          record.Attempt,
		StartedAt:        record.StartedAt,
		CompletedAt:      record.CompletedAt,
		Snapshot:         snapshotToSteps(snapshot),
	}
	for _, step := range steps {
		instance.Steps = append(instance.Steps, recordToStepInstance(step))
	}
	return instance, nil
}

func submitContext(doc *secondary.DocumentRecord, routeID string, route *secondary.RouteRecord) coreapproval.SubmitContext {
	ctx := coreapproval.SubmitContext{
		DocumentID: doc.ID,
		Status:     coreapproval.DocumentStatus(doc.Status),
		RouteID:    routeID,
	}
	if route != nil {
		ctx.RouteExists = true
		ctx.StepCount = len(route.Steps)
	}
	return ctx
}

func stepStates(steps []*secondary.StepInstanceRecord) []coreapproval.StepState {
	states := make([]coreapproval.StepState, len(steps))
	for i, step := range steps {
		states[i] = coreapproval.StepState{
			Order:      step.StepOrder,
			ApproverID: step.ApproverID,
			Status:     coreapproval.StepStatus(step.Status),
		}
	}
	return states
}

func recordToStepInstance(r *secondary.StepInstanceRecord) *primary.StepInstance {
	return &primary.StepInstance{
		ID:         r.ID,
		InstanceID: r.InstanceID,
		StepOrder:  r.StepOrder,
		ApproverID: r.ApproverID,
		Status:     r.Status,
		DecisionAt: r.DecisionAt,
		Comment:    r.Comment,
		DeadlineAt: r.DeadlineAt,
		CarryOver:  r.CarryOver,
	}
}

// Ensure ApprovalServiceImpl implements the interface
var _ primary.ApprovalService = (*ApprovalServiceImpl)(nil)
