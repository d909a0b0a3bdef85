package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	coreapproval "github.com/example/docroute/internal/core/approval"
	"github.com/example/docroute/internal/ctxutil"
	"github.com/example/docroute/internal/ports/primary"
	"github.com/example/docroute/internal/ports/secondary"
)

// RouteServiceImpl implements the RouteService interface.
type RouteServiceImpl struct {
	tx        secondary.Transactor
	routeRepo secondary.RouteRepository
	source    secondary.RouteDefinitionSource
	logger    *slog.Logger
}

// NewRouteService creates a new RouteService with injected dependencies.
// source is optional - if nil, ImportRoutes is unavailable.
func NewRouteService(
	tx secondary.Transactor,
	routeRepo secondary.RouteRepository,
	source secondary.RouteDefinitionSource,
	logger *slog.Logger,
) *RouteServiceImpl {
	return &RouteServiceImpl{
		tx:        tx,
		routeRepo: routeRepo,
		source:    source,
		logger:    logger,
	}
}

// CreateRoute creates a named route at version 1. A route may be created
// without steps; submitting against it fails until steps are added.
func (s *RouteServiceImpl) CreateRoute(ctx context.Context, req primary.CreateRouteRequest) (*primary.Route, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: route name is required", coreapproval.ErrInvalidInput)
	}
	steps, err := validateSteps(req.Steps)
	if err != nil {
		return nil, err
	}

	var created *secondary.RouteRecord
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.create(ctx, name, steps)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("route created", "route_id", created.ID, "name", created.Name, "steps", len(created.Steps), "actor", ctxutil.ActorFromContext(ctx))
	return recordToRoute(created), nil
}

// GetRoute retrieves a route by ID.
func (s *RouteServiceImpl) GetRoute(ctx context.Context, routeID string) (*primary.Route, error) {
	record, err := s.routeRepo.GetByID(ctx, routeID)
	if errors.Is(err, secondary.ErrNotFound) {
		return nil, fmt.Errorf("%w: route %s not found", coreapproval.ErrRouteNotFound, routeID)
	}
	if err != nil {
		return nil, err
	}
	return recordToRoute(record), nil
}

// ListRoutes lists all routes.
func (s *RouteServiceImpl) ListRoutes(ctx context.Context) ([]*primary.Route, error) {
	records, err := s.routeRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	routes := make([]*primary.Route, 0, len(records))
	for _, r := range records {
		routes = append(routes, recordToRoute(r))
	}
	return routes, nil
}

// UpdateRouteSteps replaces a route's steps and bumps its version.
func (s *RouteServiceImpl) UpdateRouteSteps(ctx context.Context, routeID string, steps []primary.RouteStep) (*primary.Route, error) {
	records, err := validateSteps(steps)
	if err != nil {
		return nil, err
	}

	var updated *secondary.RouteRecord
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.routeRepo.ReplaceSteps(ctx, routeID, records); err != nil {
			if errors.Is(err, secondary.ErrNotFound) {
				return fmt.Errorf("%w: route %s not found", coreapproval.ErrRouteNotFound, routeID)
			}
			return err
		}
		var err error
		updated, err = s.routeRepo.GetByID(ctx, routeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("route updated", "route_id", updated.ID, "version", updated.Version, "actor", ctxutil.ActorFromContext(ctx))
	return recordToRoute(updated), nil
}

// ImportRoutes loads route definitions from a file. Routes are matched by
// name: unknown names are created, known ones get their steps replaced. The
// import is all or nothing.
func (s *RouteServiceImpl) ImportRoutes(ctx context.Context, path string) (*primary.ImportRoutesResponse, error) {
	if s.source == nil {
		return nil, fmt.Errorf("route import is not configured")
	}

	defs, err := s.source.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", coreapproval.ErrInvalidRoute, err)
	}

	for i, def := range defs {
		snapshot, err := snapshotFromSteps(def.Steps)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", def.Name, err)
		}
		defs[i].Steps = snapshotToRecords(snapshot)
	}

	resp := &primary.ImportRoutesResponse{}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, def := range defs {
			existing, err := s.routeRepo.GetByName(ctx, def.Name)
			if errors.Is(err, secondary.ErrNotFound) {
				created, err := s.create(ctx, def.Name, def.Steps)
				if err != nil {
					return err
				}
				resp.Created = append(resp.Created, recordToRoute(created))
				continue
			}
			if err != nil {
				return err
			}

			if err := s.routeRepo.ReplaceSteps(ctx, existing.ID, def.Steps); err != nil {
				return err
			}
			updated, err := s.routeRepo.GetByID(ctx, existing.ID)
			if err != nil {
				return err
			}
			resp.Updated = append(resp.Updated, recordToRoute(updated))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("routes imported", "path", path, "created", len(resp.Created), "updated", len(resp.Updated), "actor", ctxutil.ActorFromContext(ctx))
	return resp, nil
}

func (s *RouteServiceImpl) create(ctx context.Context, name string, steps []secondary.RouteStepRecord) (*secondary.RouteRecord, error) {
	if _, err := s.routeRepo.GetByName(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: route named %q already exists", coreapproval.ErrInvalidInput, name)
	} else if !errors.Is(err, secondary.ErrNotFound) {
		return nil, err
	}

	nextID, err := s.routeRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate route ID: %w", err)
	}

	record := &secondary.RouteRecord{ID: nextID, Name: name, Version: 1, Steps: steps}
	if err := s.routeRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	created, err := s.routeRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created route: %w", err)
	}
	return created, nil
}

// validateSteps checks a non-empty step list with the snapshot rules and
// returns it in storage form, sorted by order.
func validateSteps(steps []primary.RouteStep) ([]secondary.RouteStepRecord, error) {
	if len(steps) == 0 {
		return nil, nil
	}

	records := make([]secondary.RouteStepRecord, len(steps))
	for i, step := range steps {
		records[i] = secondary.RouteStepRecord{
			Order:         step.Order,
			ApproverIDs:   step.Approvers,
			DeadlineHours: step.DeadlineHours,
		}
	}

	snapshot, err := snapshotFromSteps(records)
	if err != nil {
		return nil, err
	}
	return snapshotToRecords(snapshot), nil
}

func snapshotFromRecord(route *secondary.RouteRecord) (coreapproval.RouteSnapshot, error) {
	return snapshotFromSteps(route.Steps)
}

func snapshotFromSteps(steps []secondary.RouteStepRecord) (coreapproval.RouteSnapshot, error) {
	defs := make([]coreapproval.StepDef, len(steps))
	for i, step := range steps {
		def := coreapproval.StepDef{Order: step.Order}
		for _, id := range step.ApproverIDs {
			def.Approvers = append(def.Approvers, coreapproval.ApproverRef{ID: id})
		}
		if step.DeadlineHours != 0 {
			hours := step.DeadlineHours
			def.DeadlineHours = &hours
		}
		defs[i] = def
	}
	return coreapproval.NewSnapshot(defs)
}

func snapshotToRecords(snapshot coreapproval.RouteSnapshot) []secondary.RouteStepRecord {
	records := make([]secondary.RouteStepRecord, len(snapshot.Steps))
	for i, step := range snapshot.Steps {
		records[i] = secondary.RouteStepRecord{Order: step.Order, ApproverIDs: approverIDs(step)}
		if step.DeadlineHours != nil {
			records[i].DeadlineHours = *step.DeadlineHours
		}
	}
	return records
}

func snapshotToSteps(snapshot coreapproval.RouteSnapshot) []primary.RouteStep {
	steps := make([]primary.RouteStep, len(snapshot.Steps))
	for i, step := range snapshot.Steps {
		steps[i] = primary.RouteStep{Order: step.Order, Approvers: approverIDs(step)}
		if step.DeadlineHours != nil {
			steps[i].DeadlineHours = *step.DeadlineHours
		}
	}
	return steps
}

func approverIDs(step coreapproval.StepDef) []string {
	ids := make([]string, len(step.Approvers))
	for i, a := range step.Approvers {
		ids[i] = a.ID
	}
	return ids
}

func recordToRoute(r *secondary.RouteRecord) *primary.Route {
	route := &primary.Route{
		ID:        r.ID,
		Name:      r.Name,
		Version:   r.Version,
		Steps:     make([]primary.RouteStep, 0, len(r.Steps)),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, step := range r.Steps {
		route.Steps = append(route.Steps, primary.RouteStep{
			Order:         step.Order,
			Approvers:     step.ApproverIDs,
			DeadlineHours: step.DeadlineHours,
		})
	}
	return route
}

// Ensure RouteServiceImpl implements the interface
var _ primary.RouteService = (*RouteServiceImpl)(nil)
