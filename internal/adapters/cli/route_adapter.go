package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/example/docroute/internal/ports/primary"
)

// RouteAdapter translates CLI operations to RouteService calls.
type RouteAdapter struct {
	service primary.RouteService
	out     io.Writer
}

// NewRouteAdapter creates a new RouteAdapter with the given service.
func NewRouteAdapter(service primary.RouteService, out io.Writer) *RouteAdapter {
	return &RouteAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a route from step specs of the form
// "order:approver1,approver2[:deadlineHours]".
func (a *RouteAdapter) Create(ctx context.Context, name string, specs []string) error {
	steps, err := ParseStepSpecs(specs)
	if err != nil {
		return err
	}

	route, err := a.service.CreateRoute(ctx, primary.CreateRouteRequest{Name: name, Steps: steps})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created route %s: %s (%d steps)\n", route.ID, route.Name, len(route.Steps))
	return nil
}

// SetSteps replaces the steps of a route.
func (a *RouteAdapter) SetSteps(ctx context.Context, routeID string, specs []string) error {
	steps, err := ParseStepSpecs(specs)
	if err != nil {
		return err
	}

	route, err := a.service.UpdateRouteSteps(ctx, routeID, steps)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Route %s updated to version %d\n", route.ID, route.Version)
	return nil
}

// List lists all routes.
func (a *RouteAdapter) List(ctx context.Context) error {
	routes, err := a.service.ListRoutes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list routes: %w", err)
	}

	if len(routes) == 0 {
		fmt.Fprintln(a.out, "No routes found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-11s %-8s %-6s %s\n", "ID", "VERSION", "STEPS", "NAME")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, r := range routes {
		fmt.Fprintf(a.out, "%-11s %-8d %-6d %s\n", r.ID, r.Version, len(r.Steps), r.Name)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show displays a route and its steps.
func (a *RouteAdapter) Show(ctx context.Context, routeID string) error {
	route, err := a.service.GetRoute(ctx, routeID)
	if err != nil {
		return fmt.Errorf("failed to get route: %w", err)
	}

	fmt.Fprintf(a.out, "\nRoute:   %s\n", route.ID)
	fmt.Fprintf(a.out, "Name:    %s\n", route.Name)
	fmt.Fprintf(a.out, "Version: %d\n", route.Version)
	if len(route.Steps) == 0 {
		fmt.Fprintln(a.out, "Steps:   (none)")
	} else {
		fmt.Fprintln(a.out, "Steps:")
		for _, s := range route.Steps {
			deadline := ""
			if s.DeadlineHours > 0 {
				deadline = fmt.Sprintf(" (deadline %dh)", s.DeadlineHours)
			}
			fmt.Fprintf(a.out, "  %d. %s%s\n", s.Order, strings.Join(s.Approvers, ", "), deadline)
		}
	}
	fmt.Fprintln(a.out)

	return nil
}

// Import loads route definitions from a file.
func (a *RouteAdapter) Import(ctx context.Context, path string) error {
	resp, err := a.service.ImportRoutes(ctx, path)
	if err != nil {
		return err
	}

	for _, r := range resp.Created {
		fmt.Fprintf(a.out, "✓ Created route %s: %s\n", r.ID, r.Name)
	}
	for _, r := range resp.Updated {
		fmt.Fprintf(a.out, "✓ Updated route %s: %s (version %d)\n", r.ID, r.Name, r.Version)
	}
	return nil
}
