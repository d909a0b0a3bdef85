package primary

import "context"

// RouteService defines the primary port for approval route definitions.
type RouteService interface {
	// CreateRoute creates a named route at version 1.
	CreateRoute(ctx context.Context, req CreateRouteRequest) (*Route, error)

	// GetRoute retrieves a route by ID.
	GetRoute(ctx context.Context, routeID string) (*Route, error)

	// ListRoutes lists all routes.
	ListRoutes(ctx context.Context) ([]*Route, error)

	// UpdateRouteSteps replaces a route's steps and bumps its version.
	// Running approvals keep the snapshot they were started with.
	UpdateRouteSteps(ctx context.Context, routeID string, steps []RouteStep) (*Route, error)

	// ImportRoutes loads route definitions from a file, creating new routes
	// and updating existing ones by name.
	ImportRoutes(ctx context.Context, path string) (*ImportRoutesResponse, error)
}

// CreateRouteRequest contains parameters for creating a route.
type CreateRouteRequest struct {
	Name  string
	Steps []RouteStep
}

// RouteStep is one step of a route.
type RouteStep struct {
	Order         int      `json:"order" yaml:"order"`
	Approvers     []string `json:"approvers" yaml:"approvers"`
	DeadlineHours int      `json:"deadline_hours,omitempty" yaml:"deadline_hours,omitempty"` // 0 means none
}

// Route is the public view of a route definition.
type Route struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Version   int         `json:"version"`
	Steps     []RouteStep `json:"steps"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

// ImportRoutesResponse summarizes a route import.
type ImportRoutesResponse struct {
	Created []*Route
	Updated []*Route
}
