// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/docroute/internal/ports/primary"
)

// DocumentAdapter is a thin adapter that translates CLI operations to DocumentService calls.
// It depends only on the DocumentService interface, enabling easy testing with mocks.
type DocumentAdapter struct {
	service primary.DocumentService
	out     io.Writer
}

// NewDocumentAdapter creates a new DocumentAdapter with the given service.
func NewDocumentAdapter(service primary.DocumentService, out io.Writer) *DocumentAdapter {
	return &DocumentAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a new draft document.
func (a *DocumentAdapter) Create(ctx context.Context, title, description, routeID string) error {
	doc, err := a.service.CreateDocument(ctx, primary.CreateDocumentRequest{
		Title:       title,
		Description: description,
		RouteID:     routeID,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created document %s: %s\n", doc.ID, doc.Title)
	return nil
}

// List lists documents with an optional status filter.
func (a *DocumentAdapter) List(ctx context.Context, status string, limit int) error {
	docs, err := a.service.ListDocuments(ctx, primary.DocumentFilters{
		Status: status,
		Limit:  limit,
	})
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		fmt.Fprintln(a.out, "No documents found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-18s %-11s %s\n", "ID", "STATUS", "ROUTE", "TITLE")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, d := range docs {
		route := d.ApprovalRouteID
		if route == "" {
			route = "-"
		}
		fmt.Fprintf(a.out, "%-10s %-18s %-11s %s\n", d.ID, colorStatus(d.Status, 18), route, d.Title)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show displays details for a single document.
func (a *DocumentAdapter) Show(ctx context.Context, documentID string) (*primary.Document, error) {
	doc, err := a.service.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	fmt.Fprintf(a.out, "\nDocument: %s\n", doc.ID)
	fmt.Fprintf(a.out, "Title:    %s\n", doc.Title)
	fmt.Fprintf(a.out, "Status:   %s\n", colorStatus(doc.Status, 0))
	if doc.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", doc.Description)
	}
	if doc.ApprovalRouteID != "" {
		fmt.Fprintf(a.out, "Route:    %s\n", doc.ApprovalRouteID)
	}
	fmt.Fprintf(a.out, "Created:  %s\n", doc.CreatedAt)
	fmt.Fprintln(a.out)

	return doc, nil
}

// BindRoute binds a route to a document.
func (a *DocumentAdapter) BindRoute(ctx context.Context, documentID, routeID string) error {
	if err := a.service.BindRoute(ctx, documentID, routeID); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Document %s bound to route %s\n", documentID, routeID)
	return nil
}
