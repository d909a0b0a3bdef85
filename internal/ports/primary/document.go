package primary

import "context"

// DocumentService defines the primary port for document operations.
type DocumentService interface {
	// CreateDocument creates a new draft document.
	CreateDocument(ctx context.Context, req CreateDocumentRequest) (*Document, error)

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, documentID string) (*Document, error)

	// ListDocuments lists documents with optional filters.
	ListDocuments(ctx context.Context, filters DocumentFilters) ([]*Document, error)

	// BindRoute binds an approval route to a draft or rejected document.
	BindRoute(ctx context.Context, documentID, routeID string) error
}

// CreateDocumentRequest contains parameters for creating a document.
type CreateDocumentRequest struct {
	Title       string
	Description string
	RouteID     string // Optional
}

// Document is the public view of a document.
type Document struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Status          string `json:"status"`
	ApprovalRouteID string `json:"approval_route_id,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// DocumentFilters contains filter options for listing documents.
type DocumentFilters struct {
	Status string
	Limit  int
}
