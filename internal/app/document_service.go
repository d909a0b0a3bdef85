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

// DocumentServiceImpl implements the DocumentService interface.
type DocumentServiceImpl struct {
	tx           secondary.Transactor
	documentRepo secondary.DocumentRepository
	routeRepo    secondary.RouteRepository
	logger       *slog.Logger
}

// NewDocumentService creates a new DocumentService with injected dependencies.
func NewDocumentService(
	tx secondary.Transactor,
	documentRepo secondary.DocumentRepository,
	routeRepo secondary.RouteRepository,
	logger *slog.Logger,
) *DocumentServiceImpl {
	return &DocumentServiceImpl{
		tx:           tx,
		documentRepo: documentRepo,
		routeRepo:    routeRepo,
		logger:       logger,
	}
}

// CreateDocument creates a new draft document.
func (s *DocumentServiceImpl) CreateDocument(ctx context.Context, req primary.CreateDocumentRequest) (*primary.Document, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: document title is required", coreapproval.ErrInvalidInput)
	}

	var created *secondary.DocumentRecord
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if req.RouteID != "" {
			if err := ensureRouteExists(ctx, s.routeRepo, req.RouteID); err != nil {
				return err
			}
		}

		nextID, err := s.documentRepo.GetNextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate document ID: %w", err)
		}

		record := &secondary.DocumentRecord{
			ID:              nextID,
			Title:           title,
			Description:     req.Description,
			Status:          string(coreapproval.InitialDocumentStatus()),
			ApprovalRouteID: req.RouteID,
		}
		if err := s.documentRepo.Create(ctx, record); err != nil {
			return err
		}

		created, err = s.documentRepo.GetByID(ctx, nextID)
		if err != nil {
			return fmt.Errorf("failed to fetch created document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document created", "document_id", created.ID, "actor", ctxutil.ActorFromContext(ctx))
	return recordToDocument(created), nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentServiceImpl) GetDocument(ctx context.Context, documentID string) (*primary.Document, error) {
	record, err := loadDocument(ctx, s.documentRepo, documentID)
	if err != nil {
		return nil, err
	}
	return recordToDocument(record), nil
}

// ListDocuments lists documents with optional filters.
func (s *DocumentServiceImpl) ListDocuments(ctx context.Context, filters primary.DocumentFilters) ([]*primary.Document, error) {
	records, err := s.documentRepo.List(ctx, secondary.DocumentFilters{
		Status: filters.Status,
		Limit:  filters.Limit,
	})
	if err != nil {
		return nil, err
	}

	docs := make([]*primary.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, recordToDocument(r))
	}
	return docs, nil
}

// BindRoute binds an approval route to a draft or rejected document.
func (s *DocumentServiceImpl) BindRoute(ctx context.Context, documentID, routeID string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doc, err := loadDocument(ctx, s.documentRepo, documentID)
		if err != nil {
			return err
		}

		guard := coreapproval.CanBindRoute(coreapproval.StatusContext{
			DocumentID: doc.ID,
			Status:     coreapproval.DocumentStatus(doc.Status),
		})
		if !guard.Allowed {
			return guard.Error()
		}

		if err := ensureRouteExists(ctx, s.routeRepo, routeID); err != nil {
			return err
		}

		doc.ApprovalRouteID = routeID
		return updateDocument(ctx, s.documentRepo, doc)
	})
	if err != nil {
		return err
	}

	s.logger.Info("route bound", "document_id", documentID, "route_id", routeID, "actor", ctxutil.ActorFromContext(ctx))
	return nil
}

// loadDocument fetches a document, reporting a missing one as
// ErrDocumentNotFound.
func loadDocument(ctx context.Context, repo secondary.DocumentRepository, documentID string) (*secondary.DocumentRecord, error) {
	doc, err := repo.GetByID(ctx, documentID)
	if errors.Is(err, secondary.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", coreapproval.ErrDocumentNotFound, documentID)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// updateDocument writes doc under its version check.
func updateDocument(ctx context.Context, repo secondary.DocumentRepository, doc *secondary.DocumentRecord) error {
	if err := repo.Update(ctx, doc); err != nil {
		return concurrentUpdate(err)
	}
	return nil
}

// concurrentUpdate reports a lost version check as ErrConcurrentUpdate.
func concurrentUpdate(err error) error {
	if errors.Is(err, secondary.ErrStaleRecord) {
		return fmt.Errorf("%w: %w", coreapproval.ErrConcurrentUpdate, err)
	}
	return err
}

func ensureRouteExists(ctx context.Context, repo secondary.RouteRepository, routeID string) error {
	_, err := repo.GetByID(ctx, routeID)
	if errors.Is(err, secondary.ErrNotFound) {
		return fmt.Errorf("%w: route %s not found", coreapproval.ErrRouteNotFound, routeID)
	}
	return err
}

func recordToDocument(r *secondary.DocumentRecord) *primary.Document {
	return &primary.Document{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		Status:          r.Status,
		ApprovalRouteID: r.ApprovalRouteID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// Ensure DocumentServiceImpl implements the interface
var _ primary.DocumentService = (*DocumentServiceImpl)(nil)
