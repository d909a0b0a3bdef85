package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/docroute/internal/ctxutil"
	"github.com/example/docroute/internal/ports/primary"
)

type createDocumentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	RouteID     string `json:"route_id"`
}

type bindRouteRequest struct {
	RouteID string `json:"route_id"`
}

type submitRequest struct {
	RouteID string `json:"route_id"`
}

type decideRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

type createRouteRequest struct {
	Name  string              `json:"name"`
	Steps []primary.RouteStep `json:"steps"`
}

type replaceStepsRequest struct {
	Steps []primary.RouteStep `json:"steps"`
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := decodeBody(r, createDocumentLoader, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := s.documents.CreateDocument(r.Context(), primary.CreateDocumentRequest{
		Title:       req.Title,
		Description: req.Description,
		RouteID:     req.RouteID,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	filters := primary.DocumentFilters{Status: r.URL.Query().Get("status")}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filters.Limit = limit
	}

	docs, err := s.documents.ListDocuments(r.Context(), filters)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.GetDocument(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleBindRoute(w http.ResponseWriter, r *http.Request) {
	var req bindRouteRequest
	if err := decodeBody(r, bindRouteLoader, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	documentID := chi.URLParam(r, "documentID")
	if err := s.documents.BindRoute(r.Context(), documentID, req.RouteID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	doc, err := s.documents.GetDocument(r.Context(), documentID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeBody(r, submitLoader, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	instance, err := s.approvals.Submit(r.Context(), primary.SubmitRequest{
		DocumentID: chi.URLParam(r, "documentID"),
		RouteID:    req.RouteID,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, instance)
}

func (s *Server) handleResubmit(w http.ResponseWriter, r *http.Request) {
	instance, err := s.approvals.Resubmit(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, instance)
}

// handleDecide records a decision on behalf of the authenticated actor.
func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req decideRequest
	if err := decodeBody(r, decideLoader, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	instance, err := s.approvals.Decide(r.Context(), primary.DecideRequest{
		DocumentID: chi.URLParam(r, "documentID"),
		ApproverID: ctxutil.ActorFromContext(r.Context()),
		Decision:   req.Decision,
		Comment:    req.Comment,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, instance)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")
	if err := s.approvals.Cancel(r.Context(), documentID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	doc, err := s.documents.GetDocument(r.Context(), documentID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := s.approvals.ListAttempts(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (s *Server) handleGetApprovalSheet(w http.ResponseWriter, r *http.Request) {
	instance, err := s.approvals.GetApprovalSheet(r.Context(), chi.URLParam(r, "instanceID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, instance)
}

// handleListOverdue lists overdue steps as of the as_of query parameter
// (RFC 3339), defaulting to now.
func (s *Server) handleListOverdue(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if v := r.URL.Query().Get("as_of"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "as_of must be an RFC 3339 timestamp")
			return
		}
		asOf = t
	}

	steps, err := s.approvals.ListOverdueSteps(r.Context(), asOf)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, steps)
}

func (s *Server) handleCreateRoute(w http.ResponseWriter, r *http.Request) {
	var req createRouteRequest
	if err := decodeBody(r, createRouteLoader, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	route, err := s.routes.CreateRoute(r.Context(), primary.CreateRouteRequest{Name: req.Name, Steps: req.Steps})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, route)
}

func (s *Server) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := s.routes.ListRoutes(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, routes)
}

func (s *Server) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	route, err := s.routes.GetRoute(r.Context(), chi.URLParam(r, "routeID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}

func (s *Server) handleReplaceSteps(w http.ResponseWriter, r *http.Request) {
	var req replaceStepsRequest
	if err := decodeBody(r, replaceStepsLoader, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	route, err := s.routes.UpdateRouteSteps(r.Context(), chi.URLParam(r, "routeID"), req.Steps)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}
