package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	coreapproval "github.com/example/docroute/internal/core/approval"
	"github.com/example/docroute/internal/ports/secondary"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// statusFor maps engine error kinds to HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, coreapproval.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, coreapproval.ErrConcurrentUpdate):
		return http.StatusConflict, "concurrent_update"
	case errors.Is(err, coreapproval.ErrMissingRoute):
		return http.StatusUnprocessableEntity, "missing_route"
	case errors.Is(err, coreapproval.ErrEmptyRoute):
		return http.StatusUnprocessableEntity, "empty_route"
	case errors.Is(err, coreapproval.ErrInvalidRoute):
		return http.StatusUnprocessableEntity, "invalid_route"
	case errors.Is(err, coreapproval.ErrInvalidDecision):
		return http.StatusUnprocessableEntity, "invalid_decision"
	case errors.Is(err, coreapproval.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "invalid_input"
	case errors.Is(err, coreapproval.ErrRouteNotFound):
		return http.StatusNotFound, "route_not_found"
	case errors.Is(err, coreapproval.ErrDocumentNotFound):
		return http.StatusNotFound, "document_not_found"
	case errors.Is(err, coreapproval.ErrNoActiveInstance):
		return http.StatusNotFound, "no_active_instance"
	case errors.Is(err, secondary.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, coreapproval.ErrNotAuthorizedApprover):
		return http.StatusForbidden, "not_authorized_approver"
	default:
		return http.StatusInternalServerError, ""
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg, Kind: kind})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
