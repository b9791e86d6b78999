package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/chassisd/internal/audit"
)

// handleAuditList serves GET /audit, returning the caller's group's power
// history, most recent first.
//
// Query parameters:
//   - endpoint: filter by endpoint name
//   - action: filter by action (on, off, reset, cycle, status)
//   - limit: page size (default 50, max 200)
//   - offset: pagination offset
//
// Entries are scoped strictly to the group owning the bearer token; there
// is no cross-group audit visibility.
func (s *Server) handleAuditList(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeUnauthorized(w, "invalid token")
		return
	}

	group, err := s.resolver.GroupForToken(token)
	if err != nil {
		s.logger.Warn("unauthorized audit request")
		writeUnauthorized(w, "invalid token")
		return
	}

	if s.audit == nil {
		writeError(w, http.StatusServiceUnavailable, "audit trail disabled")
		return
	}

	filter := audit.Filter{
		GroupName: group.Name,
		Endpoint:  r.URL.Query().Get("endpoint"),
		Action:    r.URL.Query().Get("action"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, "invalid offset")
			return
		}
		filter.Offset = n
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing audit entries", "group", group.Name, "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
