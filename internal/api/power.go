package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/chassisd/internal/auth"
	"github.com/nerrad567/chassisd/internal/ipmi"
	"github.com/nerrad567/chassisd/internal/topology"
)

// Outcome values recorded per terminal request transition.
const (
	outcomeSuccess         = "success"
	outcomeExecutionFailed = "execution_failed"
	outcomeParseError      = "parse_error"
)

// powerControlRequest is the JSON body of a POST /power/{endpoint} request.
type powerControlRequest struct {
	Action string `json:"action"`
}

// bearerToken extracts the bearer token from the Authorization header.
// Returns false if the header is absent or not a Bearer scheme.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", false
	}
	return token, true
}

// authorize resolves the request's bearer token to an endpoint, writing the
// failure response itself. The returned bool reports whether dispatch may
// proceed. Responses never reveal whether an endpoint exists outside the
// token's own group.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, endpointName string) (*topology.Endpoint, bool) {
	token, ok := bearerToken(r)
	if !ok {
		s.logger.Warn("request without bearer token", "endpoint", endpointName)
		writeUnauthorized(w, "invalid token")
		return nil, false
	}

	ep, err := s.resolver.Authorize(token, endpointName)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnauthorized):
			s.logger.Warn("unauthorized request", "endpoint", endpointName)
			writeUnauthorized(w, "invalid token")
		case errors.Is(err, auth.ErrNotFound):
			s.logger.Warn("endpoint not in authorized group", "endpoint", endpointName)
			writeNotFound(w, "endpoint '"+endpointName+"' not found")
		default:
			writeInternalError(w, "internal server error")
		}
		return nil, false
	}

	return ep, true
}

// handlePowerStatus serves GET /power/{endpoint}.
//
// Authorize → Execute(status) → Parse → 200 {"status":"on"|"off"}.
func (s *Server) handlePowerStatus(w http.ResponseWriter, r *http.Request) {
	endpointName := chi.URLParam(r, "endpoint")

	ep, ok := s.authorize(w, r, endpointName)
	if !ok {
		return
	}

	res, err := s.executor.Execute(r.Context(), ep, ipmi.ActionStatus)
	if err != nil {
		s.recordExecFailure(r, ep, ipmi.ActionStatus, err)
		writeInternalError(w, "power command failed")
		return
	}

	status, err := ipmi.ParsePowerStatus(res.Stdout)
	if err != nil {
		s.logger.Error("unexpected status output",
			"endpoint", ep.Name,
			"output", strings.TrimSpace(res.Stdout),
		)
		s.recordOutcome(r, ep, ipmi.ActionStatus, outcomeParseError, "")
		writeInternalError(w, "unexpected response from endpoint")
		return
	}

	s.logger.Info("power status",
		"endpoint", ep.Name,
		"status", string(status),
	)
	s.recordOutcome(r, ep, ipmi.ActionStatus, outcomeSuccess, string(status))

	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

// handlePowerControl serves POST /power/{endpoint}.
//
// The requested action is validated against the closed enumeration before
// any authorization or execution work: an unrecognized action must fail
// fast without touching the resolver or spawning a process.
func (s *Server) handlePowerControl(w http.ResponseWriter, r *http.Request) {
	endpointName := chi.URLParam(r, "endpoint")

	var req powerControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	action, err := ipmi.ParseControlAction(req.Action)
	if err != nil {
		s.logger.Warn("invalid action requested", "endpoint", endpointName)
		writeBadRequest(w, "invalid action")
		return
	}

	ep, ok := s.authorize(w, r, endpointName)
	if !ok {
		return
	}

	if _, err := s.executor.Execute(r.Context(), ep, action); err != nil {
		s.recordExecFailure(r, ep, action, err)
		writeInternalError(w, "power command failed")
		return
	}

	s.logger.Info("power control",
		"endpoint", ep.Name,
		"action", string(action),
		"outcome", outcomeSuccess,
	)
	s.recordOutcome(r, ep, action, outcomeSuccess, "")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok")) //nolint:errcheck // Best-effort write to response
}

// recordExecFailure logs a failed tool invocation and records its terminal
// transition. The raw stderr goes to server logs only; the audit trail and
// HTTP caller see at most the classified failure kind.
func (s *Server) recordExecFailure(r *http.Request, ep *topology.Endpoint, action ipmi.Action, err error) {
	detail := ""
	var execErr *ipmi.ExecError
	if errors.As(err, &execErr) {
		detail = string(execErr.Kind)
		s.logger.Error("ipmitool invocation failed",
			"endpoint", ep.Name,
			"action", string(action),
			"kind", string(execErr.Kind),
			"stderr", strings.TrimSpace(execErr.Stderr),
		)
	} else {
		s.logger.Error("ipmitool invocation failed",
			"endpoint", ep.Name,
			"action", string(action),
			"error", err,
		)
	}

	s.recordOutcome(r, ep, action, outcomeExecutionFailed, detail)
}
