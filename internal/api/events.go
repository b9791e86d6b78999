package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/nerrad567/chassisd/internal/audit"
	"github.com/nerrad567/chassisd/internal/infrastructure/mqtt"
	"github.com/nerrad567/chassisd/internal/ipmi"
	"github.com/nerrad567/chassisd/internal/topology"
)

// recordTimeout bounds the audit insert for a completed request. The insert
// runs on a context detached from the request so a client disconnect cannot
// drop the record.
const recordTimeout = 5 * time.Second

// powerEvent is the JSON payload published for each terminal power
// transition. Status is set only for successful status queries.
type powerEvent struct {
	Group     string `json:"group"`
	Endpoint  string `json:"endpoint"`
	Action    string `json:"action"`
	Outcome   string `json:"outcome"`
	Status    string `json:"status,omitempty"`
	Timestamp string `json:"timestamp"`
}

// recordOutcome persists a terminal transition to the audit trail and
// publishes it as an MQTT event. Both sinks are optional and best-effort:
// a failure in either is logged and never affects the HTTP response.
//
// For successful status queries, status carries the parsed power state and
// doubles as the audit detail. For failures, detail carries the classified
// failure kind only.
func (s *Server) recordOutcome(r *http.Request, ep *topology.Endpoint, action ipmi.Action, outcome, detail string) {
	now := time.Now().UTC()

	if s.audit != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), recordTimeout)
		defer cancel()

		entry := &audit.Entry{
			GroupName: ep.GroupName,
			Endpoint:  ep.Name,
			Action:    string(action),
			Outcome:   outcome,
			Detail:    detail,
			CreatedAt: now,
		}
		if err := s.audit.Record(ctx, entry); err != nil {
			s.logger.Error("recording audit entry",
				"endpoint", ep.Name,
				"action", string(action),
				"error", err,
			)
		}
	}

	if s.events != nil {
		event := powerEvent{
			Group:     ep.GroupName,
			Endpoint:  ep.Name,
			Action:    string(action),
			Outcome:   outcome,
			Timestamp: now.Format(time.RFC3339),
		}
		if action == ipmi.ActionStatus && outcome == outcomeSuccess {
			event.Status = detail
		}

		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("encoding power event", "error", err)
			return
		}

		topic := mqtt.Topics{}.PowerEvent(ep.GroupName, ep.Name)
		if err := s.events.PublishEvent(topic, payload); err != nil {
			s.logger.Warn("publishing power event",
				"topic", topic,
				"error", err,
			)
		}
	}
}
