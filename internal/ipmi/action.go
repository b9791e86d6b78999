package ipmi

import "errors"

// Action is a chassis power action understood by ipmitool's power command.
//
// The four control actions form a closed enumeration; ActionStatus is the
// implicit read-only query issued for GET requests and is never accepted
// from a request body.
type Action string

const (
	ActionOn     Action = "on"
	ActionOff    Action = "off"
	ActionReset  Action = "reset"
	ActionCycle  Action = "cycle"
	ActionStatus Action = "status"
)

// ErrInvalidAction is returned for any string outside the closed control
// enumeration. Matching is case-sensitive.
var ErrInvalidAction = errors.New("ipmi: invalid action")

// ParseControlAction validates a requested control action.
//
// Only on, off, reset, and cycle are accepted; status is a query, not a
// control action, and everything else is a validation failure before any
// authorization or execution work happens.
func ParseControlAction(s string) (Action, error) {
	switch Action(s) {
	case ActionOn, ActionOff, ActionReset, ActionCycle:
		return Action(s), nil
	default:
		return "", ErrInvalidAction
	}
}

// PowerStatus is the normalized result of a status query.
type PowerStatus string

const (
	StatusOn  PowerStatus = "on"
	StatusOff PowerStatus = "off"
)
