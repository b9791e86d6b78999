package ipmi

import (
	"errors"
	"strings"
)

// ErrUnexpectedOutput is returned when ipmitool's status output does not
// match the documented on/off vocabulary. The caller must treat this as an
// internal failure, never coerce it to either state.
var ErrUnexpectedOutput = errors.New("ipmi: unexpected status output")

// ParsePowerStatus normalizes ipmitool's chassis status line.
//
// The status query returns a line of free text whose last significant token
// indicates power state, e.g. "Chassis Power is on". The vocabulary is
// matched case-insensitively; any other content yields ErrUnexpectedOutput.
func ParsePowerStatus(stdout string) (PowerStatus, error) {
	fields := strings.Fields(strings.TrimSpace(stdout))
	if len(fields) == 0 {
		return "", ErrUnexpectedOutput
	}

	switch strings.ToLower(fields[len(fields)-1]) {
	case "on":
		return StatusOn, nil
	case "off":
		return StatusOff, nil
	default:
		return "", ErrUnexpectedOutput
	}
}
