package ipmi

import (
	"fmt"
	"strings"
)

// FailureKind classifies why an ipmitool invocation failed, derived from
// known stderr substrings. Kinds feed server-side logs and the audit trail
// only; HTTP callers always receive a generic message.
type FailureKind string

const (
	// FailureAuth covers bad BMC usernames and RMCP+ authentication failures.
	FailureAuth FailureKind = "authentication_failed"

	// FailureConnection covers unreachable BMCs and failed session setup.
	FailureConnection FailureKind = "connection_failed"

	// FailureNotSupported covers commands the chassis rejects in its
	// present power state.
	FailureNotSupported FailureKind = "command_not_supported"

	// FailureInvalidCommand covers commands the BMC does not recognize.
	FailureInvalidCommand FailureKind = "invalid_command"

	// FailureTimeout covers invocations that exceeded the configured bound.
	FailureTimeout FailureKind = "timeout"

	// FailureSpawn covers failures to start the ipmitool process at all.
	FailureSpawn FailureKind = "spawn_failed"

	// FailureUnknown covers everything else.
	FailureUnknown FailureKind = "unknown"
)

// ExecError describes a failed ipmitool invocation.
//
// Stderr is retained for server-side diagnostics. It may contain
// credential-adjacent text from the tool and must never be echoed to an
// HTTP caller.
type ExecError struct {
	Kind   FailureKind
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ipmi: execution failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("ipmi: execution failed (%s)", e.Kind)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// classifyStderr maps known ipmitool stderr messages to a FailureKind.
func classifyStderr(stderr string) FailureKind {
	switch {
	case strings.Contains(stderr, "Command not supported in present state"):
		return FailureNotSupported
	case strings.Contains(stderr, "Invalid user name"),
		strings.Contains(stderr, "authentication failure"):
		return FailureAuth
	case strings.Contains(stderr, "Unable to establish IPMI v2 / RMCP+ session"):
		return FailureConnection
	case strings.Contains(stderr, "Invalid command"):
		return FailureInvalidCommand
	default:
		return FailureUnknown
	}
}
