package ipmi

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/nerrad567/chassisd/internal/topology"
)

// Result is the raw outcome of one ipmitool invocation.
type Result struct {
	ExitSuccess bool
	Stdout      string
	Stderr      string
}

// Executor runs a power action against one endpoint.
//
// The dispatcher depends on this interface so tests can substitute a fake
// without touching authorization or dispatch logic.
type Executor interface {
	Execute(ctx context.Context, ep *topology.Endpoint, action Action) (Result, error)
}

// Logger defines the logging interface for the tool runner.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Tool invokes the external ipmitool binary.
//
// Each invocation is a short-lived child process bounded by the configured
// timeout. Tool holds no per-invocation state and is safe for concurrent
// use from multiple request goroutines.
type Tool struct {
	binary  string
	iface   string
	timeout time.Duration
	logger  Logger
}

// NewTool creates a Tool for the given binary path, IPMI interface, and
// per-invocation timeout.
func NewTool(binary, iface string, timeout time.Duration) *Tool {
	if iface == "" {
		iface = "lanplus"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Tool{
		binary:  binary,
		iface:   iface,
		timeout: timeout,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the tool runner.
func (t *Tool) SetLogger(logger Logger) {
	t.logger = logger
}

// buildArgs assembles the minimal ipmitool argument set for one endpoint.
// The vector contains the endpoint password and must never be logged.
func (t *Tool) buildArgs(ep *topology.Endpoint, action Action) []string {
	return []string{
		"-I", t.iface,
		"-H", ep.Address,
		"-U", ep.Username,
		"-P", ep.Password,
		"power", string(action),
	}
}

// Execute runs ipmitool against the endpoint and captures both output streams.
//
// The invocation is bounded by the configured timeout but detached from the
// request context's cancellation: an HTTP client disconnect must not kill an
// in-flight power command, because abandoning one mid-flight can leave
// hardware in an indeterminate state. Context values (request ID) survive
// the detachment.
//
// A clean zero exit returns a Result with ExitSuccess set. A non-zero exit,
// spawn failure, or timeout returns an *ExecError whose Kind is classified
// from stderr for server-side diagnostics.
func (t *Tool) Execute(ctx context.Context, ep *topology.Endpoint, action Action) (Result, error) {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, t.binary, t.buildArgs(ep, action)...) //nolint:gosec // binary path comes from validated config, arguments from the immutable topology

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	res := Result{
		ExitSuccess: err == nil,
		Stdout:      stdout.String(),
		Stderr:      stderr.String(),
	}

	t.logger.Debug("ipmitool finished",
		"endpoint", ep.Name,
		"action", string(action),
		"exit_success", res.ExitSuccess,
		"duration_ms", elapsed.Milliseconds(),
	)

	if err == nil {
		return res, nil
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return res, &ExecError{Kind: FailureTimeout, Stderr: res.Stderr, Err: runCtx.Err()}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, &ExecError{Kind: classifyStderr(res.Stderr), Stderr: res.Stderr, Err: err}
	}

	// The process never started (missing binary, permissions).
	return res, &ExecError{Kind: FailureSpawn, Stderr: res.Stderr, Err: err}
}
