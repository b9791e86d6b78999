package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nerrad567/chassisd/internal/auth"
	"github.com/nerrad567/chassisd/internal/infrastructure/config"
	"github.com/nerrad567/chassisd/internal/infrastructure/logging"
	"github.com/nerrad567/chassisd/internal/ipmi"
	"github.com/nerrad567/chassisd/internal/topology"
)

// fakeExecutor lets tests script the outcome of an invocation and observe
// whether one happened at all.
type fakeExecutor struct {
	result ipmi.Result
	err    error

	calls    int
	lastEp   *topology.Endpoint
	lastWhat ipmi.Action
}

func (f *fakeExecutor) Execute(_ context.Context, ep *topology.Endpoint, action ipmi.Action) (ipmi.Result, error) {
	f.calls++
	f.lastEp = ep
	f.lastWhat = action
	return f.result, f.err
}

func testLogger() *logging.Logger {
	return &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func testTopology(t *testing.T) *topology.Topology {
	t.Helper()

	topo, err := topology.New([]config.GroupConfig{
		{
			Name:  "rack-a",
			Token: "token-rack-a",
			Endpoints: []config.EndpointConfig{
				{Name: "db-01", Address: "10.0.10.21", Username: "admin", Password: "s1"},
			},
		},
		{
			Name:  "lab",
			Token: "token-lab",
			Endpoints: []config.EndpointConfig{
				{Name: "bench-01", Address: "10.0.20.31", Username: "operator", Password: "s3"},
			},
		},
	})
	if err != nil {
		t.Fatalf("building topology: %v", err)
	}
	return topo
}

func newTestServer(t *testing.T, exec ipmi.Executor) *Server {
	t.Helper()

	s, err := New(Deps{
		Logger:   testLogger(),
		Resolver: auth.NewResolver(testTopology(t)),
		Executor: exec,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	return s
}

func doRequest(t *testing.T, s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.buildRouter().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body %q: %v", rec.Body.String(), err)
	}
	if body.Error == "" {
		t.Fatalf("error body missing 'error' field: %q", rec.Body.String())
	}
	return body.Error
}

func TestPowerStatus(t *testing.T) {
	exec := &fakeExecutor{result: ipmi.Result{ExitSuccess: true, Stdout: "Chassis Power is on\n"}}
	s := newTestServer(t, exec)

	rec := doRequest(t, s, http.MethodGet, "/power/db-01", "token-rack-a", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %q", rec.Code, rec.Body.String())
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Status != "on" {
		t.Errorf("status = %q, want on", body.Status)
	}

	if exec.lastWhat != ipmi.ActionStatus {
		t.Errorf("executed action = %q, want status", exec.lastWhat)
	}
	if exec.lastEp.Name != "db-01" {
		t.Errorf("executed against %q, want db-01", exec.lastEp.Name)
	}
}

func TestPowerControl(t *testing.T) {
	for _, action := range []string{"on", "off", "reset", "cycle"} {
		t.Run(action, func(t *testing.T) {
			exec := &fakeExecutor{result: ipmi.Result{ExitSuccess: true}}
			s := newTestServer(t, exec)

			rec := doRequest(t, s, http.MethodPost, "/power/db-01", "token-rack-a",
				`{"action":"`+action+`"}`)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200; body %q", rec.Code, rec.Body.String())
			}
			if got := rec.Body.String(); got != "ok" {
				t.Errorf("body = %q, want ok", got)
			}
			if got := string(exec.lastWhat); got != action {
				t.Errorf("executed action = %q, want %q", got, action)
			}
		})
	}
}

func TestPowerControlInvalidAction(t *testing.T) {
	invalid := []string{"status", "restart", "ON", ""}

	for _, action := range invalid {
		exec := &fakeExecutor{}
		s := newTestServer(t, exec)

		rec := doRequest(t, s, http.MethodPost, "/power/db-01", "token-rack-a",
			`{"action":"`+action+`"}`)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("action %q: status = %d, want 400", action, rec.Code)
		}
		decodeError(t, rec)
		if exec.calls != 0 {
			t.Errorf("action %q: executor invoked for invalid action", action)
		}
	}
}

func TestPowerControlMalformedBody(t *testing.T) {
	exec := &fakeExecutor{}
	s := newTestServer(t, exec)

	rec := doRequest(t, s, http.MethodPost, "/power/db-01", "token-rack-a", "{not json")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if exec.calls != 0 {
		t.Error("executor invoked for malformed body")
	}
}

func TestPowerUnauthorized(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"unknown token", "bad-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{}
			s := newTestServer(t, exec)

			rec := doRequest(t, s, http.MethodGet, "/power/db-01", tt.token, "")

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if msg := decodeError(t, rec); msg != "invalid token" {
				t.Errorf("error = %q, want invalid token", msg)
			}
			if exec.calls != 0 {
				t.Error("executor invoked for unauthorized request")
			}
		})
	}
}

func TestPowerCrossGroupEndpoint(t *testing.T) {
	// bench-01 belongs to the lab group. For rack-a's token it must look
	// exactly like a nonexistent endpoint, not an authorization failure.
	exec := &fakeExecutor{}
	s := newTestServer(t, exec)

	rec := doRequest(t, s, http.MethodGet, "/power/bench-01", "token-rack-a", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if msg := decodeError(t, rec); !strings.Contains(msg, "bench-01") {
		t.Errorf("error = %q, should name the endpoint", msg)
	}
	if exec.calls != 0 {
		t.Error("executor invoked for cross-group endpoint")
	}
}

func TestPowerUnknownTokenBeforeEndpoint(t *testing.T) {
	// With a bad token the response is 401 even when the endpoint does not
	// exist anywhere: token validity is decided first.
	s := newTestServer(t, &fakeExecutor{})

	rec := doRequest(t, s, http.MethodGet, "/power/no-such-endpoint", "bad-token", "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestPowerExecutionFailure(t *testing.T) {
	exec := &fakeExecutor{
		err: &ipmi.ExecError{
			Kind:   ipmi.FailureAuth,
			Stderr: "Error: Invalid user name",
		},
	}
	s := newTestServer(t, exec)

	rec := doRequest(t, s, http.MethodPost, "/power/db-01", "token-rack-a", `{"action":"on"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	// The response must stay generic: no stderr, no failure kind.
	if body := rec.Body.String(); strings.Contains(body, "Invalid user name") ||
		strings.Contains(body, string(ipmi.FailureAuth)) {
		t.Errorf("response leaks execution details: %q", body)
	}
}

func TestPowerStatusParseFailure(t *testing.T) {
	exec := &fakeExecutor{result: ipmi.Result{ExitSuccess: true, Stdout: "garbage\n"}}
	s := newTestServer(t, exec)

	rec := doRequest(t, s, http.MethodGet, "/power/db-01", "token-rack-a", "")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body := rec.Body.String(); strings.Contains(body, "garbage") {
		t.Errorf("response echoes raw tool output: %q", body)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeExecutor{})

	rec := doRequest(t, s, http.MethodGet, "/health", "", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %q, want health payload", rec.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, &fakeExecutor{})

	rec := doRequest(t, s, http.MethodGet, "/nope", "", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	decodeError(t, rec)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &fakeExecutor{})

	rec := doRequest(t, s, http.MethodDelete, "/power/db-01", "token-rack-a", "")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	decodeError(t, rec)
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(Deps{Resolver: auth.NewResolver(testTopology(t)), Executor: &fakeExecutor{}}); err == nil {
		t.Error("expected error for missing logger")
	}
	if _, err := New(Deps{Logger: testLogger(), Executor: &fakeExecutor{}}); err == nil {
		t.Error("expected error for missing resolver")
	}
	if _, err := New(Deps{Logger: testLogger(), Resolver: auth.NewResolver(testTopology(t))}); err == nil {
		t.Error("expected error for missing executor")
	}
}
