package topology

import (
	"strings"
	"testing"

	"github.com/nerrad567/chassisd/internal/infrastructure/config"
)

func testGroups() []config.GroupConfig {
	return []config.GroupConfig{
		{
			Name:  "rack-a",
			Token: "token-rack-a",
			Endpoints: []config.EndpointConfig{
				{Name: "db-01", Address: "10.0.10.21", Username: "admin", Password: "s1"},
				{Name: "db-02", Address: "10.0.10.22", Username: "admin", Password: "s2"},
			},
		},
		{
			Name:  "lab",
			Token: "token-lab",
			Endpoints: []config.EndpointConfig{
				{Name: "bench-01", Address: "10.0.20.31", Username: "operator", Password: "s3"},
			},
		},
	}
}

func TestNew(t *testing.T) {
	topo, err := New(testGroups())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := topo.GroupCount(); got != 2 {
		t.Errorf("GroupCount() = %d, want 2", got)
	}
	if got := topo.EndpointCount(); got != 3 {
		t.Errorf("EndpointCount() = %d, want 3", got)
	}
}

func TestGroupByToken(t *testing.T) {
	topo, err := New(testGroups())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g, ok := topo.GroupByToken("token-rack-a")
	if !ok {
		t.Fatal("expected a group for token-rack-a")
	}
	if g.Name != "rack-a" {
		t.Errorf("group = %q, want rack-a", g.Name)
	}

	if _, ok := topo.GroupByToken("nope"); ok {
		t.Error("unknown token should not resolve to a group")
	}
	if _, ok := topo.GroupByToken(""); ok {
		t.Error("empty token should not resolve to a group")
	}
}

func TestGroupEndpointLookup(t *testing.T) {
	topo, err := New(testGroups())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g, _ := topo.GroupByToken("token-rack-a")

	ep, ok := g.Endpoint("db-01")
	if !ok {
		t.Fatal("expected db-01 in rack-a")
	}
	if ep.Address != "10.0.10.21" || ep.Username != "admin" || ep.Password != "s1" {
		t.Errorf("endpoint credentials mismatch: %+v", ep)
	}
	if ep.GroupName != "rack-a" {
		t.Errorf("GroupName = %q, want rack-a", ep.GroupName)
	}

	// An endpoint owned by another group is invisible here.
	if _, ok := g.Endpoint("bench-01"); ok {
		t.Error("rack-a should not see lab's endpoints")
	}
}

func TestNewRejectsDuplicateToken(t *testing.T) {
	groups := testGroups()
	groups[1].Token = groups[0].Token

	_, err := New(groups)
	if err == nil {
		t.Fatal("expected error for duplicate token across groups")
	}
	if !strings.Contains(err.Error(), "share a token") {
		t.Errorf("error = %q, should name the token collision", err)
	}
}

func TestNewRejectsDuplicateEndpointName(t *testing.T) {
	groups := testGroups()
	groups[0].Endpoints = append(groups[0].Endpoints, config.EndpointConfig{
		Name: "db-01", Address: "10.0.10.99", Username: "admin", Password: "s9",
	})

	_, err := New(groups)
	if err == nil {
		t.Fatal("expected error for duplicate endpoint name within a group")
	}
}

func TestSameEndpointNameAcrossGroups(t *testing.T) {
	// The same endpoint name in two different groups is legal: names are
	// scoped per group.
	groups := testGroups()
	groups[1].Endpoints = append(groups[1].Endpoints, config.EndpointConfig{
		Name: "db-01", Address: "10.0.20.99", Username: "operator", Password: "s9",
	})

	topo, err := New(groups)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rackA, _ := topo.GroupByToken("token-rack-a")
	lab, _ := topo.GroupByToken("token-lab")

	epA, _ := rackA.Endpoint("db-01")
	epL, _ := lab.Endpoint("db-01")
	if epA.Address == epL.Address {
		t.Error("same-named endpoints in different groups should be distinct")
	}
}
