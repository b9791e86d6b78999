// Package topology holds the immutable in-memory access-control topology:
// groups, their bearer tokens, and the IPMI endpoints each group owns.
//
// The topology is built once at startup from validated configuration and is
// never mutated afterwards, so it can be shared by reference across request
// goroutines without locking. Any configuration change requires a restart.
package topology

import (
	"fmt"

	"github.com/nerrad567/chassisd/internal/infrastructure/config"
)

// Endpoint is one managed machine's BMC address and credentials.
// Every endpoint belongs to exactly one group, recorded in GroupName.
type Endpoint struct {
	Name      string
	GroupName string
	Address   string
	Username  string
	Password  string
}

// Group is an authorization scope: one bearer token governing access to a
// set of endpoints. Endpoint names are unique within a group.
type Group struct {
	Name      string
	Token     string
	endpoints map[string]*Endpoint
}

// Endpoint returns the named endpoint within this group, or false if the
// group does not own an endpoint by that name.
func (g *Group) Endpoint(name string) (*Endpoint, bool) {
	ep, ok := g.endpoints[name]
	return ep, ok
}

// EndpointCount returns the number of endpoints the group owns.
func (g *Group) EndpointCount() int {
	return len(g.endpoints)
}

// Topology is the full set of groups, indexed by token for O(1) lookup.
type Topology struct {
	groups  []*Group
	byToken map[string]*Group
}

// New builds a Topology from group configuration.
//
// Construction fails fast if any token is shared by two groups or any
// endpoint name appears twice within one group. Ambiguity at this layer
// must never be silently resolved: a duplicate token would make token
// lookup non-injective and a duplicate endpoint name would make
// authorization scope ambiguous.
//
// Parameters:
//   - groups: Validated group declarations from config.yaml
//
// Returns:
//   - *Topology: Immutable topology ready for concurrent lookups
//   - error: If any uniqueness invariant is violated
func New(groups []config.GroupConfig) (*Topology, error) {
	t := &Topology{
		byToken: make(map[string]*Group, len(groups)),
	}

	for _, gc := range groups {
		if existing, ok := t.byToken[gc.Token]; ok {
			return nil, fmt.Errorf("groups %q and %q share a token", existing.Name, gc.Name)
		}

		g := &Group{
			Name:      gc.Name,
			Token:     gc.Token,
			endpoints: make(map[string]*Endpoint, len(gc.Endpoints)),
		}
		for _, ec := range gc.Endpoints {
			if _, ok := g.endpoints[ec.Name]; ok {
				return nil, fmt.Errorf("group %q declares endpoint %q twice", gc.Name, ec.Name)
			}
			g.endpoints[ec.Name] = &Endpoint{
				Name:      ec.Name,
				GroupName: gc.Name,
				Address:   ec.Address,
				Username:  ec.Username,
				Password:  ec.Password,
			}
		}

		t.groups = append(t.groups, g)
		t.byToken[gc.Token] = g
	}

	return t, nil
}

// GroupByToken returns the group owning the presented token, or false if no
// group owns it. Token-to-group lookup is injective: at most one group can
// match.
func (t *Topology) GroupByToken(token string) (*Group, bool) {
	g, ok := t.byToken[token]
	return g, ok
}

// Groups returns all groups in declaration order.
func (t *Topology) Groups() []*Group {
	return t.groups
}

// GroupCount returns the number of groups in the topology.
func (t *Topology) GroupCount() int {
	return len(t.groups)
}

// EndpointCount returns the total number of endpoints across all groups.
func (t *Topology) EndpointCount() int {
	n := 0
	for _, g := range t.groups {
		n += len(g.endpoints)
	}
	return n
}
