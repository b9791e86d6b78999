package auth

import (
	"errors"

	"github.com/nerrad567/chassisd/internal/topology"
)

// Sentinel errors returned by Authorize.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnauthorized is returned when no group owns the presented token.
	// It deliberately does not distinguish "token never existed" from
	// "token belongs to a different scope".
	ErrUnauthorized = errors.New("auth: invalid token")

	// ErrNotFound is returned when the token is valid but its group does
	// not own an endpoint with the requested name.
	ErrNotFound = errors.New("auth: endpoint not found")
)

// Resolver authorizes bearer tokens against the topology.
//
// The topology is immutable, so a Resolver is safe for concurrent use.
type Resolver struct {
	topo *topology.Topology
}

// NewResolver creates a Resolver over the given topology.
func NewResolver(topo *topology.Topology) *Resolver {
	return &Resolver{topo: topo}
}

// Authorize maps a presented token and endpoint name to the endpoint the
// caller may operate on.
//
// The two-step ordering is deliberate and load-bearing:
//  1. Token lookup first. An unknown token yields ErrUnauthorized before
//     the endpoint name is ever considered.
//  2. Endpoint lookup within the token's group only. A name the group does
//     not own yields ErrNotFound, even if another group owns it.
//
// Returns:
//   - *topology.Endpoint: The authorized endpoint on success
//   - error: ErrUnauthorized or ErrNotFound
func (r *Resolver) Authorize(token, endpointName string) (*topology.Endpoint, error) {
	group, ok := r.topo.GroupByToken(token)
	if !ok {
		return nil, ErrUnauthorized
	}

	ep, ok := group.Endpoint(endpointName)
	if !ok {
		return nil, ErrNotFound
	}

	return ep, nil
}

// GroupForToken returns the group owning the presented token, for callers
// that need group identity without naming an endpoint (audit listing).
func (r *Resolver) GroupForToken(token string) (*topology.Group, error) {
	group, ok := r.topo.GroupByToken(token)
	if !ok {
		return nil, ErrUnauthorized
	}
	return group, nil
}
