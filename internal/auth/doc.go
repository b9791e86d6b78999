// Package auth resolves presented bearer tokens to authorized endpoints.
//
// Authorization is strictly scoped per group: a token grants access to the
// endpoints its group owns and nothing else. The resolver checks token
// validity before endpoint existence, so an unauthenticated caller can never
// use endpoint-existence responses to enumerate endpoint names, and a caller
// holding one group's token can never learn whether a name exists under a
// different group.
package auth
