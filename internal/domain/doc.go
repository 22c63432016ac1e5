// Package domain defines the core types of the fabricsim network model.
//
// The model is a fixed four-tier tree: one core switch, aggregation switches
// below it, edge switches below those and hosts at the leaves. Every node
// carries its role, its address pool group and its parent explicitly; nothing
// is inferred from node names.
//
// # Core Types
//
// Node is a switch or host with an assigned IPv4 address.
//
// Edge connects a parent to a child and carries a latency in milliseconds.
//
// Topology is the validated, immutable snapshot of nodes and edges. It is
// built once (see the topology package) and then shared read-only.
//
// Path is an ordered list of node IDs from source to destination.
//
// Graph is the layout-ready view handed to renderers: role groups, colours
// and latency labels only.
//
// # Errors
//
// ErrUnreachable, ErrAllocationExhausted and ErrInvalidNodeReference form the
// error taxonomy shared by every package. ErrInvalidTopology reports a tree
// that breaks the structural invariants at construction time.
package domain
