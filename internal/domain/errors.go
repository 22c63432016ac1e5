package domain

import "errors"

var (
	// ErrUnreachable means no path joins two nodes that both exist.
	// In a validly built tree this indicates a construction defect.
	ErrUnreachable = errors.New("destination unreachable")

	// ErrAllocationExhausted means an address pool is smaller than its group
	ErrAllocationExhausted = errors.New("address pool exhausted")

	// ErrInvalidNodeReference means a query named a node that is not in the topology
	ErrInvalidNodeReference = errors.New("unknown node")

	// ErrInvalidTopology means the node/edge set does not form the expected tree
	ErrInvalidTopology = errors.New("invalid topology")
)
