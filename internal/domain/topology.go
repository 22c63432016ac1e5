package domain

import (
	"fmt"
	"net/netip"
)

// Topology is the immutable node/edge snapshot of one fabric.
// All accessors return copies, so a Topology can be shared across goroutines.
type Topology struct {
	nodes   []Node
	index   map[string]int
	edges   []Edge
	adj     map[string][]string
	latency map[edgeKey]int

	seed   uint64
	seeded bool
}

// TopologyOption configures optional snapshot metadata
type TopologyOption func(*Topology)

// WithSeed records the random seed the latencies were drawn from
func WithSeed(seed uint64) TopologyOption {
	return func(t *Topology) {
		t.seed = seed
		t.seeded = true
	}
}

// NewTopology validates nodes and edges and returns the snapshot.
//
// The node order given here is the enumeration order used by every
// consumer. Validation enforces the tree invariants: exactly one core,
// every other node hangs from a parent one tier up, every edge is such a
// parent link, and addresses are unique.
func NewTopology(nodes []Node, edges []Edge, opts ...TopologyOption) (*Topology, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrInvalidTopology)
	}

	t := &Topology{
		nodes:   make([]Node, len(nodes)),
		index:   make(map[string]int, len(nodes)),
		edges:   make([]Edge, len(edges)),
		adj:     make(map[string][]string, len(nodes)),
		latency: make(map[edgeKey]int, len(edges)),
	}
	copy(t.nodes, nodes)
	copy(t.edges, edges)

	for _, opt := range opts {
		opt(t)
	}

	if err := t.indexNodes(); err != nil {
		return nil, err
	}
	if err := t.indexEdges(); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Topology) indexNodes() error {
	addresses := make(map[netip.Addr]string, len(t.nodes))
	cores := 0

	for i, n := range t.nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node %d has empty id", ErrInvalidTopology, i)
		}
		if _, dup := t.index[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node %q", ErrInvalidTopology, n.ID)
		}
		if !n.Role.Valid() {
			return fmt.Errorf("%w: node %q has unknown role %q", ErrInvalidTopology, n.ID, n.Role)
		}
		if !n.Address.IsValid() || !n.Address.Is4() {
			return fmt.Errorf("%w: node %q has no IPv4 address", ErrInvalidTopology, n.ID)
		}
		if other, dup := addresses[n.Address]; dup {
			return fmt.Errorf("%w: %s assigned to both %q and %q", ErrInvalidTopology, n.Address, other, n.ID)
		}
		addresses[n.Address] = n.ID
		if n.Role == RoleCore {
			cores++
		}
		t.index[n.ID] = i
	}

	if cores != 1 {
		return fmt.Errorf("%w: expected exactly one core switch, found %d", ErrInvalidTopology, cores)
	}

	// Parents are checked after indexing so they may appear in any order
	for _, n := range t.nodes {
		want, hasParent := n.Role.ParentRole()
		if !hasParent {
			if n.Parent != "" {
				return fmt.Errorf("%w: core %q must not have a parent", ErrInvalidTopology, n.ID)
			}
			continue
		}
		i, ok := t.index[n.Parent]
		if !ok {
			return fmt.Errorf("%w: %q has missing parent %q", ErrInvalidTopology, n.ID, n.Parent)
		}
		if got := t.nodes[i].Role; got != want {
			return fmt.Errorf("%w: %s %q must hang from a %s, not %s %q",
				ErrInvalidTopology, n.Role, n.ID, want, got, n.Parent)
		}
	}

	return nil
}

func (t *Topology) indexEdges() error {
	if len(t.edges) != len(t.nodes)-1 {
		return fmt.Errorf("%w: %d nodes need %d edges, got %d",
			ErrInvalidTopology, len(t.nodes), len(t.nodes)-1, len(t.edges))
	}

	for _, e := range t.edges {
		if e.A == e.B {
			return fmt.Errorf("%w: self loop on %q", ErrInvalidTopology, e.A)
		}
		if e.LatencyMS <= 0 {
			return fmt.Errorf("%w: edge %s-%s has non-positive latency %d", ErrInvalidTopology, e.A, e.B, e.LatencyMS)
		}
		a, okA := t.index[e.A]
		b, okB := t.index[e.B]
		if !okA || !okB {
			return fmt.Errorf("%w: edge %s-%s references unknown node", ErrInvalidTopology, e.A, e.B)
		}
		if t.nodes[b].Parent != e.A && t.nodes[a].Parent != e.B {
			return fmt.Errorf("%w: edge %s-%s is not a parent link", ErrInvalidTopology, e.A, e.B)
		}
		k := e.key()
		if _, dup := t.latency[k]; dup {
			return fmt.Errorf("%w: duplicate edge %s-%s", ErrInvalidTopology, e.A, e.B)
		}
		t.latency[k] = e.LatencyMS
		t.adj[e.A] = append(t.adj[e.A], e.B)
		t.adj[e.B] = append(t.adj[e.B], e.A)
	}

	return nil
}

// Len returns the number of nodes
func (t *Topology) Len() int {
	return len(t.nodes)
}

// Nodes returns every node in enumeration order
func (t *Topology) Nodes() []Node {
	out := make([]Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// NodeIDs returns every node ID in enumeration order
func (t *Topology) NodeIDs() []string {
	out := make([]string, len(t.nodes))
	for i, n := range t.nodes {
		out[i] = n.ID
	}
	return out
}

// NodesByRole returns the nodes of a single tier in enumeration order
func (t *Topology) NodesByRole(role Role) []Node {
	var out []Node
	for _, n := range t.nodes {
		if n.Role == role {
			out = append(out, n)
		}
	}
	return out
}

// Node looks up a node by ID
func (t *Topology) Node(id string) (Node, bool) {
	i, ok := t.index[id]
	if !ok {
		return Node{}, false
	}
	return t.nodes[i], true
}

// Contains reports whether id names a node in the topology
func (t *Topology) Contains(id string) bool {
	_, ok := t.index[id]
	return ok
}

// Core returns the root switch
func (t *Topology) Core() Node {
	for _, n := range t.nodes {
		if n.Role == RoleCore {
			return n
		}
	}
	// unreachable: NewTopology guarantees a core
	return Node{}
}

// Address returns the address assigned to id
func (t *Topology) Address(id string) (netip.Addr, bool) {
	n, ok := t.Node(id)
	if !ok {
		return netip.Addr{}, false
	}
	return n.Address, true
}

// Edges returns every edge in construction order
func (t *Topology) Edges() []Edge {
	out := make([]Edge, len(t.edges))
	copy(out, t.edges)
	return out
}

// Neighbors returns the nodes adjacent to id in edge order
func (t *Topology) Neighbors(id string) []string {
	adj := t.adj[id]
	out := make([]string, len(adj))
	copy(out, adj)
	return out
}

// Children returns the nodes whose parent is id
func (t *Topology) Children(id string) []string {
	var out []string
	for _, n := range t.nodes {
		if n.Parent == id && n.Parent != "" {
			out = append(out, n.ID)
		}
	}
	return out
}

// Latency returns the weight of the edge joining a and b
func (t *Topology) Latency(a, b string) (int, bool) {
	l, ok := t.latency[makeKey(a, b)]
	return l, ok
}

// Seed returns the random seed recorded at build time, if any
func (t *Topology) Seed() (uint64, bool) {
	return t.seed, t.seeded
}
