// Package topology builds the core → aggregation → edge → host tree,
// assigns every node an address and draws a latency for every edge.
package topology

import (
	"fmt"
	"math/rand/v2"

	"fabricsim/internal/addressing"
	"fabricsim/internal/domain"
)

// Builder turns a Layout into an immutable domain.Topology
type Builder struct {
	layout Layout
	rng    *rand.Rand
	seed   uint64
	seeded bool
}

// Option configures a Builder
type Option func(*Builder)

// WithSeed makes latencies reproducible; the seed is recorded on the topology
func WithSeed(seed uint64) Option {
	return func(b *Builder) {
		b.seed = seed
		b.seeded = true
		b.rng = newRand(seed)
	}
}

// WithSource draws latencies from src. No seed is recorded.
func WithSource(src rand.Source) Option {
	return func(b *Builder) {
		b.rng = rand.New(src)
		b.seeded = false
	}
}

// NewBuilder creates a builder. Without an option a fresh seed is picked
// and recorded, so any run can be replayed with WithSeed.
func NewBuilder(layout Layout, opts ...Option) *Builder {
	b := &Builder{layout: layout}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		WithSeed(rand.Uint64())(b)
	}
	return b
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Build enumerates the nodes (core, aggregation switches, edge switches,
// then hosts grouped by edge switch), allocates their addresses and links
// each child to its parent with a latency drawn from the layout's range.
func (b *Builder) Build() (*domain.Topology, error) {
	l := b.layout
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	alloc, err := addressing.NewAllocator(l.Prefix, l.pools())
	if err != nil {
		return nil, fmt.Errorf("address plan: %w", err)
	}

	// Each Build replays the seed so repeated builds agree
	rng := b.rng
	if b.seeded {
		rng = newRand(b.seed)
	}
	link := func(parent, child string) domain.Edge {
		span := l.Latency.Max - l.Latency.Min + 1
		return domain.NewEdge(parent, child, l.Latency.Min+rng.IntN(span))
	}

	nodes := []domain.Node{domain.NewNode(l.Core.Name, domain.RoleCore, l.Core.Name, "")}
	var edges []domain.Edge

	for _, agg := range l.Aggregations {
		nodes = append(nodes, domain.NewNode(agg.Name, domain.RoleAggregation, agg.Name, l.Core.Name))
		edges = append(edges, link(l.Core.Name, agg.Name))
	}
	for _, agg := range l.Aggregations {
		for _, edge := range agg.Edges {
			nodes = append(nodes, domain.NewNode(edge.Name, domain.RoleEdge, agg.Name, agg.Name))
			edges = append(edges, link(agg.Name, edge.Name))
		}
	}
	for _, agg := range l.Aggregations {
		for _, edge := range agg.Edges {
			for i := 1; i <= edge.Hosts; i++ {
				id := HostID(edge.Name, i)
				nodes = append(nodes, domain.NewNode(id, domain.RoleHost, edge.Name, edge.Name))
				edges = append(edges, link(edge.Name, id))
			}
		}
	}

	reqs := make([]addressing.Request, len(nodes))
	for i, n := range nodes {
		reqs[i] = addressing.Request{NodeID: n.ID, Group: n.Group}
	}
	addrs, err := alloc.Allocate(reqs)
	if err != nil {
		return nil, fmt.Errorf("allocate addresses: %w", err)
	}
	for i := range nodes {
		nodes[i] = nodes[i].WithAddress(addrs[nodes[i].ID])
	}

	var opts []domain.TopologyOption
	if b.seeded {
		opts = append(opts, domain.WithSeed(b.seed))
	}
	return domain.NewTopology(nodes, edges, opts...)
}
