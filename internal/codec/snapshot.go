package codec

import (
	"fmt"
	"net/netip"

	"fabricsim/internal/domain"
)

const snapshotVersion = 1

// snapshot is the wire form shared by the JSON and YAML codecs
type snapshot struct {
	Version int            `json:"version" yaml:"version"`
	Seed    *uint64        `json:"seed,omitempty" yaml:"seed,omitempty"`
	Nodes   []snapshotNode `json:"nodes" yaml:"nodes"`
	Edges   []snapshotEdge `json:"edges" yaml:"edges"`
}

type snapshotNode struct {
	ID      string `json:"id" yaml:"id"`
	Role    string `json:"role" yaml:"role"`
	Group   string `json:"group" yaml:"group"`
	Parent  string `json:"parent,omitempty" yaml:"parent,omitempty"`
	Address string `json:"address" yaml:"address"`
}

type snapshotEdge struct {
	A         string `json:"a" yaml:"a"`
	B         string `json:"b" yaml:"b"`
	LatencyMS int    `json:"latency_ms" yaml:"latency_ms"`
}

func toSnapshot(t *domain.Topology) snapshot {
	s := snapshot{Version: snapshotVersion}
	if seed, ok := t.Seed(); ok {
		s.Seed = &seed
	}
	for _, n := range t.Nodes() {
		s.Nodes = append(s.Nodes, snapshotNode{
			ID:      n.ID,
			Role:    string(n.Role),
			Group:   n.Group,
			Parent:  n.Parent,
			Address: n.Address.String(),
		})
	}
	for _, e := range t.Edges() {
		s.Edges = append(s.Edges, snapshotEdge{A: e.A, B: e.B, LatencyMS: e.LatencyMS})
	}
	return s
}

func (s snapshot) toTopology() (*domain.Topology, error) {
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}

	nodes := make([]domain.Node, 0, len(s.Nodes))
	for _, sn := range s.Nodes {
		role, ok := domain.ParseRole(sn.Role)
		if !ok {
			return nil, fmt.Errorf("node %q: unknown role %q", sn.ID, sn.Role)
		}
		addr, err := netip.ParseAddr(sn.Address)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", sn.ID, err)
		}
		nodes = append(nodes, domain.NewNode(sn.ID, role, sn.Group, sn.Parent).WithAddress(addr))
	}

	edges := make([]domain.Edge, 0, len(s.Edges))
	for _, se := range s.Edges {
		edges = append(edges, domain.NewEdge(se.A, se.B, se.LatencyMS))
	}

	var opts []domain.TopologyOption
	if s.Seed != nil {
		opts = append(opts, domain.WithSeed(*s.Seed))
	}
	return domain.NewTopology(nodes, edges, opts...)
}
