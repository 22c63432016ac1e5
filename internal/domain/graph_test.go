package domain

import "testing"

func TestDeriveGraph(t *testing.T) {
	nodes, edges := smallFabric()
	topo, err := NewTopology(nodes, edges)
	if err != nil {
		t.Fatalf("NewTopology() error: %v", err)
	}

	graph := DeriveGraph(topo)

	t.Run("one graph node per topology node", func(t *testing.T) {
		if len(graph.Nodes) != topo.Len() {
			t.Errorf("expected %d nodes, got %d", topo.Len(), len(graph.Nodes))
		}
	})

	t.Run("one graph edge per topology edge", func(t *testing.T) {
		if len(graph.Edges) != len(edges) {
			t.Errorf("expected %d edges, got %d", len(edges), len(graph.Edges))
		}
	})

	t.Run("colours follow role", func(t *testing.T) {
		for _, n := range graph.Nodes {
			want := ColorSwitch
			if n.Group == string(RoleHost) {
				want = ColorHost
			}
			if n.Color != want {
				t.Errorf("node %s: expected color %s, got %s", n.ID, want, n.Color)
			}
		}
	})

	t.Run("edge labels carry latency", func(t *testing.T) {
		first := graph.Edges[0]
		if first.From != "core" || first.To != "agg1" {
			t.Errorf("expected first edge core-agg1, got %s-%s", first.From, first.To)
		}
		if first.Label != "1ms" || first.LatencyMS != 1 {
			t.Errorf("expected label 1ms, got %s (%d)", first.Label, first.LatencyMS)
		}
	})

	t.Run("levels follow tiers", func(t *testing.T) {
		for _, n := range graph.Nodes {
			if n.ID == "h1" && n.Level != 3 {
				t.Errorf("expected host level 3, got %d", n.Level)
			}
			if n.ID == "core" && n.Level != 0 {
				t.Errorf("expected core level 0, got %d", n.Level)
			}
		}
	})
}
