package domain

import "fmt"

// Graph is the layout-ready view consumed by renderers
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// GraphNode represents a node in the visualization
type GraphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Group string `json:"group"` // role, used for colour-coding
	Color string `json:"color"`
	Level int    `json:"level"` // tier for hierarchical layouts
	Title string `json:"title"` // Tooltip content
}

// GraphEdge represents an edge in the visualization
type GraphEdge struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Label     string `json:"label"` // "3ms"
	LatencyMS int    `json:"latency_ms"`
}

// Node colours: hosts red, switches blue
const (
	ColorHost   = "red"
	ColorSwitch = "blue"
)

// DeriveGraph converts a Topology to a renderer-friendly Graph
func DeriveGraph(t *Topology) *Graph {
	graph := &Graph{
		Nodes: make([]GraphNode, 0, t.Len()),
		Edges: make([]GraphEdge, 0, t.Len()-1),
	}

	for _, n := range t.Nodes() {
		graph.Nodes = append(graph.Nodes, GraphNode{
			ID:    n.ID,
			Label: n.ID,
			Group: string(n.Role),
			Color: roleColor(n.Role),
			Level: n.Role.Level(),
			Title: fmt.Sprintf("%s\n%s\n%s", n.ID, n.Role, n.Address),
		})
	}

	for _, e := range t.Edges() {
		graph.Edges = append(graph.Edges, GraphEdge{
			ID:        e.ID(),
			From:      e.A,
			To:        e.B,
			Label:     fmt.Sprintf("%dms", e.LatencyMS),
			LatencyMS: e.LatencyMS,
		})
	}

	return graph
}

func roleColor(r Role) string {
	if r == RoleHost {
		return ColorHost
	}
	return ColorSwitch
}
