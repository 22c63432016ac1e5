// Package pathfind computes paths and path latencies over a fabric.
//
// The fabric is a tree, so there is exactly one simple path between two
// nodes; breadth-first search finds it without looking at weights.
// Latency only matters once the path is known.
package pathfind

import (
	"fmt"

	"fabricsim/internal/domain"
)

// Graph is the read-only view the engine needs. *domain.Topology satisfies it.
type Graph interface {
	Contains(id string) bool
	Neighbors(id string) []string
	Latency(a, b string) (int, bool)
}

// ShortestPath returns the path from src to dst, inclusive of both.
// A path from a node to itself is that single node.
func ShortestPath(g Graph, src, dst string) (domain.Path, error) {
	if !g.Contains(src) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidNodeReference, src)
	}
	if !g.Contains(dst) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidNodeReference, dst)
	}
	if src == dst {
		return domain.Path{src}, nil
	}

	prev := map[string]string{src: ""}
	queue := []string{src}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, next := range g.Neighbors(cur) {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			if next == dst {
				return walkBack(prev, src, dst), nil
			}
			queue = append(queue, next)
		}
	}

	return nil, fmt.Errorf("%w: no path from %q to %q", domain.ErrUnreachable, src, dst)
}

func walkBack(prev map[string]string, src, dst string) domain.Path {
	var rev domain.Path
	for cur := dst; cur != src; cur = prev[cur] {
		rev = append(rev, cur)
	}
	rev = append(rev, src)
	return rev.Reverse()
}

// Latency sums the edge weights along p. A single-node path costs 0.
//
// It panics if two consecutive nodes are not adjacent: callers only pass
// paths produced by ShortestPath.
func Latency(g Graph, p domain.Path) int {
	total := 0
	for i := 1; i < len(p); i++ {
		l, ok := g.Latency(p[i-1], p[i])
		if !ok {
			panic(fmt.Sprintf("pathfind: %s and %s are not adjacent", p[i-1], p[i]))
		}
		total += l
	}
	return total
}

// HopLatencies returns the latency of the edge leading into each node of
// p after the source, so len(result) == p.Hops().
func HopLatencies(g Graph, p domain.Path) []int {
	if len(p) < 2 {
		return nil
	}
	out := make([]int, 0, len(p)-1)
	for i := 1; i < len(p); i++ {
		out = append(out, Latency(g, p[i-1:i+1]))
	}
	return out
}
