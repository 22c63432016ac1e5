// Package diagnostics simulates ping and traceroute over a fabric.
//
// Both operations are pure functions of the topology: nothing is sent and
// nothing is mutated. An unreachable destination produces a result marked
// unreachable rather than an error, the way real diagnostic tools report
// failure instead of aborting. Naming a node that does not exist is an
// error (domain.ErrInvalidNodeReference).
package diagnostics

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"fabricsim/internal/domain"
	"fabricsim/internal/pathfind"
)

// Network is what the simulator needs: paths plus addresses
type Network interface {
	pathfind.Graph
	Address(id string) (netip.Addr, bool)
}

// PingResult is the outcome of one simulated ping
type PingResult struct {
	Source      string      `json:"source"`
	Destination string      `json:"destination"`
	Address     netip.Addr  `json:"address"`
	Reachable   bool        `json:"reachable"`
	Path        domain.Path `json:"path,omitempty"`
	Hops        int         `json:"hops"`
	LatencyMS   int         `json:"latency_ms"`
}

func (r *PingResult) String() string {
	if !r.Reachable {
		return fmt.Sprintf("PING %s: destination unreachable", r.Address)
	}
	return fmt.Sprintf("PING %s: path = %s, total latency = %dms", r.Address, r.Path, r.LatencyMS)
}

// Hop is one line of a traceroute
type Hop struct {
	Index     int        `json:"index"` // 1-based
	Node      string     `json:"node"`
	Address   netip.Addr `json:"address"`
	LatencyMS int        `json:"latency_ms"` // edge leading into this hop
}

// TraceResult is the outcome of one simulated traceroute
type TraceResult struct {
	Source      string     `json:"source"`
	Destination string     `json:"destination"`
	Address     netip.Addr `json:"address"`
	Reachable   bool       `json:"reachable"`
	Hops        []Hop      `json:"hops,omitempty"`
}

// TotalLatency sums the per-hop latencies
func (r *TraceResult) TotalLatency() int {
	total := 0
	for _, h := range r.Hops {
		total += h.LatencyMS
	}
	return total
}

// Lines renders the report: a header, one line per hop, then the total
func (r *TraceResult) Lines() []string {
	if !r.Reachable {
		return []string{fmt.Sprintf("TRACEROUTE %s: destination unreachable", r.Address)}
	}
	lines := make([]string, 0, len(r.Hops)+2)
	lines = append(lines, fmt.Sprintf("TRACEROUTE to %s:", r.Address))
	for _, h := range r.Hops {
		lines = append(lines, fmt.Sprintf("%d %s %dms", h.Index, h.Address, h.LatencyMS))
	}
	lines = append(lines, fmt.Sprintf("total latency = %dms", r.TotalLatency()))
	return lines
}

func (r *TraceResult) String() string {
	return strings.Join(r.Lines(), "\n")
}

// Ping reports the path from src to dst and its total latency
func Ping(n Network, src, dst string) (*PingResult, error) {
	addr, path, err := route(n, src, dst)
	if err != nil {
		return nil, err
	}

	result := &PingResult{
		Source:      src,
		Destination: dst,
		Address:     addr,
	}
	if path == nil {
		return result, nil
	}

	result.Reachable = true
	result.Path = path
	result.Hops = path.Hops()
	result.LatencyMS = pathfind.Latency(n, path)
	return result, nil
}

// Traceroute reports every hop after src with the latency of the edge
// leading into it. Tracing a node to itself yields no hops.
func Traceroute(n Network, src, dst string) (*TraceResult, error) {
	addr, path, err := route(n, src, dst)
	if err != nil {
		return nil, err
	}

	result := &TraceResult{
		Source:      src,
		Destination: dst,
		Address:     addr,
	}
	if path == nil {
		return result, nil
	}

	result.Reachable = true
	result.Hops = make([]Hop, 0, path.Hops())
	for i, latency := range pathfind.HopLatencies(n, path) {
		node := path[i+1]
		hopAddr, _ := n.Address(node)
		result.Hops = append(result.Hops, Hop{
			Index:     i + 1,
			Node:      node,
			Address:   hopAddr,
			LatencyMS: latency,
		})
	}
	return result, nil
}

// route resolves the destination address and path. A nil path with a nil
// error means the destination exists but cannot be reached.
func route(n Network, src, dst string) (netip.Addr, domain.Path, error) {
	if !n.Contains(src) {
		return netip.Addr{}, nil, fmt.Errorf("%w: %q", domain.ErrInvalidNodeReference, src)
	}
	addr, ok := n.Address(dst)
	if !ok || !n.Contains(dst) {
		return netip.Addr{}, nil, fmt.Errorf("%w: %q", domain.ErrInvalidNodeReference, dst)
	}

	path, err := pathfind.ShortestPath(n, src, dst)
	if errors.Is(err, domain.ErrUnreachable) {
		return addr, nil, nil
	}
	if err != nil {
		return netip.Addr{}, nil, err
	}
	return addr, path, nil
}
