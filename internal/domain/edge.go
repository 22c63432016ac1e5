package domain

import (
	"crypto/sha256"
	"fmt"
)

// Edge connects a parent node (A) to a child node (B)
type Edge struct {
	A         string `json:"a"`
	B         string `json:"b"`
	LatencyMS int    `json:"latency_ms"`
}

// NewEdge creates an edge between a and b with the given latency
func NewEdge(a, b string, latencyMS int) Edge {
	return Edge{A: a, B: b, LatencyMS: latencyMS}
}

// ID creates a deterministic identifier from the endpoints.
// The edge is unordered, so ID(a,b) == ID(b,a).
func (e Edge) ID() string {
	k := e.key()
	hash := sha256.Sum256([]byte(k.lo + "-" + k.hi))
	return fmt.Sprintf("%x", hash[:8])
}

type edgeKey struct {
	lo, hi string
}

func (e Edge) key() edgeKey {
	return makeKey(e.A, e.B)
}

func makeKey(a, b string) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}
