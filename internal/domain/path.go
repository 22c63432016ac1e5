package domain

import "strings"

// Path is an ordered sequence of node IDs from source to destination.
// Consecutive IDs are always joined by an edge.
type Path []string

// Source returns the first node, or "" for an empty path
func (p Path) Source() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Destination returns the last node, or "" for an empty path
func (p Path) Destination() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Hops returns the number of edges traversed
func (p Path) Hops() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Reverse returns a new path from destination back to source
func (p Path) Reverse() Path {
	out := make(Path, len(p))
	for i, id := range p {
		out[len(p)-1-i] = id
	}
	return out
}

// Equal compares two paths element by element
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	return "[" + strings.Join(p, " -> ") + "]"
}
