// Package addressing assigns IPv4 addresses to fabric nodes from
// per-group pools.
//
// A group is the key a node draws from: hosts use their edge switch's
// group, edge switches share their aggregation switch's group, and the core
// has its own. Pools must sit inside the base prefix and must not overlap,
// so an address alone tells which part of the tree it belongs to.
package addressing

import (
	"fmt"
	"net/netip"

	"fabricsim/internal/domain"
)

// Pool binds a Range to the group that draws from it
type Pool struct {
	Group string
	Range Range
}

// Request asks for one address for NodeID out of Group's pool
type Request struct {
	NodeID string
	Group  string
}

// Allocator hands out addresses from a fixed set of disjoint pools
type Allocator struct {
	pools map[string]Range
}

// NewAllocator validates the pools against prefix and against each other
func NewAllocator(prefix netip.Prefix, pools []Pool) (*Allocator, error) {
	if !prefix.IsValid() || !prefix.Addr().Is4() {
		return nil, fmt.Errorf("base prefix %s must be IPv4", prefix)
	}
	prefix = prefix.Masked()

	a := &Allocator{
		pools: make(map[string]Range, len(pools)),
	}

	for i, p := range pools {
		if p.Group == "" {
			return nil, fmt.Errorf("pool %d has no group", i)
		}
		if _, dup := a.pools[p.Group]; dup {
			return nil, fmt.Errorf("duplicate pool for group %q", p.Group)
		}
		if err := p.Range.validate(); err != nil {
			return nil, fmt.Errorf("pool %q: %w", p.Group, err)
		}
		if !p.Range.Within(prefix) {
			return nil, fmt.Errorf("pool %q (%s) lies outside %s", p.Group, p.Range, prefix)
		}
		for _, q := range pools[:i] {
			if p.Range.Overlaps(q.Range) {
				return nil, fmt.Errorf("pool %q (%s) overlaps pool %q (%s)", p.Group, p.Range, q.Group, q.Range)
			}
		}
		a.pools[p.Group] = p.Range
	}

	return a, nil
}

// Allocate assigns one address per request.
//
// Members of a group receive consecutive addresses from the start of the
// group's pool, in request order. Pool sizes are checked before anything is
// assigned, so a failed call never returns a partial map. The result is a
// pure function of the pools and the request order.
func (a *Allocator) Allocate(reqs []Request) (map[string]netip.Addr, error) {
	counts := make(map[string]int)
	var groups []string
	seen := make(map[string]bool, len(reqs))

	for _, req := range reqs {
		if seen[req.NodeID] {
			return nil, fmt.Errorf("node %q requested twice", req.NodeID)
		}
		seen[req.NodeID] = true
		if counts[req.Group] == 0 {
			groups = append(groups, req.Group)
		}
		counts[req.Group]++
	}

	for _, g := range groups {
		r, ok := a.pools[g]
		if !ok {
			return nil, fmt.Errorf("%w: group %q needs %d addresses but has no pool",
				domain.ErrAllocationExhausted, g, counts[g])
		}
		if counts[g] > r.Size() {
			return nil, fmt.Errorf("%w: group %q needs %d addresses, pool %q holds %d",
				domain.ErrAllocationExhausted, g, counts[g], r.String(), r.Size())
		}
	}

	out := make(map[string]netip.Addr, len(reqs))
	next := make(map[string]int, len(groups))
	for _, req := range reqs {
		out[req.NodeID] = a.pools[req.Group].At(next[req.Group])
		next[req.Group]++
	}

	return out, nil
}
