package topology

import (
	"fmt"
	"net/netip"

	"fabricsim/internal/addressing"
)

// Layout describes the shape of the fabric to build
type Layout struct {
	Prefix       netip.Prefix
	Core         SwitchSpec
	Aggregations []AggregationSpec
	Latency      LatencyRange
}

// SwitchSpec names a switch and the pool its group draws from
type SwitchSpec struct {
	Name string
	Pool addressing.Range
}

// AggregationSpec describes one aggregation switch and its edge switches.
// The aggregation switch and its edge switches share Pool.
type AggregationSpec struct {
	Name  string
	Pool  addressing.Range
	Edges []EdgeSpec
}

// EdgeSpec describes one edge switch and how many hosts hang from it.
// Pool is only consulted when Hosts > 0.
type EdgeSpec struct {
	Name  string
	Hosts int
	Pool  addressing.Range
}

// LatencyRange bounds per-edge latency in milliseconds, inclusive
type LatencyRange struct {
	Min int
	Max int
}

// DefaultLatency is the 1..5ms range the fabric uses unless configured
var DefaultLatency = LatencyRange{Min: 1, Max: 5}

// Validate checks names, host counts and the latency range
func (l Layout) Validate() error {
	if l.Core.Name == "" {
		return fmt.Errorf("core switch needs a name")
	}
	if len(l.Aggregations) == 0 {
		return fmt.Errorf("at least one aggregation switch is required")
	}
	if l.Latency.Min < 1 {
		return fmt.Errorf("latency min must be at least 1, got %d", l.Latency.Min)
	}
	if l.Latency.Max < l.Latency.Min {
		return fmt.Errorf("latency max %d below min %d", l.Latency.Max, l.Latency.Min)
	}

	names := map[string]bool{l.Core.Name: true}
	claim := func(name string) error {
		if name == "" {
			return fmt.Errorf("switch names must not be empty")
		}
		if names[name] {
			return fmt.Errorf("duplicate switch name %q", name)
		}
		names[name] = true
		return nil
	}

	for _, agg := range l.Aggregations {
		if err := claim(agg.Name); err != nil {
			return err
		}
		for _, edge := range agg.Edges {
			if err := claim(edge.Name); err != nil {
				return err
			}
			if edge.Hosts < 0 {
				return fmt.Errorf("edge switch %q has negative host count %d", edge.Name, edge.Hosts)
			}
		}
	}

	return nil
}

// HostID names the i-th host (1-based) under an edge switch
func HostID(edge string, i int) string {
	return fmt.Sprintf("%s-h%d", edge, i)
}

func (l Layout) pools() []addressing.Pool {
	pools := []addressing.Pool{{Group: l.Core.Name, Range: l.Core.Pool}}
	for _, agg := range l.Aggregations {
		pools = append(pools, addressing.Pool{Group: agg.Name, Range: agg.Pool})
		for _, edge := range agg.Edges {
			if edge.Hosts == 0 && !edge.Pool.IsValid() {
				continue
			}
			pools = append(pools, addressing.Pool{Group: edge.Name, Range: edge.Pool})
		}
	}
	return pools
}

// DefaultLayout is the reference fabric: two aggregation switches, four
// edge switches with 23, 24, 14 and 14 hosts, inside 227.189.2.0/24.
func DefaultLayout() Layout {
	r := addressing.MustParseRange
	return Layout{
		Prefix: netip.MustParsePrefix("227.189.2.0/24"),
		Core:   SwitchSpec{Name: "core", Pool: r("227.189.2.97-227.189.2.127")},
		Aggregations: []AggregationSpec{
			{
				Name: "agg1",
				Pool: r("227.189.2.129-227.189.2.191"),
				Edges: []EdgeSpec{
					{Name: "e1", Hosts: 23, Pool: r("227.189.2.1-227.189.2.31")},
					{Name: "e2", Hosts: 24, Pool: r("227.189.2.33-227.189.2.63")},
				},
			},
			{
				Name: "agg2",
				Pool: r("227.189.2.193-227.189.2.255"),
				Edges: []EdgeSpec{
					{Name: "e3", Hosts: 14, Pool: r("227.189.2.65-227.189.2.79")},
					{Name: "e4", Hosts: 14, Pool: r("227.189.2.81-227.189.2.95")},
				},
			},
		},
		Latency: DefaultLatency,
	}
}
