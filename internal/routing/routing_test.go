package routing

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"fabricsim/internal/domain"
	"fabricsim/internal/pathfind"
	"fabricsim/internal/topology"
)

func build(t *testing.T) *domain.Topology {
	t.Helper()
	layout := topology.DefaultLayout()
	layout.Aggregations[0].Edges[0].Hosts = 3
	layout.Aggregations[0].Edges[1].Hosts = 2
	layout.Aggregations[1].Edges[0].Hosts = 0
	layout.Aggregations[1].Edges[1].Hosts = 2

	topo, err := topology.NewBuilder(layout, topology.WithSeed(13)).Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return topo
}

// pair has two isolated nodes
type pair struct{}

func (pair) Contains(id string) bool            { return id == "a" || id == "b" }
func (pair) Neighbors(string) []string          { return nil }
func (pair) Latency(string, string) (int, bool) { return 0, false }
func (pair) NodeIDs() []string                  { return []string{"a", "b"} }

func TestTableCompleteness(t *testing.T) {
	topo := build(t)
	gen := NewGenerator(topo)

	for _, src := range topo.NodeIDs() {
		table, err := gen.Table(src)
		if err != nil {
			t.Fatalf("Table(%s) error: %v", src, err)
		}
		if len(table.Entries) != topo.Len()-1 {
			t.Fatalf("Table(%s) has %d entries, want %d", src, len(table.Entries), topo.Len()-1)
		}

		seen := make(map[string]bool)
		for _, e := range table.Entries {
			if e.Destination == src {
				t.Errorf("Table(%s) lists itself", src)
			}
			if seen[e.Destination] {
				t.Errorf("Table(%s) lists %s twice", src, e.Destination)
			}
			seen[e.Destination] = true
		}
	}
}

func TestTableOrderFollowsEnumeration(t *testing.T) {
	topo := build(t)
	table, err := NewGenerator(topo).Table("e1-h1")
	if err != nil {
		t.Fatalf("Table() error: %v", err)
	}

	var want []string
	for _, id := range topo.NodeIDs() {
		if id != "e1-h1" {
			want = append(want, id)
		}
	}
	var got []string
	for _, e := range table.Entries {
		got = append(got, e.Destination)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("destination order mismatch (-want +got):\n%s", diff)
	}
}

func TestNextHopIsSecondPathNode(t *testing.T) {
	topo := build(t)
	gen := NewGenerator(topo)

	for _, src := range topo.NodeIDs() {
		table, _ := gen.Table(src)
		for _, e := range table.Entries {
			path, err := pathfind.ShortestPath(topo, src, e.Destination)
			if err != nil {
				t.Fatalf("ShortestPath() error: %v", err)
			}
			if e.NextHop != path[1] {
				t.Errorf("%s→%s next hop = %s, want %s", src, e.Destination, e.NextHop, path[1])
			}
			if !e.Path.Equal(path) {
				t.Errorf("%s→%s path = %v, want %v", src, e.Destination, e.Path, path)
			}
			if len(path) == 2 && e.NextHop != e.Destination {
				t.Errorf("adjacent %s→%s next hop = %s", src, e.Destination, e.NextHop)
			}
		}
	}
}

func TestCoreTable(t *testing.T) {
	topo := build(t)
	table, err := NewGenerator(topo).Table("core")
	if err != nil {
		t.Fatalf("Table() error: %v", err)
	}

	tests := []struct {
		dst     string
		nextHop string
	}{
		{"agg1", "agg1"},
		{"agg2", "agg2"},
		{"e1", "agg1"},
		{"e2", "agg1"},
		{"e3", "agg2"},
		{"e4", "agg2"},
		{"e1-h3", "agg1"},
		{"e2-h1", "agg1"},
		{"e4-h2", "agg2"},
	}
	for _, tt := range tests {
		e, ok := table.Lookup(tt.dst)
		if !ok {
			t.Errorf("Lookup(%s) missing", tt.dst)
			continue
		}
		if e.NextHop != tt.nextHop {
			t.Errorf("core→%s next hop = %s, want %s", tt.dst, e.NextHop, tt.nextHop)
		}
	}

	if _, ok := table.Lookup("core"); ok {
		t.Error("core table should not list core")
	}
}

func TestTableUnknownSource(t *testing.T) {
	_, err := NewGenerator(build(t)).Table("ghost")
	if !errors.Is(err, domain.ErrInvalidNodeReference) {
		t.Errorf("Table() error = %v, want ErrInvalidNodeReference", err)
	}
}

func TestTableNoPath(t *testing.T) {
	table, err := NewGenerator(pair{}).Table("a")
	if err != nil {
		t.Fatalf("Table() error: %v", err)
	}
	if len(table.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(table.Entries))
	}
	e := table.Entries[0]
	if e.Destination != "b" || e.Reachable || e.NextHop != "" {
		t.Errorf("entry = %+v, want explicit no-path entry for b", e)
	}

	var buf bytes.Buffer
	if _, err := table.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error: %v", err)
	}
	if !strings.Contains(buf.String(), "no path") {
		t.Errorf("report should mark the missing route, got %q", buf.String())
	}
}

func TestWriteTo(t *testing.T) {
	topo := build(t)
	table, _ := NewGenerator(topo).Table("core")

	var buf bytes.Buffer
	n, err := table.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo() error: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo() = %d, buffer holds %d bytes", n, buf.Len())
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Routing table for core:" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != topo.Len() {
		t.Errorf("expected %d lines, got %d", topo.Len(), len(lines))
	}
	if !strings.Contains(lines[1], "agg1") || !strings.Contains(lines[1], "[core -> agg1]") {
		t.Errorf("first entry = %q", lines[1])
	}
}

func TestAll(t *testing.T) {
	topo := build(t)
	gen := NewGenerator(topo)

	for _, workers := range []int{0, 1, 4} {
		tables, err := gen.All(context.Background(), workers)
		if err != nil {
			t.Fatalf("All(%d) error: %v", workers, err)
		}
		if len(tables) != topo.Len() {
			t.Fatalf("All(%d) returned %d tables, want %d", workers, len(tables), topo.Len())
		}
		for i, id := range topo.NodeIDs() {
			if tables[i].Source != id {
				t.Errorf("All(%d)[%d].Source = %s, want %s", workers, i, tables[i].Source, id)
			}
			single, _ := gen.Table(id)
			if diff := cmp.Diff(single, tables[i]); diff != "" {
				t.Errorf("All(%d) table for %s differs from Table() (-want +got):\n%s", workers, id, diff)
			}
		}
	}
}

func TestAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator(build(t)).All(ctx, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("All() error = %v, want context.Canceled", err)
	}
}
