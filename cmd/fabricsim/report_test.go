package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"fabricsim/internal/domain"
	"fabricsim/internal/service"
	"fabricsim/internal/topology"

	"github.com/google/go-cmp/cmp"
)

func fixedTopology(t *testing.T) *domain.Topology {
	t.Helper()
	layout := topology.DefaultLayout()
	layout.Latency = topology.LatencyRange{Min: 1, Max: 1}
	topo, err := topology.NewBuilder(layout, topology.WithSeed(5)).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return topo
}

func TestWriteTopology(t *testing.T) {
	var buf bytes.Buffer
	writeTopology(&buf, fixedTopology(t))
	out := buf.String()

	for _, want := range []string{
		"core <-> agg1, latency: 1ms\n",
		"e4 <-> e4-h14, latency: 1ms\n",
		"227.189.2.97",
		"227.189.2.94",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("writeTopology() output missing %q", want)
		}
	}
	if n := strings.Count(out, "<->"); n != 81 {
		t.Errorf("writeTopology() printed %d edges, want 81", n)
	}
}

func TestDiagnosticPairs(t *testing.T) {
	want := [][2]string{{"e1-h1", "e2-h10"}, {"e3-h1", "e4-h5"}}
	if diff := cmp.Diff(want, diagnosticPairs(fixedTopology(t))); diff != "" {
		t.Errorf("diagnosticPairs() mismatch (-want +got):\n%s", diff)
	}

	// A fabric without the demo hosts falls back to first and last host
	layout := topology.DefaultLayout()
	layout.Aggregations[0].Edges[1].Hosts = 3
	layout.Aggregations[1].Edges[1].Hosts = 2
	topo, err := topology.NewBuilder(layout, topology.WithSeed(1)).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want = [][2]string{{"e1-h1", "e4-h2"}}
	if diff := cmp.Diff(want, diagnosticPairs(topo)); diff != "" {
		t.Errorf("diagnosticPairs() fallback mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteDiagnostics(t *testing.T) {
	svc := service.NewSimulationService(fixedTopology(t), nil, nil)

	var buf bytes.Buffer
	if err := writeDiagnostics(&buf, svc); err != nil {
		t.Fatalf("writeDiagnostics() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"PING 227.189.2.42: path = [e1-h1 -> e1 -> agg1 -> e2 -> e2-h10], total latency = 4ms",
		"TRACEROUTE to 227.189.2.85:",
		"\ntotal latency = ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("writeDiagnostics() output missing %q\n%s", want, out)
		}
	}
}

func TestWriteRoutingTables(t *testing.T) {
	svc := service.NewSimulationService(fixedTopology(t), nil, nil)

	var core bytes.Buffer
	if err := writeRoutingTables(context.Background(), &core, svc, false); err != nil {
		t.Fatalf("writeRoutingTables() error = %v", err)
	}
	if n := strings.Count(core.String(), "Routing table for"); n != 1 {
		t.Errorf("core-only output has %d tables, want 1", n)
	}

	var all bytes.Buffer
	if err := writeRoutingTables(context.Background(), &all, svc, true); err != nil {
		t.Fatalf("writeRoutingTables(all) error = %v", err)
	}
	if n := strings.Count(all.String(), "Routing table for"); n != 82 {
		t.Errorf("full output has %d tables, want 82", n)
	}
}

func TestWriteSnapshots(t *testing.T) {
	var buf bytes.Buffer
	writeSnapshots(&buf, nil, time.Now())
	if got := buf.String(); got != "No snapshots archived\n" {
		t.Errorf("writeSnapshots(nil) = %q", got)
	}

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	seed := uint64(77)
	buf.Reset()
	writeSnapshots(&buf, []domain.Snapshot{
		{ID: "abc", Name: "baseline", Seed: &seed, NodeCount: 1200, CreatedAt: now.Add(-2 * time.Hour)},
	}, now)

	for _, want := range []string{"baseline", "1,200", "77", "2 hours ago"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("writeSnapshots() output missing %q\n%s", want, buf.String())
		}
	}
}
