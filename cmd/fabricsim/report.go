package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"fabricsim/internal/domain"
	"fabricsim/internal/routing"
	"fabricsim/internal/service"
	"fabricsim/internal/topology"

	"github.com/dustin/go-humanize"
)

// demoPairs are the host pairs diagnosed at startup when they exist
var demoPairs = [][2]string{
	{topology.HostID("e1", 1), topology.HostID("e2", 10)},
	{topology.HostID("e3", 1), topology.HostID("e4", 5)},
}

// writeTopology prints every edge with its latency, then every address
func writeTopology(w io.Writer, topo *domain.Topology) {
	fmt.Fprintln(w, "Edges:")
	for _, e := range topo.Edges() {
		fmt.Fprintf(w, "%s <-> %s, latency: %dms\n", e.A, e.B, e.LatencyMS)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Addresses:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, n := range topo.Nodes() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", n.ID, n.Role, n.Address)
	}
	tw.Flush()
}

// diagnosticPairs returns the demo pairs present in topo, or the first and last
// host when none of them are
func diagnosticPairs(topo *domain.Topology) [][2]string {
	var pairs [][2]string
	for _, p := range demoPairs {
		if topo.Contains(p[0]) && topo.Contains(p[1]) {
			pairs = append(pairs, p)
		}
	}
	if len(pairs) > 0 {
		return pairs
	}

	hosts := topo.NodesByRole(domain.RoleHost)
	if len(hosts) < 2 {
		return nil
	}
	return [][2]string{{hosts[0].ID, hosts[len(hosts)-1].ID}}
}

// writeDiagnostics runs ping and traceroute for every diagnostic pair
func writeDiagnostics(w io.Writer, svc *service.SimulationService) error {
	for _, p := range diagnosticPairs(svc.Topology()) {
		ping, err := svc.Ping(p[0], p[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(w, ping)

		trace, err := svc.Traceroute(p[0], p[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(w, trace)
		fmt.Fprintln(w)
	}
	return nil
}

// writeRoutingTables prints the core's table, or every table when all is set
func writeRoutingTables(ctx context.Context, w io.Writer, svc *service.SimulationService, all bool) error {
	var tables []*routing.Table
	if all {
		var err error
		if tables, err = svc.RoutingTables(ctx); err != nil {
			return err
		}
	} else {
		table, err := svc.RoutingTable(svc.Topology().Core().ID)
		if err != nil {
			return err
		}
		tables = []*routing.Table{table}
	}

	for _, table := range tables {
		if _, err := table.WriteTo(w); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}

// writeSnapshots lists archived snapshots with their age
func writeSnapshots(w io.Writer, snaps []domain.Snapshot, now time.Time) {
	if len(snaps) == 0 {
		fmt.Fprintln(w, "No snapshots archived")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tNODES\tSEED\tCREATED")
	for _, s := range snaps {
		seed := "-"
		if s.Seed != nil {
			seed = fmt.Sprintf("%d", *s.Seed)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Name, humanize.Comma(int64(s.NodeCount)), seed, humanize.RelTime(s.CreatedAt, now, "ago", "from now"))
	}
	tw.Flush()
}
