// Package routing derives per-node routing tables from shortest paths.
//
// Tables are computed centrally, not learned: for every destination the
// next hop is the second node of the path toward it. A table lists every
// other node of the topology exactly once, in enumeration order.
package routing

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"fabricsim/internal/domain"
	"fabricsim/internal/pathfind"
)

// Network is what the generator needs: paths plus the node enumeration
type Network interface {
	pathfind.Graph
	NodeIDs() []string
}

// Entry is one destination → next hop → path row
type Entry struct {
	Destination string      `json:"destination"`
	NextHop     string      `json:"next_hop,omitempty"`
	Path        domain.Path `json:"path,omitempty"`
	Reachable   bool        `json:"reachable"`
}

// Table is the full routing table of one node
type Table struct {
	Source  string  `json:"source"`
	Entries []Entry `json:"entries"`
}

// Lookup returns the entry for dst
func (t *Table) Lookup(dst string) (Entry, bool) {
	for _, e := range t.Entries {
		if e.Destination == dst {
			return e, true
		}
	}
	return Entry{}, false
}

// WriteTo renders the table as a human-readable report
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	var written int64
	write := func(format string, args ...any) error {
		n, err := fmt.Fprintf(w, format, args...)
		written += int64(n)
		return err
	}

	if err := write("Routing table for %s:\n", t.Source); err != nil {
		return written, err
	}
	for _, e := range t.Entries {
		var err error
		if e.Reachable {
			err = write("  %-12s via %-12s path %s\n", e.Destination, e.NextHop, e.Path)
		} else {
			err = write("  %-12s no path\n", e.Destination)
		}
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// Generator computes routing tables over one network snapshot
type Generator struct {
	net Network
}

// NewGenerator creates a generator bound to n
func NewGenerator(n Network) *Generator {
	return &Generator{net: n}
}

// Table computes the routing table of src
func (g *Generator) Table(src string) (*Table, error) {
	if !g.net.Contains(src) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidNodeReference, src)
	}

	ids := g.net.NodeIDs()
	table := &Table{
		Source:  src,
		Entries: make([]Entry, 0, len(ids)-1),
	}

	for _, dst := range ids {
		if dst == src {
			continue
		}
		path, err := pathfind.ShortestPath(g.net, src, dst)
		switch {
		case errors.Is(err, domain.ErrUnreachable):
			table.Entries = append(table.Entries, Entry{Destination: dst})
		case err != nil:
			return nil, fmt.Errorf("route %s to %s: %w", src, dst, err)
		default:
			table.Entries = append(table.Entries, Entry{
				Destination: dst,
				NextHop:     path[1],
				Path:        path,
				Reachable:   true,
			})
		}
	}

	return table, nil
}

// All computes every node's table with up to workers goroutines.
// The snapshot is only read, so workers need no coordination. Results
// follow the node enumeration order.
func (g *Generator) All(ctx context.Context, workers int) ([]*Table, error) {
	ids := g.net.NodeIDs()
	tables := make([]*Table, len(ids))

	eg, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}

	for i, id := range ids {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			table, err := g.Table(id)
			if err != nil {
				return err
			}
			tables[i] = table
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
