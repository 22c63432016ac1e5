// Package codec reads and writes topology snapshots.
//
// A snapshot is a plain adjacency list: nodes with role, group, parent and
// address, edges with latency, plus the seed the latencies came from.
// Importing always goes back through domain.NewTopology, so a decoded
// snapshot obeys the same invariants as a freshly built one.
package codec

import (
	"io"

	"fabricsim/internal/domain"
)

// Importer interface for importing topologies from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Topology, error)
	Format() string
}

// Exporter interface for exporting topologies to various formats
type Exporter interface {
	Export(t *domain.Topology, w io.Writer) error
	Format() string
}

// Exporters returns every exporter keyed by format
func Exporters() map[string]Exporter {
	out := make(map[string]Exporter)
	for _, e := range []Exporter{NewJSONCodec(), NewYAMLCodec(), NewAnsibleCodec()} {
		out[e.Format()] = e
	}
	return out
}
