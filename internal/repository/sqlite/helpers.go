package sqlite

import (
	"database/sql"
	"fmt"
	"net/netip"
	"time"

	"fabricsim/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// seedToNull stores a uint64 seed in SQLite's signed INTEGER column.
// The bit pattern is preserved, so nullToSeed recovers the same value.
func seedToNull(seed *uint64) sql.NullInt64 {
	if seed == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*seed), Valid: true}
}

// nullToSeed reverses seedToNull
func nullToSeed(ni sql.NullInt64) *uint64 {
	if !ni.Valid {
		return nil
	}
	seed := uint64(ni.Int64)
	return &seed
}

// timeLayout is fixed width so stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime renders timestamps as sortable UTC text
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// ============================================================================
// Row Scanning Helpers
// ============================================================================

// nodeRow holds the raw columns of snapshot_nodes
type nodeRow struct {
	id      string
	role    string
	group   string
	parent  sql.NullString
	address string
}

func (r *nodeRow) scanArgs() []interface{} {
	return []interface{}{&r.id, &r.role, &r.group, &r.parent, &r.address}
}

func (r *nodeRow) toDomain() (domain.Node, error) {
	role, ok := domain.ParseRole(r.role)
	if !ok {
		return domain.Node{}, fmt.Errorf("node %q: unknown role %q", r.id, r.role)
	}
	addr, err := netip.ParseAddr(r.address)
	if err != nil {
		return domain.Node{}, fmt.Errorf("node %q: %w", r.id, err)
	}
	return domain.NewNode(r.id, role, r.group, nullToString(r.parent)).WithAddress(addr), nil
}

// edgeRow holds the raw columns of snapshot_edges
type edgeRow struct {
	a, b      string
	latencyMS int
}

func (r *edgeRow) scanArgs() []interface{} {
	return []interface{}{&r.a, &r.b, &r.latencyMS}
}

func (r *edgeRow) toDomain() domain.Edge {
	return domain.NewEdge(r.a, r.b, r.latencyMS)
}

// snapshotRow holds the raw columns of snapshots
type snapshotRow struct {
	id        string
	name      string
	seed      sql.NullInt64
	nodeCount int
	edgeCount int
	createdAt string
}

func (r *snapshotRow) scanArgs() []interface{} {
	return []interface{}{&r.id, &r.name, &r.seed, &r.nodeCount, &r.edgeCount, &r.createdAt}
}

func (r *snapshotRow) toDomain() (*domain.Snapshot, error) {
	created, err := parseTime(r.createdAt)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: bad created_at: %w", r.id, err)
	}
	return &domain.Snapshot{
		ID:        r.id,
		Name:      r.name,
		Seed:      nullToSeed(r.seed),
		NodeCount: r.nodeCount,
		EdgeCount: r.edgeCount,
		CreatedAt: created,
	}, nil
}
