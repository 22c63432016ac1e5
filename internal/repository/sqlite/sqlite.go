package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fabricsim/internal/domain"
	"fabricsim/internal/repository"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and
	// serializes writers for file databases.
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		seed INTEGER,
		node_count INTEGER NOT NULL,
		edge_count INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshot_nodes (
		snapshot_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		role TEXT NOT NULL,
		grp TEXT NOT NULL,
		parent TEXT,
		address TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, id),
		FOREIGN KEY (snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS snapshot_edges (
		snapshot_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		a TEXT NOT NULL,
		b TEXT NOT NULL,
		latency_ms INTEGER NOT NULL,
		PRIMARY KEY (snapshot_id, position),
		FOREIGN KEY (snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// ============================================================================
// Snapshot Operations
// ============================================================================

// SaveTopology archives t in a single transaction
func (r *Repository) SaveTopology(ctx context.Context, name string, t *domain.Topology) (*domain.Snapshot, error) {
	if t == nil {
		return nil, fmt.Errorf("save snapshot: nil topology")
	}
	if name == "" {
		name = "snapshot"
	}

	snap := &domain.Snapshot{
		ID:        uuid.New().String(),
		Name:      name,
		NodeCount: t.Len(),
		EdgeCount: len(t.Edges()),
		CreatedAt: r.now().UTC(),
	}
	if seed, ok := t.Seed(); ok {
		snap.Seed = &seed
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, name, seed, node_count, edge_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Name, seedToNull(snap.Seed), snap.NodeCount, snap.EdgeCount, formatTime(snap.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_nodes (snapshot_id, position, id, role, grp, parent, address)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	for i, n := range t.Nodes() {
		_, err := nodeStmt.ExecContext(ctx, snap.ID, i, n.ID, string(n.Role), n.Group,
			stringToNull(n.Parent), n.Address.String())
		if err != nil {
			return nil, fmt.Errorf("insert node %s: %w", n.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_edges (snapshot_id, position, a, b, latency_ms)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare edge insert: %w", err)
	}
	defer edgeStmt.Close()

	for i, e := range t.Edges() {
		if _, err := edgeStmt.ExecContext(ctx, snap.ID, i, e.A, e.B, e.LatencyMS); err != nil {
			return nil, fmt.Errorf("insert edge %s-%s: %w", e.A, e.B, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}

	return snap, nil
}

// GetSnapshot retrieves snapshot metadata by ID
func (r *Repository) GetSnapshot(ctx context.Context, id string) (*domain.Snapshot, error) {
	var row snapshotRow
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, seed, node_count, edge_count, created_at
		FROM snapshots WHERE id = ?`, id).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	return row.toDomain()
}

// GetTopology rebuilds the topology stored under id
func (r *Repository) GetTopology(ctx context.Context, id string) (*domain.Topology, error) {
	snap, err := r.GetSnapshot(ctx, id)
	if err != nil || snap == nil {
		return nil, err
	}

	nodes, err := r.loadNodes(ctx, id)
	if err != nil {
		return nil, err
	}
	edges, err := r.loadEdges(ctx, id)
	if err != nil {
		return nil, err
	}

	var opts []domain.TopologyOption
	if snap.Seed != nil {
		opts = append(opts, domain.WithSeed(*snap.Seed))
	}

	t, err := domain.NewTopology(nodes, edges, opts...)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return t, nil
}

func (r *Repository) loadNodes(ctx context.Context, id string) ([]domain.Node, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, role, grp, parent, address
		FROM snapshot_nodes WHERE snapshot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []domain.Node
	for rows.Next() {
		var row nodeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		n, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (r *Repository) loadEdges(ctx context.Context, id string) ([]domain.Edge, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a, b, latency_ms
		FROM snapshot_edges WHERE snapshot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	var edges []domain.Edge
	for rows.Next() {
		var row edgeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, row.toDomain())
	}
	return edges, rows.Err()
}

// ListSnapshots returns all snapshot metadata, newest first
func (r *Repository) ListSnapshots(ctx context.Context) ([]domain.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, seed, node_count, edge_count, created_at
		FROM snapshots ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []domain.Snapshot
	for rows.Next() {
		var row snapshotRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}

// DeleteSnapshot removes a snapshot and, by cascade, its nodes and edges
func (r *Repository) DeleteSnapshot(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("snapshot %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
