// Package repository defines the snapshot archive for fabricsim.
//
// Topologies are built in memory and never depend on stored state. The
// archive exists so a run whose latencies were drawn at random can be
// stored and replayed later with exactly the same weights. The sqlite
// subpackage provides the implementation.
//
// # Schema
//
// A snapshot is three tables: snapshots (metadata and seed),
// snapshot_nodes (one row per node, with its enumeration position) and
// snapshot_edges (one row per edge, in construction order). Loading a
// snapshot rebuilds the topology through domain.NewTopology, so archived
// data is validated exactly like freshly built data.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
