// Package service implements business logic for the fabricsim application.
//
// SimulationService owns the active topology and answers every query the
// HTTP handlers and the command line make against it: the presentation
// graph, node lookups, ping, traceroute, routing tables and exports. It
// coordinates with the snapshot archive when one is configured.
//
// # Event System
//
// Loading a topology and saving or deleting a snapshot publish events via
// EventBus. The server bridges the bus to Server-Sent Events so connected
// clients can refresh their view.
//
// # Concurrency
//
// Topologies are immutable. Swapping the active topology takes a write
// lock, and every query works on the topology current when it started.
package service
