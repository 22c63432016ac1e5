// Package handler implements HTTP request handlers for the fabricsim API.
//
// SimulationHandler exposes the active topology: the presentation graph,
// node lookups, ping and traceroute between two nodes, routing tables,
// exports and imports, and the snapshot archive.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 201).
// Error responses return JSON with {error, details} structure. Unknown nodes
// and snapshots map to 404, malformed input to 400, and snapshot operations
// on a server started without a database to 503.
//
// # Middleware
//
// Chain composes Recover, CORS and Logger around the mux.
package handler
