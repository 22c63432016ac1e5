package domain

import "time"

// Snapshot describes one archived topology
type Snapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Seed      *uint64   `json:"seed,omitempty"`
	NodeCount int       `json:"node_count"`
	EdgeCount int       `json:"edge_count"`
	CreatedAt time.Time `json:"created_at"`
}
