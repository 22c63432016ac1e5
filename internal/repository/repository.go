package repository

import (
	"context"
	"errors"

	"fabricsim/internal/domain"
)

// ErrNotFound is returned when a mutation targets a snapshot that does not exist
var ErrNotFound = errors.New("not found")

// Repository defines the interface for the topology snapshot archive
type Repository interface {
	// SaveTopology archives t under name and returns its metadata
	SaveTopology(ctx context.Context, name string, t *domain.Topology) (*domain.Snapshot, error)

	// GetTopology rebuilds an archived topology. Returns nil, nil if not found.
	GetTopology(ctx context.Context, id string) (*domain.Topology, error)

	// GetSnapshot returns metadata only. Returns nil, nil if not found.
	GetSnapshot(ctx context.Context, id string) (*domain.Snapshot, error)

	// ListSnapshots returns metadata, newest first
	ListSnapshots(ctx context.Context) ([]domain.Snapshot, error)

	// DeleteSnapshot returns an error wrapping ErrNotFound if id is unknown
	DeleteSnapshot(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
