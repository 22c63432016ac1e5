package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"

	"fabricsim/internal/codec"
	"fabricsim/internal/diagnostics"
	"fabricsim/internal/domain"
	"fabricsim/internal/repository"
	"fabricsim/internal/routing"
)

var (
	// ErrArchiveDisabled is returned by snapshot operations when no
	// repository is configured
	ErrArchiveDisabled = errors.New("snapshot archive disabled")

	// ErrSnapshotNotFound is returned when a snapshot id is unknown
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrInvalidArgument marks malformed caller input
	ErrInvalidArgument = errors.New("invalid argument")
)

// DefaultWorkers bounds routing table fan-out when none is configured
const DefaultWorkers = 4

// SimulationService provides business logic over the active topology
type SimulationService struct {
	mu       sync.RWMutex
	topo     *domain.Topology
	routes   *routing.Generator
	repo     repository.Repository
	eventBus *EventBus
	workers  int
}

// NewSimulationService creates a service serving topo. repo and eventBus
// may be nil.
func NewSimulationService(topo *domain.Topology, repo repository.Repository, eventBus *EventBus) *SimulationService {
	return &SimulationService{
		topo:     topo,
		routes:   routing.NewGenerator(topo),
		repo:     repo,
		eventBus: eventBus,
		workers:  DefaultWorkers,
	}
}

// SetWorkers sets the routing fan-out limit. Values below one are ignored.
func (s *SimulationService) SetWorkers(n int) {
	if n < 1 {
		return
	}
	s.mu.Lock()
	s.workers = n
	s.mu.Unlock()
}

// Topology returns the active topology
func (s *SimulationService) Topology() *domain.Topology {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topo
}

func (s *SimulationService) current() (*domain.Topology, *routing.Generator, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topo, s.routes, s.workers
}

// Replace swaps the active topology
func (s *SimulationService) Replace(topo *domain.Topology) {
	s.mu.Lock()
	s.topo = topo
	s.routes = routing.NewGenerator(topo)
	s.mu.Unlock()

	payload := map[string]interface{}{"nodes": topo.Len()}
	if seed, ok := topo.Seed(); ok {
		payload["seed"] = seed
	}
	s.eventBus.Publish(Event{Type: EventTopologyLoaded, Payload: payload})
}

// Graph returns the presentation view of the active topology
func (s *SimulationService) Graph() *domain.Graph {
	return domain.DeriveGraph(s.Topology())
}

// ListNodes returns every node, optionally restricted to one role
func (s *SimulationService) ListNodes(role string) ([]domain.Node, error) {
	topo := s.Topology()
	if role == "" {
		return topo.Nodes(), nil
	}
	r, ok := domain.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, role)
	}
	return topo.NodesByRole(r), nil
}

// NodeDetail is a node together with its place in the tree
type NodeDetail struct {
	domain.Node
	Children  []string `json:"children"`
	Neighbors []string `json:"neighbors"`
}

// GetNode retrieves a single node by ID along with its children and neighbors
func (s *SimulationService) GetNode(id string) (*NodeDetail, error) {
	topo := s.Topology()
	n, ok := topo.Node(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidNodeReference, id)
	}
	children := topo.Children(id)
	if children == nil {
		children = []string{}
	}
	return &NodeDetail{Node: n, Children: children, Neighbors: topo.Neighbors(id)}, nil
}

// Ping runs the ping diagnostic on the active topology
func (s *SimulationService) Ping(src, dst string) (*diagnostics.PingResult, error) {
	if err := requireEndpoints(src, dst); err != nil {
		return nil, err
	}
	return diagnostics.Ping(s.Topology(), src, dst)
}

// Traceroute runs the traceroute diagnostic on the active topology
func (s *SimulationService) Traceroute(src, dst string) (*diagnostics.TraceResult, error) {
	if err := requireEndpoints(src, dst); err != nil {
		return nil, err
	}
	return diagnostics.Traceroute(s.Topology(), src, dst)
}

func requireEndpoints(src, dst string) error {
	if src == "" || dst == "" {
		return fmt.Errorf("%w: both source and destination are required", ErrInvalidArgument)
	}
	return nil
}

// RoutingTable returns the routing table of a single node
func (s *SimulationService) RoutingTable(src string) (*routing.Table, error) {
	_, routes, _ := s.current()
	return routes.Table(src)
}

// Route returns the single entry src uses to reach dst
func (s *SimulationService) Route(src, dst string) (routing.Entry, error) {
	table, err := s.RoutingTable(src)
	if err != nil {
		return routing.Entry{}, err
	}
	e, ok := table.Lookup(dst)
	if !ok {
		return routing.Entry{}, fmt.Errorf("%w: no route from %q to %q", domain.ErrInvalidNodeReference, src, dst)
	}
	return e, nil
}

// RoutingTables returns the routing table of every node in enumeration order
func (s *SimulationService) RoutingTables(ctx context.Context) ([]*routing.Table, error) {
	_, routes, workers := s.current()
	return routes.All(ctx, workers)
}

// ExportFormats lists the formats Export accepts, sorted
func (s *SimulationService) ExportFormats() []string {
	var formats []string
	for f := range codec.Exporters() {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// Export writes the active topology in the named format
func (s *SimulationService) Export(format string, w io.Writer) error {
	exp, ok := codec.Exporters()[format]
	if !ok {
		return fmt.Errorf("%w: unknown export format %q", ErrInvalidArgument, format)
	}
	return exp.Export(s.Topology(), w)
}

// Import parses a JSON or YAML snapshot and makes it the active topology
func (s *SimulationService) Import(format string, r io.Reader) (*domain.Topology, error) {
	var imp codec.Importer
	switch format {
	case "json":
		imp = codec.NewJSONCodec()
	case "yaml":
		imp = codec.NewYAMLCodec()
	default:
		return nil, fmt.Errorf("%w: unknown import format %q", ErrInvalidArgument, format)
	}

	topo, err := imp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	s.Replace(topo)
	log.Printf("Imported %s topology with %d nodes", format, topo.Len())
	return topo, nil
}

// ============================================================================
// Snapshot Archive
// ============================================================================

// SaveSnapshot archives the active topology under name
func (s *SimulationService) SaveSnapshot(ctx context.Context, name string) (*domain.Snapshot, error) {
	if s.repo == nil {
		return nil, ErrArchiveDisabled
	}
	snap, err := s.repo.SaveTopology(ctx, name, s.Topology())
	if err != nil {
		return nil, err
	}

	log.Printf("Saved snapshot %s (%s, %d nodes)", snap.ID, snap.Name, snap.NodeCount)
	s.eventBus.Publish(Event{Type: EventSnapshotSaved, Payload: snap})
	return snap, nil
}

// ListSnapshots returns archived snapshot metadata, newest first
func (s *SimulationService) ListSnapshots(ctx context.Context) ([]domain.Snapshot, error) {
	if s.repo == nil {
		return nil, ErrArchiveDisabled
	}
	return s.repo.ListSnapshots(ctx)
}

// LoadSnapshot makes an archived topology the active one
func (s *SimulationService) LoadSnapshot(ctx context.Context, id string) (*domain.Topology, error) {
	if s.repo == nil {
		return nil, ErrArchiveDisabled
	}
	topo, err := s.repo.GetTopology(ctx, id)
	if err != nil {
		return nil, err
	}
	if topo == nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}

	s.Replace(topo)
	log.Printf("Loaded snapshot %s with %d nodes", id, topo.Len())
	return topo, nil
}

// DeleteSnapshot removes an archived snapshot
func (s *SimulationService) DeleteSnapshot(ctx context.Context, id string) error {
	if s.repo == nil {
		return ErrArchiveDisabled
	}
	if err := s.repo.DeleteSnapshot(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
		}
		return err
	}

	s.eventBus.Publish(Event{Type: EventSnapshotDeleted, Payload: map[string]string{"id": id}})
	return nil
}
