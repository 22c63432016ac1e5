package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"fabricsim/internal/domain"
	"fabricsim/internal/service"
)

// SimulationHandler handles simulation API requests
type SimulationHandler struct {
	svc *service.SimulationService
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(svc *service.SimulationService) *SimulationHandler {
	return &SimulationHandler{svc: svc}
}

// Register adds every API route to mux
func (h *SimulationHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/graph", h.GetGraph)

	mux.HandleFunc("GET /api/nodes", h.ListNodes)
	mux.HandleFunc("GET /api/nodes/{id}", h.GetNode)

	mux.HandleFunc("GET /api/ping", h.Ping)
	mux.HandleFunc("GET /api/traceroute", h.Traceroute)
	mux.HandleFunc("GET /api/routes", h.ListRoutingTables)
	mux.HandleFunc("GET /api/routes/{id}", h.GetRoutingTable)

	mux.HandleFunc("GET /api/export/{format}", h.Export)
	mux.HandleFunc("POST /api/import/{format}", h.Import)

	mux.HandleFunc("GET /api/snapshots", h.ListSnapshots)
	mux.HandleFunc("POST /api/snapshots", h.SaveSnapshot)
	mux.HandleFunc("POST /api/snapshots/{id}/load", h.LoadSnapshot)
	mux.HandleFunc("DELETE /api/snapshots/{id}", h.DeleteSnapshot)
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GetGraph returns the presentation graph
func (h *SimulationHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Graph(), http.StatusOK)
}

// ListNodes returns all nodes, optionally filtered by ?role=
func (h *SimulationHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.svc.ListNodes(r.URL.Query().Get("role"))
	if err != nil {
		h.writeServiceError(w, "Failed to list nodes", err)
		return
	}

	h.writeJSON(w, nodes, http.StatusOK)
}

// GetNode returns a single node with its children and neighbors
func (h *SimulationHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.svc.GetNode(r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Node not found", err)
		return
	}

	h.writeJSON(w, node, http.StatusOK)
}

// DiagnosticResponse wraps a ping or traceroute result with its text form
type DiagnosticResponse struct {
	Result interface{} `json:"result"`
	Output string      `json:"output"`
}

// Ping runs ping between ?from= and ?to=
func (h *SimulationHandler) Ping(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.Ping(q.Get("from"), q.Get("to"))
	if err != nil {
		h.writeServiceError(w, "Ping failed", err)
		return
	}

	h.writeJSON(w, DiagnosticResponse{Result: res, Output: res.String()}, http.StatusOK)
}

// Traceroute runs traceroute between ?from= and ?to=
func (h *SimulationHandler) Traceroute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.Traceroute(q.Get("from"), q.Get("to"))
	if err != nil {
		h.writeServiceError(w, "Traceroute failed", err)
		return
	}

	h.writeJSON(w, DiagnosticResponse{Result: res, Output: res.String()}, http.StatusOK)
}

// GetRoutingTable returns one node's routing table, or the single entry
// for ?to= when given
func (h *SimulationHandler) GetRoutingTable(w http.ResponseWriter, r *http.Request) {
	if dst := r.URL.Query().Get("to"); dst != "" {
		entry, err := h.svc.Route(r.PathValue("id"), dst)
		if err != nil {
			h.writeServiceError(w, "Route not found", err)
			return
		}
		h.writeJSON(w, entry, http.StatusOK)
		return
	}

	table, err := h.svc.RoutingTable(r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to build routing table", err)
		return
	}

	h.writeJSON(w, table, http.StatusOK)
}

// ListRoutingTables returns every node's routing table
func (h *SimulationHandler) ListRoutingTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.svc.RoutingTables(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to build routing tables", err)
		return
	}

	h.writeJSON(w, tables, http.StatusOK)
}

var exportContentTypes = map[string]string{
	"json":              "application/json",
	"yaml":              "application/x-yaml",
	"ansible-inventory": "application/x-yaml",
}

var exportFilenames = map[string]string{
	"json":              "topology.json",
	"yaml":              "topology.yml",
	"ansible-inventory": "inventory.yml",
}

// Export writes the active topology in the requested format
func (h *SimulationHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	contentType, ok := exportContentTypes[format]
	if !ok {
		h.writeError(w, "Unknown export format", format, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+exportFilenames[format])

	if err := h.svc.Export(format, w); err != nil {
		log.Printf("Failed to export %s: %v", format, err)
		// Can't write error response as we already set headers
		return
	}
}

// ImportResponse reports the topology that replaced the active one
type ImportResponse struct {
	Nodes int     `json:"nodes"`
	Edges int     `json:"edges"`
	Seed  *uint64 `json:"seed,omitempty"`
}

// MaxImportBytes caps the size of an uploaded topology
var MaxImportBytes int64 = 8 << 20

// Import replaces the active topology with an uploaded JSON or YAML snapshot
func (h *SimulationHandler) Import(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, MaxImportBytes)
	topo, err := h.svc.Import(r.PathValue("format"), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, "Request body too large", err.Error(), http.StatusBadRequest)
			return
		}
		h.writeServiceError(w, "Failed to import topology", err)
		return
	}

	resp := ImportResponse{Nodes: topo.Len(), Edges: len(topo.Edges())}
	if seed, ok := topo.Seed(); ok {
		resp.Seed = &seed
	}
	h.writeJSON(w, resp, http.StatusOK)
}

// SaveSnapshotRequest is the body of POST /api/snapshots
type SaveSnapshotRequest struct {
	Name string `json:"name"`
}

// SaveSnapshot archives the active topology
func (h *SimulationHandler) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	var req SaveSnapshotRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
	}

	snap, err := h.svc.SaveSnapshot(r.Context(), req.Name)
	if err != nil {
		h.writeServiceError(w, "Failed to save snapshot", err)
		return
	}

	h.writeJSON(w, snap, http.StatusCreated)
}

// ListSnapshots returns archived snapshot metadata
func (h *SimulationHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.svc.ListSnapshots(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list snapshots", err)
		return
	}
	if snaps == nil {
		snaps = []domain.Snapshot{}
	}

	h.writeJSON(w, snaps, http.StatusOK)
}

// LoadSnapshot makes an archived topology the active one
func (h *SimulationHandler) LoadSnapshot(w http.ResponseWriter, r *http.Request) {
	topo, err := h.svc.LoadSnapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to load snapshot", err)
		return
	}

	resp := ImportResponse{Nodes: topo.Len(), Edges: len(topo.Edges())}
	if seed, ok := topo.Seed(); ok {
		resp.Seed = &seed
	}
	h.writeJSON(w, resp, http.StatusOK)
}

// DeleteSnapshot removes an archived snapshot
func (h *SimulationHandler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSnapshot(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, "Failed to delete snapshot", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

// statusFor maps service and domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidNodeReference), errors.Is(err, service.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrArchiveDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *SimulationHandler) writeServiceError(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s: %v", msg, err)
	}
	h.writeError(w, msg, err.Error(), status)
}

func (h *SimulationHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *SimulationHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
