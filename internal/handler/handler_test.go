package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fabricsim/internal/domain"
	"fabricsim/internal/repository/sqlite"
	"fabricsim/internal/routing"
	"fabricsim/internal/service"
	"fabricsim/internal/topology"
)

func newTestMux(t *testing.T, withArchive bool) *http.ServeMux {
	t.Helper()
	layout := topology.DefaultLayout()
	layout.Latency = topology.LatencyRange{Min: 3, Max: 3}
	topo, err := topology.NewBuilder(layout, topology.WithSeed(1)).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var svc *service.SimulationService
	if withArchive {
		repo, err := sqlite.New(":memory:")
		if err != nil {
			t.Fatalf("sqlite.New() error = %v", err)
		}
		t.Cleanup(func() { repo.Close() })
		svc = service.NewSimulationService(topo, repo, nil)
	} else {
		svc = service.NewSimulationService(topo, nil, nil)
	}

	mux := http.NewServeMux()
	NewSimulationHandler(svc).Register(mux)
	return mux
}

func do(t *testing.T, mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestStatusCodes(t *testing.T) {
	mux := newTestMux(t, false)

	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"graph", http.MethodGet, "/api/graph", http.StatusOK},
		{"nodes", http.MethodGet, "/api/nodes", http.StatusOK},
		{"nodes by role", http.MethodGet, "/api/nodes?role=edge-switch", http.StatusOK},
		{"nodes bad role", http.MethodGet, "/api/nodes?role=router", http.StatusBadRequest},
		{"node", http.MethodGet, "/api/nodes/agg1", http.StatusOK},
		{"node missing", http.MethodGet, "/api/nodes/ghost", http.StatusNotFound},
		{"ping", http.MethodGet, "/api/ping?from=e1-h1&to=e2-h10", http.StatusOK},
		{"ping missing param", http.MethodGet, "/api/ping?from=e1-h1", http.StatusBadRequest},
		{"ping unknown node", http.MethodGet, "/api/ping?from=e1-h1&to=ghost", http.StatusNotFound},
		{"traceroute", http.MethodGet, "/api/traceroute?from=e3-h1&to=e4-h5", http.StatusOK},
		{"routes", http.MethodGet, "/api/routes", http.StatusOK},
		{"route table", http.MethodGet, "/api/routes/core", http.StatusOK},
		{"route table missing", http.MethodGet, "/api/routes/ghost", http.StatusNotFound},
		{"route entry", http.MethodGet, "/api/routes/core?to=e2-h3", http.StatusOK},
		{"route entry missing", http.MethodGet, "/api/routes/core?to=ghost", http.StatusNotFound},
		{"export json", http.MethodGet, "/api/export/json", http.StatusOK},
		{"export yaml", http.MethodGet, "/api/export/yaml", http.StatusOK},
		{"export ansible", http.MethodGet, "/api/export/ansible-inventory", http.StatusOK},
		{"export unknown", http.MethodGet, "/api/export/xml", http.StatusNotFound},
		{"snapshots disabled", http.MethodGet, "/api/snapshots", http.StatusServiceUnavailable},
		{"save disabled", http.MethodPost, "/api/snapshots", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, tt.method, tt.target, "")
			if rec.Code != tt.want {
				t.Errorf("%s %s = %d, want %d (body %s)", tt.method, tt.target, rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestPingResponse(t *testing.T) {
	mux := newTestMux(t, false)

	rec := do(t, mux, http.MethodGet, "/api/ping?from=e1-h1&to=e2-h10", "")
	resp := decode[DiagnosticResponse](t, rec)

	want := "PING 227.189.2.42: path = [e1-h1 -> e1 -> agg1 -> e2 -> e2-h10], total latency = 12ms"
	if resp.Output != want {
		t.Errorf("Output = %q, want %q", resp.Output, want)
	}
}

func TestGetNodeResponse(t *testing.T) {
	mux := newTestMux(t, false)

	rec := do(t, mux, http.MethodGet, "/api/nodes/e1-h1", "")
	type nodeJSON struct {
		ID        string   `json:"id"`
		Role      string   `json:"role"`
		Address   string   `json:"address"`
		Children  []string `json:"children"`
		Neighbors []string `json:"neighbors"`
	}
	node := decode[nodeJSON](t, rec)

	if node.ID != "e1-h1" || node.Role != string(domain.RoleHost) || node.Address != "227.189.2.1" {
		t.Errorf("node = %+v, want e1-h1 host 227.189.2.1", node)
	}
	if node.Children == nil || len(node.Children) != 0 {
		t.Errorf("Children = %v, want empty list", node.Children)
	}

	rec = do(t, mux, http.MethodGet, "/api/nodes/e3", "")
	edge := decode[nodeJSON](t, rec)
	if len(edge.Children) != 14 || edge.Children[0] != "e3-h1" {
		t.Errorf("e3 children = %v, want 14 hosts starting at e3-h1", edge.Children)
	}
	if len(edge.Neighbors) != 15 || edge.Neighbors[0] != "agg2" {
		t.Errorf("e3 neighbors = %v, want agg2 plus 14 hosts", edge.Neighbors)
	}
}

func TestRoutingTableResponse(t *testing.T) {
	mux := newTestMux(t, false)

	rec := do(t, mux, http.MethodGet, "/api/routes/e1", "")
	table := decode[routing.Table](t, rec)

	if table.Source != "e1" {
		t.Errorf("Source = %s, want e1", table.Source)
	}
	entry, ok := table.Lookup("e1-h3")
	if !ok || entry.NextHop != "e1-h3" {
		t.Errorf("route to e1-h3 = %+v, want direct", entry)
	}
	entry, ok = table.Lookup("core")
	if !ok || entry.NextHop != "agg1" {
		t.Errorf("route to core = %+v, want via agg1", entry)
	}

	rec = do(t, mux, http.MethodGet, "/api/routes/e1?to=e4-h1", "")
	single := decode[routing.Entry](t, rec)
	if single.Destination != "e4-h1" || single.NextHop != "agg1" || !single.Reachable {
		t.Errorf("route entry = %+v, want e4-h1 via agg1", single)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	mux := newTestMux(t, false)

	exported := do(t, mux, http.MethodGet, "/api/export/yaml", "")
	if ct := exported.Header().Get("Content-Type"); ct != "application/x-yaml" {
		t.Errorf("Content-Type = %q, want application/x-yaml", ct)
	}

	rec := do(t, mux, http.MethodPost, "/api/import/yaml", exported.Body.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decode[ImportResponse](t, rec)
	if resp.Nodes != 82 || resp.Edges != 81 {
		t.Errorf("import = %+v, want 82 nodes and 81 edges", resp)
	}
	if resp.Seed == nil || *resp.Seed != 1 {
		t.Errorf("import seed = %v, want 1", resp.Seed)
	}

	rec = do(t, mux, http.MethodPost, "/api/import/yaml", "nodes: [")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad import status = %d, want 400", rec.Code)
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	mux := newTestMux(t, true)

	rec := do(t, mux, http.MethodGet, "/api/snapshots", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("empty list = %d %q, want 200 []", rec.Code, rec.Body.String())
	}

	rec = do(t, mux, http.MethodPost, "/api/snapshots", `{"name":"first"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save status = %d, body %s", rec.Code, rec.Body.String())
	}
	snap := decode[domain.Snapshot](t, rec)
	if snap.Name != "first" || snap.NodeCount != 82 {
		t.Errorf("snapshot = %+v, want first with 82 nodes", snap)
	}

	rec = do(t, mux, http.MethodPost, "/api/snapshots", `{"name":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed save status = %d, want 400", rec.Code)
	}

	rec = do(t, mux, http.MethodPost, "/api/snapshots/"+snap.ID+"/load", "")
	if rec.Code != http.StatusOK {
		t.Errorf("load status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = do(t, mux, http.MethodPost, "/api/snapshots/missing/load", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("load missing status = %d, want 404", rec.Code)
	}

	rec = do(t, mux, http.MethodDelete, "/api/snapshots/"+snap.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = do(t, mux, http.MethodDelete, "/api/snapshots/"+snap.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestMiddleware(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	h := Chain(panicky, Recover, CORS, Logger)

	rec := do(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("panic status = %d, want 500", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS header = %q, want *", got)
	}

	rec = do(t, h, http.MethodOptions, "/", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
}

func TestLoggerKeepsResponseController(t *testing.T) {
	deadlineErr := make(chan error, 1)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadlineErr <- http.NewResponseController(w).SetWriteDeadline(time.Time{})
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(Chain(inner, Recover, CORS, Logger))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()

	if err := <-deadlineErr; err != nil {
		t.Errorf("SetWriteDeadline() through middleware = %v, want nil", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}

func TestImportBodyLimit(t *testing.T) {
	mux := newTestMux(t, false)

	exported := do(t, mux, http.MethodGet, "/api/export/json", "")
	body := exported.Body.String()

	saved := MaxImportBytes
	MaxImportBytes = int64(len(body) / 2)
	t.Cleanup(func() { MaxImportBytes = saved })

	rec := do(t, mux, http.MethodPost, "/api/import/json", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("oversized import status = %d, want 400", rec.Code)
	}
	resp := decode[ErrorResponse](t, rec)
	if resp.Error != "Request body too large" {
		t.Errorf("Error = %q, want Request body too large", resp.Error)
	}

	MaxImportBytes = int64(len(body))
	if rec := do(t, mux, http.MethodPost, "/api/import/json", body); rec.Code != http.StatusOK {
		t.Errorf("import at the limit status = %d, want 200", rec.Code)
	}
}
