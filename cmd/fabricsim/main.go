package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"fabricsim/internal/config"
	"fabricsim/internal/domain"
	"fabricsim/internal/handler"
	"fabricsim/internal/hub"
	"fabricsim/internal/repository/sqlite"
	"fabricsim/internal/service"
	"fabricsim/internal/topology"
	"fabricsim/internal/watcher"

	"github.com/dustin/go-humanize"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Config file path (default: search $FABRICSIM_CONFIG, ./fabricsim.yaml, XDG dirs)")
	seedFlag := flag.String("seed", "", "Latency seed; overrides the config file")
	dbPath := flag.String("db", "", "SQLite snapshot archive path; overrides the config file, \"none\" disables it")
	snapshotID := flag.String("snapshot", "", "Load this archived snapshot instead of building a fabric")
	saveName := flag.String("save", "", "Archive the topology under this name")
	list := flag.Bool("list", false, "List archived snapshots and exit")
	allRoutes := flag.Bool("routes", false, "Print every node's routing table instead of only the core's")
	serve := flag.Bool("serve", false, "Serve the HTTP API after printing the report")
	addr := flag.String("addr", "", "HTTP listen address; overrides the config file")
	watch := flag.Bool("watch", false, "With -serve, rebuild the fabric whenever the config file changes")
	writeConfig := flag.String("write-config", "", "Write the effective config, flags applied, to this path and exit")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, cfgPath, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *seedFlag != "" {
		seed, err := strconv.ParseUint(*seedFlag, 10, 64)
		if err != nil {
			log.Fatalf("Invalid -seed %q: %v", *seedFlag, err)
		}
		cfg.Seed = &seed
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	log.Println(cfg.Summary())

	if *writeConfig != "" {
		if err := exportConfig(cfg, *writeConfig); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		return
	}

	var repo *sqlite.Repository
	if cfg.Database.Path != "none" {
		repo, err = sqlite.New(cfg.Database.Path)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer repo.Close()
		log.Printf("Snapshot archive opened: %s", cfg.Database.Path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *list {
		if repo == nil {
			log.Fatal("Snapshot archive disabled")
		}
		snaps, err := repo.ListSnapshots(ctx)
		if err != nil {
			log.Fatalf("Failed to list snapshots: %v", err)
		}
		writeSnapshots(os.Stdout, snaps, time.Now())
		return
	}

	topo, err := loadTopology(ctx, cfg, repo, *snapshotID)
	if err != nil {
		log.Fatalf("Failed to build topology: %v", err)
	}
	if seed, ok := topo.Seed(); ok {
		log.Printf("Topology ready: %s nodes, latency seed %d", humanize.Comma(int64(topo.Len())), seed)
	} else {
		log.Printf("Topology ready: %s nodes, latency seed unknown", humanize.Comma(int64(topo.Len())))
	}

	eventBus := service.NewEventBus()
	svc := newService(topo, repo, eventBus)
	svc.SetWorkers(cfg.Routing.Workers)

	writeTopology(os.Stdout, topo)
	fmt.Println()
	if err := writeDiagnostics(os.Stdout, svc); err != nil {
		log.Fatalf("Failed to run diagnostics: %v", err)
	}
	if err := writeRoutingTables(ctx, os.Stdout, svc, *allRoutes); err != nil {
		log.Fatalf("Failed to build routing tables: %v", err)
	}

	if *saveName != "" {
		snap, err := svc.SaveSnapshot(ctx, *saveName)
		if err != nil {
			log.Fatalf("Failed to save snapshot: %v", err)
		}
		fmt.Printf("Saved snapshot %s (%s)\n", snap.ID, snap.Name)
	}

	if *serve {
		if *watch {
			if cfgPath == "" {
				log.Println("No config file to watch")
			} else {
				go watchConfig(ctx, cfgPath, svc)
			}
		}
		if err := runServer(ctx, cfg.HTTP.Addr, svc, eventBus); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}
}

// exportConfig saves cfg and checks that it loads back
func exportConfig(cfg *config.Config, path string) error {
	if err := cfg.Save(path); err != nil {
		return err
	}
	if _, _, err := config.LoadFromPath(path); err != nil {
		return fmt.Errorf("written config does not load: %w", err)
	}
	log.Printf("Config written: %s", path)
	return nil
}

func loadConfig(path string) (*config.Config, string, error) {
	var (
		cfg   *config.Config
		found string
		err   error
	)
	if path != "" {
		cfg, found, err = config.LoadFromPath(path)
	} else {
		cfg, found, err = config.Load()
	}
	if err != nil {
		return nil, found, err
	}
	if found == "" {
		log.Println("No config file found, using defaults")
	} else {
		log.Printf("Config loaded: %s", found)
	}
	return cfg, found, nil
}

// watchConfig rebuilds the fabric from path each time the file changes.
// A config that fails to load or build leaves the active topology in place.
func watchConfig(ctx context.Context, path string, svc *service.SimulationService) {
	w := watcher.New(path, func() {
		cfg, _, err := config.LoadFromPath(path)
		if err != nil {
			log.Printf("Failed to reload config: %v", err)
			return
		}
		topo, err := loadTopology(ctx, cfg, nil, "")
		if err != nil {
			log.Printf("Failed to rebuild topology: %v", err)
			return
		}
		svc.SetWorkers(cfg.Routing.Workers)
		svc.Replace(topo)
		if seed, ok := topo.Seed(); ok {
			log.Printf("Rebuilt fabric from %s: %d nodes, latency seed %d", path, topo.Len(), seed)
		}
	})
	if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Config watcher stopped: %v", err)
	}
}

// loadTopology restores an archived snapshot or builds a fresh fabric
func loadTopology(ctx context.Context, cfg *config.Config, repo *sqlite.Repository, snapshotID string) (*domain.Topology, error) {
	if snapshotID != "" {
		if repo == nil {
			return nil, service.ErrArchiveDisabled
		}
		topo, err := repo.GetTopology(ctx, snapshotID)
		if err != nil {
			return nil, err
		}
		if topo == nil {
			return nil, fmt.Errorf("%w: %s", service.ErrSnapshotNotFound, snapshotID)
		}
		log.Printf("Loaded snapshot %s", snapshotID)
		return topo, nil
	}

	layout, err := cfg.Layout()
	if err != nil {
		return nil, err
	}
	return topology.NewBuilder(layout, cfg.BuilderOptions()...).Build()
}

// newService keeps a nil *sqlite.Repository from becoming a non-nil interface
func newService(topo *domain.Topology, repo *sqlite.Repository, eventBus *service.EventBus) *service.SimulationService {
	if repo == nil {
		return service.NewSimulationService(topo, nil, eventBus)
	}
	return service.NewSimulationService(topo, repo, eventBus)
}

func runServer(ctx context.Context, addr string, svc *service.SimulationService, eventBus *service.EventBus) error {
	// Initialize SSE hub
	sseHub := hub.New()
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go sseHub.Run(hubCtx)

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for {
			select {
			case event := <-eventChan:
				sseHub.Broadcast(string(event.Type), event.Payload)
			case <-hubCtx.Done():
				return
			}
		}
	}()

	// Setup routes
	mux := http.NewServeMux()
	handler.NewSimulationHandler(svc).Register(mux)
	mux.Handle("GET /events", sseHub)

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	server := &http.Server{
		Addr:         addr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	hubCancel()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}
