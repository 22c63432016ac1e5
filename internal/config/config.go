// Package config loads the fabricsim configuration file.
//
// The file describes the fabric (tiers, host counts, address pools), the
// latency range and an optional seed. Everything has a default, so running
// without a config file builds the reference fabric.
//
// Config file locations (priority order):
//  1. $FABRICSIM_CONFIG
//  2. ./fabricsim.yaml
//  3. $XDG_CONFIG_HOME/fabricsim/config.yaml
//  4. ~/.config/fabricsim/config.yaml
//  5. /etc/fabricsim/config.yaml
package config

import (
	"fmt"
	"net/netip"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"fabricsim/internal/addressing"
	"fabricsim/internal/topology"
)

const (
	defaultDatabasePath = "./fabricsim.db"
	defaultHTTPAddr     = ":3000"
	defaultWorkers      = 4
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the reference fabric with an unseeded latency source
func DefaultConfig() *Config {
	cfg := &Config{
		Version:  1,
		Fabric:   FabricFromLayout(topology.DefaultLayout()),
		Latency:  LatencyConfig{Min: topology.DefaultLatency.Min, Max: topology.DefaultLatency.Max},
		Routing:  RoutingConfig{Workers: defaultWorkers},
		Database: DatabaseConfig{Path: defaultDatabasePath},
		HTTP:     HTTPConfig{Addr: defaultHTTPAddr},
	}
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if len(c.Fabric.Aggregation) == 0 && c.Fabric.Core.Name == "" {
		c.Fabric = FabricFromLayout(topology.DefaultLayout())
	}
	if c.Fabric.Prefix == "" {
		c.Fabric.Prefix = topology.DefaultLayout().Prefix.String()
	}
	if c.Latency.Min == 0 && c.Latency.Max == 0 {
		c.Latency = LatencyConfig{Min: topology.DefaultLatency.Min, Max: topology.DefaultLatency.Max}
	}
	if c.Routing.Workers == 0 {
		c.Routing.Workers = defaultWorkers
	}
	if c.Database.Path == "" {
		c.Database.Path = defaultDatabasePath
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = defaultHTTPAddr
	}
}

// Validate checks that the config describes a buildable fabric
func (c *Config) Validate() error {
	if c.Routing.Workers < 0 {
		return fmt.Errorf("routing.workers must not be negative")
	}
	layout, err := c.Layout()
	if err != nil {
		return err
	}
	return layout.Validate()
}

// Layout converts the fabric section into a topology.Layout
func (c *Config) Layout() (topology.Layout, error) {
	prefix, err := netip.ParsePrefix(c.Fabric.Prefix)
	if err != nil {
		return topology.Layout{}, fmt.Errorf("fabric.prefix: %w", err)
	}

	corePool, err := addressing.ParseRange(c.Fabric.Core.Pool)
	if err != nil {
		return topology.Layout{}, fmt.Errorf("fabric.core.pool: %w", err)
	}

	layout := topology.Layout{
		Prefix:  prefix,
		Core:    topology.SwitchSpec{Name: c.Fabric.Core.Name, Pool: corePool},
		Latency: topology.LatencyRange{Min: c.Latency.Min, Max: c.Latency.Max},
	}

	for _, agg := range c.Fabric.Aggregation {
		pool, err := addressing.ParseRange(agg.Pool)
		if err != nil {
			return topology.Layout{}, fmt.Errorf("aggregation %q pool: %w", agg.Name, err)
		}
		spec := topology.AggregationSpec{Name: agg.Name, Pool: pool}

		for _, edge := range agg.Edges {
			es := topology.EdgeSpec{Name: edge.Name, Hosts: edge.Hosts}
			if strings.TrimSpace(edge.Pool) != "" {
				if es.Pool, err = addressing.ParseRange(edge.Pool); err != nil {
					return topology.Layout{}, fmt.Errorf("edge %q pool: %w", edge.Name, err)
				}
			}
			spec.Edges = append(spec.Edges, es)
		}
		layout.Aggregations = append(layout.Aggregations, spec)
	}

	return layout, nil
}

// FabricFromLayout renders a layout back into its config form
func FabricFromLayout(l topology.Layout) FabricConfig {
	fc := FabricConfig{
		Prefix: l.Prefix.String(),
		Core:   SwitchConfig{Name: l.Core.Name, Pool: l.Core.Pool.String()},
	}
	for _, agg := range l.Aggregations {
		ac := AggregationConfig{Name: agg.Name, Pool: agg.Pool.String()}
		for _, e := range agg.Edges {
			ec := EdgeConfig{Name: e.Name, Hosts: e.Hosts}
			if e.Pool.IsValid() {
				ec.Pool = e.Pool.String()
			}
			ac.Edges = append(ac.Edges, ec)
		}
		fc.Aggregation = append(fc.Aggregation, ac)
	}
	return fc
}

// BuilderOptions returns the topology options implied by the config
func (c *Config) BuilderOptions() []topology.Option {
	if c.Seed == nil {
		return nil
	}
	return []topology.Option{topology.WithSeed(*c.Seed)}
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	hosts, edges := 0, 0
	for _, agg := range c.Fabric.Aggregation {
		edges += len(agg.Edges)
		for _, e := range agg.Edges {
			hosts += e.Hosts
		}
	}

	seed := "random"
	if c.Seed != nil {
		seed = fmt.Sprintf("%d", *c.Seed)
	}

	return fmt.Sprintf("Fabric %s: %d aggregation, %d edge, %d hosts; latency %d-%dms; seed %s",
		c.Fabric.Prefix, len(c.Fabric.Aggregation), edges, hosts, c.Latency.Min, c.Latency.Max, seed)
}
