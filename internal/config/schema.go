package config

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Seed     *uint64        `yaml:"seed,omitempty"` // nil = fresh seed per run
	Fabric   FabricConfig   `yaml:"fabric"`
	Latency  LatencyConfig  `yaml:"latency"`
	Routing  RoutingConfig  `yaml:"routing"`
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// FabricConfig describes the tree and its address plan
type FabricConfig struct {
	Prefix      string              `yaml:"prefix"` // e.g. 227.189.2.0/24
	Core        SwitchConfig        `yaml:"core"`
	Aggregation []AggregationConfig `yaml:"aggregation"`
}

// SwitchConfig names a switch and its address pool ("first-last")
type SwitchConfig struct {
	Name string `yaml:"name"`
	Pool string `yaml:"pool"`
}

// AggregationConfig is one aggregation switch; its edge switches share Pool
type AggregationConfig struct {
	Name  string       `yaml:"name"`
	Pool  string       `yaml:"pool"`
	Edges []EdgeConfig `yaml:"edges"`
}

// EdgeConfig is one edge switch and the hosts below it
type EdgeConfig struct {
	Name  string `yaml:"name"`
	Hosts int    `yaml:"hosts"`
	Pool  string `yaml:"pool,omitempty"` // host pool, optional when hosts is 0
}

// LatencyConfig bounds per-edge latency in milliseconds, inclusive
type LatencyConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// RoutingConfig controls routing table fan-out
type RoutingConfig struct {
	Workers int `yaml:"workers"`
}

// DatabaseConfig holds snapshot archive settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// HTTPConfig holds API server settings
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}
