package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "FABRICSIM_CONFIG"
	// ConfigFileName is the default config file name
	ConfigFileName = "fabricsim.yaml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "fabricsim"
)

// FindConfigPath searches for config file in priority order:
// 1. $FABRICSIM_CONFIG (explicit path)
// 2. ./fabricsim.yaml (working directory)
// 3. $XDG_CONFIG_HOME/fabricsim/config.yaml
// 4. ~/.config/fabricsim/config.yaml
// 5. /etc/fabricsim/config.yaml
//
// Returns empty string if no config file found
func FindConfigPath() string {
	for _, path := range candidatePaths() {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// candidatePaths lists every location FindConfigPath tries, in order.
// Locations whose environment variable is unset are skipped.
func candidatePaths() []string {
	var paths []string

	// 1. Explicit path via environment
	if path := os.Getenv(EnvConfigPath); path != "" {
		paths = append(paths, path)
	}

	// 2. Working directory, reported as an absolute path when possible
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		paths = append(paths, abs)
	} else {
		paths = append(paths, ConfigFileName)
	}

	// 3. XDG config home
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, ConfigDirName, "config.yaml"))
	}

	// 4. User config directory
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}

	// 5. System config
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configPath string) error {
	dir := filepath.Dir(configPath)
	return os.MkdirAll(dir, 0755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
