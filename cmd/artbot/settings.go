package main

import (
	"fmt"
	"os"

	"artbot/internal/config"
)

// cliFlags holds flag values that override file and environment settings.
type cliFlags struct {
	configPath string
	logLevel   string
	logFormat  string

	addr        string
	backendURL  string
	corsEnabled bool
	// corsSet records an explicit --cors-enabled, true or false.
	corsSet     bool
	corsOrigins string
}

func (f cliFlags) overlay() config.Config {
	c := config.Config{
		Addr:        f.addr,
		BackendURL:  f.backendURL,
		CORSOrigins: splitCSV(f.corsOrigins),
		LogLevel:    f.logLevel,
	}
	if f.corsSet {
		c.CORSEnabled = config.Bool(f.corsEnabled)
	}
	return c
}

// loadSettings resolves configuration with precedence
// defaults < config file < environment < flags.
func loadSettings(f cliFlags, lookup config.LookupFunc) (config.Config, string, error) {
	path := f.configPath
	if path == "" {
		path = config.Discover()
	}
	var cfg config.Config
	if path != "" {
		fileCfg, err := config.Load(path)
		if err != nil {
			return config.Config{}, path, err
		}
		cfg = fileCfg
	}
	envCfg, err := config.FromEnv(lookup)
	if err != nil {
		return config.Config{}, path, fmt.Errorf("environment: %w", err)
	}
	cfg = cfg.Merge(envCfg).Merge(f.overlay()).WithDefaults()
	return cfg, path, nil
}

var osLookup config.LookupFunc = os.LookupEnv
