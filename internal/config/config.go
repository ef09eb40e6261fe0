// Package config loads simulation parameters from a TOML file, with
// defaults matching pkg/pipeline's zero-value behavior.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/foretime/ancestry/pkg/errors"
	"github.com/foretime/ancestry/pkg/pipeline"
)

// Config is the on-disk shape of a simulation config file, decoded
// directly into pipeline.Options plus the cache/store backend selection
// that pipeline.Options itself has no opinion about. The simulate command
// reads only Simulation; no command reads Cache or Store.
type Config struct {
	Simulation pipeline.Options `toml:"simulation"`
	Cache      CacheConfig      `toml:"cache"`
	Store      StoreConfig      `toml:"store"`
}

// CacheConfig selects and configures the snapshot cache backend.
type CacheConfig struct {
	// Backend is one of "file" (default), "redis", or "none".
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
}

// StoreConfig describes the optional MongoDB export sink's connection
// settings.
type StoreConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Load reads and parses a TOML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "reading config file %s", path)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config file %s", path)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a Config populated entirely with defaults, for use when
// no config file is given on the command line.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	c.Simulation.SetDefaults()
	if c.Cache.Backend == "" {
		c.Cache.Backend = "file"
	}
	if c.Store.Database == "" {
		c.Store.Database = "ancestrysim"
	}
	if c.Store.Collection == "" {
		c.Store.Collection = "snapshots"
	}
}
