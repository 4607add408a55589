// Package config loads prodgraph's settings.
//
// Settings come from three layers, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, by default $XDG_CONFIG_HOME/prodgraph/config.toml
//  3. environment variables, optionally seeded from a .env file ([Config.ApplyEnv])
//
// Command-line flags are applied on top by the CLI.
//
// Example config.toml:
//
//	language  = "de"
//	mode      = "batch"
//	window    = 10
//	direction = "LR"
//	catalog   = "/path/to/catalog.toml"
//
//	[miners]
//	"iron-plate/0:iron-ingot/0:iron-ore" = "Mk.2:pure"
//
//	[cache]
//	backend   = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr         = ":8080"
//	rate_limit   = 20
//	cors_origins = ["http://localhost:5173"]
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/prodgraph/pkg/cache"
	"github.com/matzehuels/prodgraph/pkg/chain"
	perrors "github.com/matzehuels/prodgraph/pkg/errors"
	"github.com/matzehuels/prodgraph/pkg/i18n"
	"github.com/matzehuels/prodgraph/pkg/layout"
	"github.com/matzehuels/prodgraph/pkg/settings"
)

// AppName names the config and cache directories.
const AppName = "prodgraph"

// Environment variables read by [Config.ApplyEnv].
const (
	EnvAddr        = "PRODGRAPH_ADDR"
	EnvCache       = "PRODGRAPH_CACHE"
	EnvCatalog     = "PRODGRAPH_CATALOG"
	EnvLanguage    = "PRODGRAPH_LANGUAGE"
	EnvRedisURL    = "REDIS_URL"
	EnvMongoURI    = "MONGO_URI"
	EnvRateLimit   = "PRODGRAPH_RATE_LIMIT"
	EnvCORSOrigins = "PRODGRAPH_CORS_ORIGINS"
)

// Config is the merged configuration.
type Config struct {
	Language  string            `toml:"language"`
	Mode      string            `toml:"mode"`
	Window    float64           `toml:"window"` // minutes
	Direction string            `toml:"direction"`
	Catalog   string            `toml:"catalog"` // empty means the embedded catalog
	Miners    map[string]string `toml:"miners"`  // settings key -> "Mk.2:pure"

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the pipeline cache backend.
type CacheConfig struct {
	Backend    string `toml:"backend"` // none, memory, file, redis, mongo
	Dir        string `toml:"dir"`
	MemorySize int    `toml:"memory_size"`
	RedisURL   string `toml:"redis_url"`
	MongoURI   string `toml:"mongo_uri"`
}

// ServerConfig configures "prodgraph serve".
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	RateLimit   float64  `toml:"rate_limit"` // requests per second per client, 0 disables
	Burst       int      `toml:"burst"`
	CORSOrigins []string `toml:"cors_origins"`
	MaxSessions int      `toml:"max_sessions"`
	SessionTTL  string   `toml:"session_ttl"` // Go duration, e.g. "2h"
	TrustProxy  bool     `toml:"trust_proxy"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Language:  i18n.Default,
		Mode:      string(chain.ModeBatch),
		Window:    layout.DefaultWindowMinutes,
		Direction: string(layout.DirectionLR),
		Cache: CacheConfig{
			Backend: cache.BackendFile,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			RateLimit:   10,
			Burst:       20,
			CORSOrigins: []string{"*"},
			MaxSessions: 1024,
			SessionTTL:  "2h",
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the default file cache directory (~/.cache/prodgraph/).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the TOML file at path over the defaults. An empty path means
// [Path]; a missing file at the default path is not an error, a missing file
// the caller named explicitly is.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "config %s: unknown keys: %v", path, undecoded)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// into the process environment without overriding variables already set.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from environment variables looked up with
// lookup (usually os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvCache); ok && v != "" {
		c.Cache.Backend = v
	}
	if v, ok := lookup(EnvCatalog); ok {
		c.Catalog = v
	}
	if v, ok := lookup(EnvLanguage); ok && v != "" {
		c.Language = v
	}
	if v, ok := lookup(EnvRedisURL); ok && v != "" {
		c.Cache.RedisURL = v
	}
	if v, ok := lookup(EnvMongoURI); ok && v != "" {
		c.Cache.MongoURI = v
	}
	if v, ok := lookup(EnvRateLimit); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "%s", EnvRateLimit)
		}
		c.Server.RateLimit = rps
	}
	if v, ok := lookup(EnvCORSOrigins); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.CORSOrigins = origins
	}
	return nil
}

// Validate checks every field and normalizes the language.
func (c *Config) Validate() error {
	lang, err := i18n.Normalize(c.Language)
	if err != nil {
		return err
	}
	c.Language = lang
	if _, ok := chain.ParseMode(c.Mode); !ok {
		return perrors.New(perrors.ErrCodeInvalidMode, "config: invalid mode %q (want batch or rate)", c.Mode)
	}
	if err := perrors.ValidateWindow(c.Window); err != nil {
		return err
	}
	if !layout.ValidDirections[layout.Direction(c.Direction)] {
		return perrors.New(perrors.ErrCodeInvalidDirection, "config: invalid direction %q (want LR or TB)", c.Direction)
	}
	if !slices.Contains(cache.Backends, strings.ToLower(c.Cache.Backend)) {
		return perrors.New(perrors.ErrCodeInvalidInput, "config: unknown cache backend %q (want one of %s)",
			c.Cache.Backend, strings.Join(cache.Backends, ", "))
	}
	if _, err := c.MinerOverrides(); err != nil {
		return err
	}
	if c.Server.RateLimit < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "config: rate_limit must not be negative")
	}
	if _, err := c.SessionTTL(); err != nil {
		return err
	}
	return nil
}

// MinerOverrides parses the [miners] table.
func (c *Config) MinerOverrides() (map[string]settings.MinerSettings, error) {
	if len(c.Miners) == 0 {
		return nil, nil
	}
	out := make(map[string]settings.MinerSettings, len(c.Miners))
	for key, v := range c.Miners {
		m, err := settings.ParseMiner(v)
		if err != nil {
			return nil, fmt.Errorf("config: miner %s: %w", key, err)
		}
		out[key] = m
	}
	return out, nil
}

// SessionTTL parses Server.SessionTTL. Empty means no expiry.
func (c *Config) SessionTTL() (time.Duration, error) {
	if c.Server.SessionTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Server.SessionTTL)
	if err != nil || d < 0 {
		return 0, perrors.New(perrors.ErrCodeInvalidInput, "config: invalid session_ttl %q", c.Server.SessionTTL)
	}
	return d, nil
}

// CacheConfig returns the options for [cache.Open]. A file backend without a
// directory uses [CacheDir].
func (c *Config) CacheConfig() (cache.Config, error) {
	cc := cache.Config{
		Backend:    strings.ToLower(c.Cache.Backend),
		Dir:        c.Cache.Dir,
		MemorySize: c.Cache.MemorySize,
		RedisURL:   c.Cache.RedisURL,
		MongoURI:   c.Cache.MongoURI,
	}
	if cc.Backend == cache.BackendFile && cc.Dir == "" {
		dir, err := CacheDir()
		if err != nil {
			return cc, fmt.Errorf("get cache dir: %w", err)
		}
		cc.Dir = dir
	}
	return cc, nil
}
