package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/prodgraph/pkg/cache"
	perrors "github.com/matzehuels/prodgraph/pkg/errors"
	"github.com/matzehuels/prodgraph/pkg/rates"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, "batch", cfg.Mode)
	assert.Equal(t, cache.BackendFile, cfg.Cache.Backend)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "config.toml", `
language  = "de"
mode      = "rate"
window    = 5
direction = "TB"

[miners]
"iron-plate/0:iron-ingot/0:iron-ore" = "Mk.3:pure"

[cache]
backend = "memory"
memory_size = 64

[server]
addr = ":9090"
rate_limit = 2.5
cors_origins = ["http://localhost:5173"]
session_ttl = "30m"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "de", cfg.Language)
	assert.Equal(t, "rate", cfg.Mode)
	assert.Equal(t, 5.0, cfg.Window)
	assert.Equal(t, "TB", cfg.Direction)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2.5, cfg.Server.RateLimit)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	// Unset keys keep their defaults.
	assert.Equal(t, 20, cfg.Server.Burst)

	miners, err := cfg.MinerOverrides()
	require.NoError(t, err)
	m := miners["iron-plate/0:iron-ingot/0:iron-ore"]
	assert.Equal(t, rates.MinerMk3, m.Tier)
	assert.Equal(t, rates.PurityPure, m.Purity)

	ttl, err := cfg.SessionTTL()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, ttl)

	cc, err := cfg.CacheConfig()
	require.NoError(t, err)
	assert.Equal(t, cache.BackendMemory, cc.Backend)
	assert.Equal(t, 64, cc.MemorySize)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "config.toml", "langauge = \"de\"\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.ErrCodeInvalidInput))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.ErrCodeFileNotFound))

	// The default location may be absent.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")

	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/cfg", AppName, "config.toml"), p)

	d, err := CacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/cache", AppName), d)

	cc, err := Default().CacheConfig()
	require.NoError(t, err)
	assert.Equal(t, d, cc.Dir)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAddr:        ":7000",
		EnvCache:       "redis",
		EnvRedisURL:    "redis://cache:6379/1",
		EnvRateLimit:   "50",
		EnvCORSOrigins: "https://a.example, https://b.example,",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis://cache:6379/1", cfg.Cache.RedisURL)
	assert.Equal(t, 50.0, cfg.Server.RateLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)

	env[EnvRateLimit] = "fast"
	assert.Error(t, Default().ApplyEnv(lookup))
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "PRODGRAPH_TEST_DOTENV=loaded\n")
	t.Cleanup(func() { os.Unsetenv("PRODGRAPH_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "loaded", os.Getenv("PRODGRAPH_TEST_DOTENV"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   perrors.Code
	}{
		{"language", func(c *Config) { c.Language = "fr" }, perrors.ErrCodeInvalidLanguage},
		{"mode", func(c *Config) { c.Mode = "hourly" }, perrors.ErrCodeInvalidMode},
		{"window", func(c *Config) { c.Window = 0 }, perrors.ErrCodeInvalidAmount},
		{"direction", func(c *Config) { c.Direction = "RL" }, perrors.ErrCodeInvalidDirection},
		{"cache backend", func(c *Config) { c.Cache.Backend = "etcd" }, perrors.ErrCodeInvalidInput},
		{"miner", func(c *Config) { c.Miners = map[string]string{"iron-ore": "Mk.7"} }, perrors.ErrCodeInvalidInput},
		{"rate limit", func(c *Config) { c.Server.RateLimit = -1 }, perrors.ErrCodeInvalidInput},
		{"session ttl", func(c *Config) { c.Server.SessionTTL = "soon" }, perrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, perrors.Is(err, tt.code), "got %v", err)
		})
	}
}
