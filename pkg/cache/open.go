package cache

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by [Open].
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendNone, BackendMemory, BackendFile, BackendRedis, BackendMongo}

// Config selects and configures a backend.
type Config struct {
	Backend    string
	Dir        string // file
	MemorySize int    // memory
	RedisURL   string // redis
	MongoURI   string // mongo
}

// Open creates the backend named by cfg.Backend. An empty name means "none".
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendMemory:
		return NewMemoryCache(cfg.MemorySize, 0), nil
	case BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file cache: directory is required")
		}
		c, err := NewFileCache(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("redis cache: url is required")
		}
		c, err := NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("mongo cache: uri is required")
		}
		c, err := NewMongoCache(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownBackend, cfg.Backend, strings.Join(Backends, ", "))
}
