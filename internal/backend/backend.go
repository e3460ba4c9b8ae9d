// Package backend selects and assembles the repository backend.
package backend

import (
	"context"
	"fmt"
	"time"

	"tripdesk/internal/adapters"
	"tripdesk/internal/cache"
	"tripdesk/internal/config"
	applog "tripdesk/internal/log"
	"tripdesk/internal/memory"
	"tripdesk/internal/ports"
	"tripdesk/internal/storage"
)

// Type names a repository backend.
type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
)

func (t Type) IsValid() bool {
	return t == Memory || t == SQLite
}

// Config is the subset of the application config the factory needs.
type Config struct {
	Type         Type
	SQLiteDBPath string
	// CacheTTL enables the snapshot cache when positive.
	CacheTTL time.Duration
}

// FromAppConfig converts the application config to a backend config.
func FromAppConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", cfg.DataBackend)
	}
	return Config{
		Type:         t,
		SQLiteDBPath: cfg.SQLiteDBPath,
		CacheTTL:     cfg.CacheTTL,
	}, nil
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLite && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}
	return nil
}

// Result is an opened backend. Cleanup releases it and is never nil.
type Result struct {
	Store   ports.Store
	Pinger  ports.Pinger
	Cleanup func() error
}

// Open builds the configured backend, wrapped in the snapshot cache when
// CacheTTL is positive.
func Open(ctx context.Context, cfg Config, logger *applog.Logger) (*Result, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentBackend)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		store   ports.Store
		closers []func() error
	)
	switch cfg.Type {
	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		store = repo
		closers = append(closers, repo.Close)
		logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	default:
		store = memory.New()
		logger.InfoContext(ctx, "Initialized memory backend")
	}

	if cfg.CacheTTL > 0 {
		manager := cache.NewManager(logger)
		store = adapters.NewCachedStore(store, cfg.CacheTTL, manager, logger)
		manager.StartCleanup(cfg.CacheTTL)
		closers = append([]func() error{func() error { manager.Stop(); return nil }}, closers...)
		logger.InfoContext(ctx, "Snapshot cache enabled", "ttl", cfg.CacheTTL.String())
	}

	res := &Result{
		Store: store,
		Cleanup: func() error {
			var first error
			for _, c := range closers {
				if err := c(); err != nil && first == nil {
					first = err
				}
			}
			return first
		},
	}
	if p, ok := store.(ports.Pinger); ok {
		res.Pinger = p
	}
	return res, nil
}
