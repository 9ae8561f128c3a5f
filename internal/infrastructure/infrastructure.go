// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, metadata store, blob storage, cache)
// that domain systems require.
package infrastructure

import (
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/JaimeStill/worksheet-lab/internal/config"
	"github.com/JaimeStill/worksheet-lab/pkg/cache"
	"github.com/JaimeStill/worksheet-lab/pkg/database"
	"github.com/JaimeStill/worksheet-lab/pkg/lifecycle"
	"github.com/JaimeStill/worksheet-lab/pkg/logging"
	"github.com/JaimeStill/worksheet-lab/pkg/mongodb"
	"github.com/JaimeStill/worksheet-lab/pkg/storage"
)

// MigrationsDir is the directory within the migrations filesystem holding SQL files.
const MigrationsDir = "migrations"

// Infrastructure holds the core systems required by all domain modules.
// Exactly one of Mongo and Postgres is set, matching the configured driver.
// Cache is nil when caching is disabled.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Storage   storage.System
	Mongo     mongodb.System
	Postgres  database.System
	Cache     cache.System

	postgresCfg *database.Config
	migrations  fs.FS
}

// New creates an Infrastructure from the application configuration.
// migrations is applied to Postgres during Start and may be nil.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config, migrations fs.FS) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := logging.New(&cfg.Logging)

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	infra := &Infrastructure{
		Lifecycle:  lc,
		Logger:     logger,
		Storage:    store,
		migrations: migrations,
	}

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.New(&cfg.Database.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Postgres = db
		infra.postgresCfg = &cfg.Database.Postgres
	default:
		client, err := mongodb.New(&cfg.Database.Mongo, logger)
		if err != nil {
			return nil, fmt.Errorf("mongodb init failed: %w", err)
		}
		infra.Mongo = client
	}

	if cfg.Cache.Enabled {
		infra.Cache = cache.New(&cfg.Cache, logger)
	}

	return infra, nil
}

// Start initializes all infrastructure systems and registers them with the lifecycle coordinator.
// Postgres migrations run after the connection is verified.
func (i *Infrastructure) Start() error {
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}

	if i.Mongo != nil {
		if err := i.Mongo.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("mongodb start failed: %w", err)
		}
	}

	if i.Postgres != nil {
		if err := i.Postgres.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
		if i.migrations != nil {
			if err := database.Migrate(i.postgresCfg, i.migrations, MigrationsDir, i.Logger); err != nil {
				return fmt.Errorf("database migrate failed: %w", err)
			}
		}
	}

	if i.Cache != nil {
		if err := i.Cache.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("cache start failed: %w", err)
		}
	}
	return nil
}
