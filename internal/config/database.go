package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/worksheet-lab/pkg/database"
	"github.com/JaimeStill/worksheet-lab/pkg/mongodb"
)

// Metadata store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

const EnvDatabaseDriver = "DATABASE_DRIVER"

var postgresEnv = &database.Env{
	ConnURL:         "DATABASE_URL",
	Host:            "DATABASE_HOST",
	Port:            "DATABASE_PORT",
	Name:            "DATABASE_NAME",
	User:            "DATABASE_USER",
	Password:        "DATABASE_PASSWORD",
	SSLMode:         "DATABASE_SSLMODE",
	MaxOpenConns:    "DATABASE_MAX_OPEN_CONNS",
	MaxIdleConns:    "DATABASE_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DATABASE_CONN_MAX_LIFETIME",
	ConnTimeout:     "DATABASE_CONN_TIMEOUT",
}

var mongoEnv = &mongodb.Env{
	URI:         "MONGO_URI",
	Database:    "MONGO_DATABASE",
	ConnTimeout: "MONGO_CONN_TIMEOUT",
}

// DatabaseConfig selects the metadata store and carries the settings for each driver.
// Only the selected driver's section is finalized.
type DatabaseConfig struct {
	Driver   string          `toml:"driver"`
	Mongo    mongodb.Config  `toml:"mongo"`
	Postgres database.Config `toml:"postgres"`
}

func (c *DatabaseConfig) Finalize() error {
	if c.Driver == "" {
		c.Driver = DriverMongo
	}
	if v := os.Getenv(EnvDatabaseDriver); v != "" {
		c.Driver = v
	}

	switch c.Driver {
	case DriverMongo:
		if err := c.Mongo.Finalize(mongoEnv); err != nil {
			return fmt.Errorf("mongo: %w", err)
		}
	case DriverPostgres:
		if err := c.Postgres.Finalize(postgresEnv); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	default:
		return fmt.Errorf("unknown driver %q (must be %s or %s)", c.Driver, DriverMongo, DriverPostgres)
	}
	return nil
}

func (c *DatabaseConfig) Merge(overlay *DatabaseConfig) {
	if overlay.Driver != "" {
		c.Driver = overlay.Driver
	}
	c.Mongo.Merge(&overlay.Mongo)
	c.Postgres.Merge(&overlay.Postgres)
}
