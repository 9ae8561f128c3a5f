package logging

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// DefaultService tags records when no service name is configured.
const DefaultService = "worksheet-lab"

// Env maps environment variable names for logging configuration.
type Env struct {
	Level     string
	Format    string
	Output    string
	Service   string
	AddSource string
}

// Config holds logging configuration settings.
type Config struct {
	Level     Level  `toml:"level"`
	Format    Format `toml:"format"`
	Output    Output `toml:"output"`
	Service   string `toml:"service"`
	AddSource bool   `toml:"add_source"`
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if err := c.loadEnv(env); err != nil {
		return err
	}
	return errors.Join(c.Level.validate(), c.Format.validate(), c.Output.validate())
}

// Merge applies non-zero values from the overlay configuration.
// AddSource can be switched on by an overlay but not off.
func (c *Config) Merge(overlay *Config) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	if overlay.Output != "" {
		c.Output = overlay.Output
	}
	if overlay.Service != "" {
		c.Service = overlay.Service
	}
	if overlay.AddSource {
		c.AddSource = true
	}
}

func (c *Config) loadDefaults() {
	if c.Level == "" {
		c.Level = LevelInfo
	}
	if c.Format == "" {
		c.Format = FormatText
	}
	if c.Output == "" {
		c.Output = OutputStdout
	}
	if c.Service == "" {
		c.Service = DefaultService
	}
}

func (c *Config) loadEnv(env *Env) error {
	if env == nil {
		return nil
	}
	if v := lookup(env.Level); v != "" {
		c.Level = Level(v)
	}
	if v := lookup(env.Format); v != "" {
		c.Format = Format(v)
	}
	if v := lookup(env.Output); v != "" {
		c.Output = Output(v)
	}
	if v := lookup(env.Service); v != "" {
		c.Service = v
	}
	if v := lookup(env.AddSource); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env.AddSource, err)
		}
		c.AddSource = b
	}
	return nil
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
