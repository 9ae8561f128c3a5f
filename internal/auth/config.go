package auth

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvEnabled       = "AUTH_ENABLED"
	EnvSecret        = "AUTH_SECRET"
	EnvIssuer        = "AUTH_ISSUER"
	EnvTokenTTL      = "AUTH_TOKEN_TTL"
	EnvAdminUser     = "ADMIN_USERNAME"
	EnvAdminPassword = "ADMIN_PASSWORD"
)

// Config contains access gate configuration.
type Config struct {
	// Enabled is a pointer so an overlay that omits it leaves the base value intact.
	Enabled       *bool  `toml:"enabled"`
	Secret        string `toml:"secret"`
	Issuer        string `toml:"issuer"`
	TokenTTL      string `toml:"token_ttl"`
	AdminUsername string `toml:"admin_username"`
	AdminPassword string `toml:"admin_password"`
}

// IsEnabled reports whether mutating endpoints require a token.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// TokenTTLDuration parses and returns the issued token lifetime.
func (c *Config) TokenTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TokenTTL)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.Enabled != nil {
		c.Enabled = overlay.Enabled
	}
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.TokenTTL != "" {
		c.TokenTTL = overlay.TokenTTL
	}
	if overlay.AdminUsername != "" {
		c.AdminUsername = overlay.AdminUsername
	}
	if overlay.AdminPassword != "" {
		c.AdminPassword = overlay.AdminPassword
	}
}

func (c *Config) loadDefaults() {
	if c.Enabled == nil {
		enabled := true
		c.Enabled = &enabled
	}
	if c.Issuer == "" {
		c.Issuer = "worksheet-lab"
	}
	if c.TokenTTL == "" {
		c.TokenTTL = "12h"
	}
	if c.AdminUsername == "" {
		c.AdminUsername = "admin"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = &enabled
		}
	}
	if v := os.Getenv(EnvSecret); v != "" {
		c.Secret = v
	}
	if v := os.Getenv(EnvIssuer); v != "" {
		c.Issuer = v
	}
	if v := os.Getenv(EnvTokenTTL); v != "" {
		c.TokenTTL = v
	}
	if v := os.Getenv(EnvAdminUser); v != "" {
		c.AdminUsername = v
	}
	if v := os.Getenv(EnvAdminPassword); v != "" {
		c.AdminPassword = v
	}
}

func (c *Config) validate() error {
	ttl, err := time.ParseDuration(c.TokenTTL)
	if err != nil {
		return fmt.Errorf("invalid token_ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	if c.IsEnabled() && c.Secret == "" {
		return fmt.Errorf("secret required when auth is enabled")
	}
	return nil
}
