package worksheets

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/worksheet-lab/internal/thumbnails"
)

const (
	EnvGenerateThumbnail = "WORKSHEETS_GENERATE_THUMBNAIL"
	EnvFeaturedLimit     = "WORKSHEETS_FEATURED_LIMIT"
	EnvDownloadTimeout   = "WORKSHEETS_DOWNLOAD_TIMEOUT"
)

// Config controls the worksheet workflow.
type Config struct {
	GenerateThumbnail bool              `toml:"generate_thumbnail"`
	FeaturedLimit     int               `toml:"featured_limit"`
	DownloadTimeout   string            `toml:"download_timeout"`
	Thumbnails        thumbnails.Config `toml:"thumbnails"`
}

// DownloadTimeoutDuration bounds fetches of legacy records served from their public URL.
func (c *Config) DownloadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.DownloadTimeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Thumbnails.Finalize(); err != nil {
		return fmt.Errorf("thumbnails: %w", err)
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.GenerateThumbnail {
		c.GenerateThumbnail = true
	}
	if overlay.FeaturedLimit != 0 {
		c.FeaturedLimit = overlay.FeaturedLimit
	}
	if overlay.DownloadTimeout != "" {
		c.DownloadTimeout = overlay.DownloadTimeout
	}
	c.Thumbnails.Merge(&overlay.Thumbnails)
}

func (c *Config) loadDefaults() {
	if c.FeaturedLimit == 0 {
		c.FeaturedLimit = 3
	}
	if c.DownloadTimeout == "" {
		c.DownloadTimeout = "30s"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvGenerateThumbnail); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.GenerateThumbnail = b
		}
	}
	if v := os.Getenv(EnvFeaturedLimit); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FeaturedLimit = n
		}
	}
	if v := os.Getenv(EnvDownloadTimeout); v != "" {
		c.DownloadTimeout = v
	}
}

func (c *Config) validate() error {
	if c.FeaturedLimit < 1 {
		return fmt.Errorf("featured_limit must be positive")
	}
	if _, err := time.ParseDuration(c.DownloadTimeout); err != nil {
		return fmt.Errorf("invalid download_timeout: %w", err)
	}
	return nil
}
