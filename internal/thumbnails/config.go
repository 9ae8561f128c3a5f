package thumbnails

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/document-context/pkg/document"
)

const (
	EnvFormat  = "THUMBNAIL_FORMAT"
	EnvDPI     = "THUMBNAIL_DPI"
	EnvQuality = "THUMBNAIL_QUALITY"
)

// Config controls first-page preview rendering.
type Config struct {
	Format  string `toml:"format"`
	DPI     int    `toml:"dpi"`
	Quality int    `toml:"quality"`
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	if overlay.DPI != 0 {
		c.DPI = overlay.DPI
	}
	if overlay.Quality != 0 {
		c.Quality = overlay.Quality
	}
}

func (c *Config) loadDefaults() {
	if c.Format == "" {
		c.Format = string(document.PNG)
	}
	if c.DPI == 0 {
		c.DPI = 72
	}
	if c.Quality == 0 {
		c.Quality = 85
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvFormat); v != "" {
		c.Format = v
	}
	if v := os.Getenv(EnvDPI); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DPI = n
		}
	}
	if v := os.Getenv(EnvQuality); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Quality = n
		}
	}
}

func (c *Config) validate() error {
	format, err := document.ParseImageFormat(c.Format)
	if err != nil {
		return fmt.Errorf("format must be 'png' or 'jpg'")
	}
	c.Format = string(format)

	if c.DPI < 36 || c.DPI > 600 {
		return fmt.Errorf("dpi must be between 36 and 600")
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100")
	}
	return nil
}
