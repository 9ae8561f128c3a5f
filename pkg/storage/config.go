package storage

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/docker/go-units"
)

// Storage drivers.
const (
	DriverFilesystem = "filesystem"
	DriverS3         = "s3"
)

// DefaultPublicURL is used for filesystem storage when public_url is unset.
// It points at the file route served by the application itself.
const DefaultPublicURL = "http://localhost:5000/files"

// Config contains blob storage configuration.
type Config struct {
	Driver string `toml:"driver"`

	// BasePath is the root directory for filesystem storage.
	// Default: ".data/blobs"
	BasePath string `toml:"base_path"`

	// PublicURL is the base URL blob keys are appended to when building public links.
	PublicURL string `toml:"public_url"`

	MaxUploadSize    string   `toml:"max_upload_size"`
	S3               S3Config `toml:"s3"`
	maxUploadSizeVal int64
}

// S3Config addresses an S3-compatible bucket.
type S3Config struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	PathStyle bool   `toml:"path_style"`
}

// Env maps environment variable names for storage configuration.
type Env struct {
	Driver        string
	BasePath      string
	PublicURL     string
	MaxUploadSize string
	S3Endpoint    string
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3UseSSL      string
}

func (c *Config) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.Driver != "" {
		c.Driver = overlay.Driver
	}
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.PublicURL != "" {
		c.PublicURL = overlay.PublicURL
	}
	if size, err := units.FromHumanSize(overlay.MaxUploadSize); err == nil {
		c.MaxUploadSize = overlay.MaxUploadSize
		c.maxUploadSizeVal = size
	}
	c.S3.merge(&overlay.S3)
}

func (c *S3Config) merge(overlay *S3Config) {
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.Bucket != "" {
		c.Bucket = overlay.Bucket
	}
	if overlay.AccessKey != "" {
		c.AccessKey = overlay.AccessKey
	}
	if overlay.SecretKey != "" {
		c.SecretKey = overlay.SecretKey
	}
	if overlay.UseSSL {
		c.UseSSL = true
	}
	if overlay.PathStyle {
		c.PathStyle = true
	}
}

func (c *Config) loadDefaults() {
	if c.Driver == "" {
		c.Driver = DriverFilesystem
	}
	if c.BasePath == "" {
		c.BasePath = ".data/blobs"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "100MB"
	}
	if c.S3.Bucket == "" {
		c.S3.Bucket = "worksheets"
	}
}

func (c *Config) loadEnv(env *Env) {
	setString := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	setString(env.Driver, &c.Driver)
	setString(env.BasePath, &c.BasePath)
	setString(env.PublicURL, &c.PublicURL)
	setString(env.MaxUploadSize, &c.MaxUploadSize)
	setString(env.S3Endpoint, &c.S3.Endpoint)
	setString(env.S3Region, &c.S3.Region)
	setString(env.S3Bucket, &c.S3.Bucket)
	setString(env.S3AccessKey, &c.S3.AccessKey)
	setString(env.S3SecretKey, &c.S3.SecretKey)

	if env.S3UseSSL != "" {
		if v := os.Getenv(env.S3UseSSL); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.S3.UseSSL = b
			}
		}
	}
}

func (c *Config) validate() error {
	c.PublicURL = strings.TrimSuffix(c.PublicURL, "/")

	switch c.Driver {
	case DriverFilesystem:
		if c.BasePath == "" {
			return fmt.Errorf("base_path required")
		}
		if c.PublicURL == "" {
			c.PublicURL = DefaultPublicURL
		}
	case DriverS3:
		if c.S3.Endpoint == "" {
			return fmt.Errorf("s3.endpoint required")
		}
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket required")
		}
	default:
		return fmt.Errorf("invalid driver: %s (must be filesystem or s3)", c.Driver)
	}

	size, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadSizeVal = size

	return nil
}
