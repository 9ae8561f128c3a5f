package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/worksheet-lab/pkg/middleware"
	"github.com/JaimeStill/worksheet-lab/pkg/openapi"
)

const EnvAPIBasePath = "API_BASE_PATH"

var corsEnv = &middleware.CORSEnv{
	Enabled:          "API_CORS_ENABLED",
	Origins:          "CORS_ORIGINS",
	AllowedMethods:   "API_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "API_CORS_ALLOWED_HEADERS",
	AllowCredentials: "API_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "API_CORS_MAX_AGE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:        "API_OPENAPI_TITLE",
	Description:  "API_OPENAPI_DESCRIPTION",
	ContactName:  "API_OPENAPI_CONTACT_NAME",
	ContactEmail: "API_OPENAPI_CONTACT_EMAIL",
	ContactURL:   "API_OPENAPI_CONTACT_URL",
	License:      "API_OPENAPI_LICENSE",
	Servers:      "API_OPENAPI_SERVERS",
}

// APIConfig configures the JSON API module.
type APIConfig struct {
	BasePath string                `toml:"base_path"`
	CORS     middleware.CORSConfig `toml:"cors"`
	OpenAPI  openapi.Config        `toml:"openapi"`
}

func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	c.CORS.Merge(&overlay.CORS)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
}
