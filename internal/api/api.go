// Package api assembles the JSON API module: domain systems, route groups,
// the OpenAPI document, and the module middleware chain.
package api

import (
	"net/http"

	"github.com/JaimeStill/worksheet-lab/internal/config"
	"github.com/JaimeStill/worksheet-lab/internal/infrastructure"
	"github.com/JaimeStill/worksheet-lab/pkg/middleware"
	"github.com/JaimeStill/worksheet-lab/pkg/module"
	"github.com/JaimeStill/worksheet-lab/pkg/openapi"
)

// NewModule builds the API module mounted at cfg.API.BasePath.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime, cfg)

	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.AddServer(cfg.Domain)
	cfg.API.OpenAPI.Apply(spec)
	addComponents(spec)

	mux := http.NewServeMux()
	registerRoutes(mux, spec, runtime, domain, cfg)

	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.TrimSlash())
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.Metrics())

	return m, nil
}

func addComponents(spec *openapi.Spec) {
	spec.AddSchema("Error", &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"message": {Type: "string", Example: "Not found"},
			"error":   {Type: "string"},
		},
		Required: []string{"message"},
	})

	for name, desc := range map[string]string{
		"BadRequest":   "Malformed request or invalid file",
		"Unauthorized": "Missing or invalid bearer token",
		"NotFound":     "Worksheet or file not found",
		"ServerError":  "Storage, thumbnail, or database failure",
	} {
		spec.AddResponse(name, openapi.ResponseJSON(desc, "Error"))
	}

	spec.AddSecurityScheme("bearerAuth", &openapi.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
		Description:  "Token issued by POST /api/admin/login",
	})
}
