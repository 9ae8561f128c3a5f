package main

import (
	"net/http"

	"github.com/JaimeStill/worksheet-lab/internal/api"
	"github.com/JaimeStill/worksheet-lab/internal/config"
	"github.com/JaimeStill/worksheet-lab/internal/infrastructure"
	"github.com/JaimeStill/worksheet-lab/pkg/module"
	"github.com/JaimeStill/worksheet-lab/pkg/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Modules holds the mounted HTTP modules.
type Modules struct {
	API *module.Module
}

// NewModules builds every module served by the router.
func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure, cfg *config.Config) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("API is running!"))
	})

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	})

	router.HandleNative("GET /metrics", promhttp.Handler().ServeHTTP)

	// S3 objects are served by the bucket; filesystem blobs need a route.
	if cfg.Storage.Driver == storage.DriverFilesystem {
		router.HandleNative("GET /files/{key...}", storage.FileHandler(infra.Storage, infra.Logger))
	}

	return router
}
