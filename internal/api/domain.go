package api

import (
	"github.com/JaimeStill/worksheet-lab/internal/auth"
	"github.com/JaimeStill/worksheet-lab/internal/config"
	"github.com/JaimeStill/worksheet-lab/internal/thumbnails"
	"github.com/JaimeStill/worksheet-lab/internal/worksheets"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Worksheets worksheets.System

	// Tokens is nil when the access gate is disabled.
	Tokens *auth.Tokens
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, cfg *config.Config) *Domain {
	var store worksheets.Store
	if runtime.Postgres != nil {
		store = worksheets.NewPostgresStore(runtime.Postgres.Connection(), runtime.Logger)
	} else {
		store = worksheets.NewMongoStore(runtime.Mongo.Database(), runtime.Lifecycle, runtime.Logger)
	}

	if runtime.Cache != nil {
		store = worksheets.NewCachedStore(store, runtime.Cache, runtime.Logger)
	}

	var renderer thumbnails.Renderer
	if cfg.Worksheets.GenerateThumbnail {
		renderer = thumbnails.New(&cfg.Worksheets.Thumbnails, runtime.Logger)
	}

	domain := &Domain{
		Worksheets: worksheets.New(
			store,
			runtime.Storage,
			renderer,
			&cfg.Worksheets,
			runtime.MaxUploadSize,
			runtime.Logger,
		),
	}

	if cfg.Auth.IsEnabled() {
		domain.Tokens = auth.NewTokens(&cfg.Auth)
	}

	return domain
}
