package api

import (
	"net/http"

	"github.com/JaimeStill/worksheet-lab/internal/auth"
	"github.com/JaimeStill/worksheet-lab/internal/config"
	"github.com/JaimeStill/worksheet-lab/internal/worksheets"
	"github.com/JaimeStill/worksheet-lab/pkg/openapi"
	"github.com/JaimeStill/worksheet-lab/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	spec *openapi.Spec,
	runtime *Runtime,
	domain *Domain,
	cfg *config.Config,
) {
	var guard worksheets.Guard
	groups := make([]routes.Group, 0, 3)

	if domain.Tokens != nil {
		gate := auth.NewGate(domain.Tokens, runtime.Logger)
		guard = gate.Require

		authHandler := auth.NewHandler(domain.Tokens, &cfg.Auth, runtime.Logger)
		groups = append(groups, authHandler.Routes())
	} else {
		runtime.Logger.Warn("access gate disabled; mutating endpoints are open")
	}

	worksheetsHandler := worksheets.NewHandler(domain.Worksheets, guard, runtime.Logger, runtime.MaxUploadSize)
	groups = append(groups, worksheetsHandler.Routes(), worksheetsHandler.AdminRoutes())

	routes.Register(mux, cfg.API.BasePath, spec, groups...)
}
