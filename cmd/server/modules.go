package main

import (
	"context"
	"net/http"
	"time"

	"github.com/JaimeStill/docroute/internal/api"
	"github.com/JaimeStill/docroute/internal/config"
	"github.com/JaimeStill/docroute/internal/infrastructure"
	"github.com/JaimeStill/docroute/pkg/handlers"
	"github.com/JaimeStill/docroute/pkg/module"
)

const readyPingTimeout = 2 * time.Second

// Modules holds the prefixed modules mounted on the root router.
type Modules struct {
	API *module.Module
}

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

type probeResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, probeResponse{Status: "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, probeResponse{Status: "not ready"})
			return
		}

		resp := probeResponse{Status: "ready"}
		if infra.Database != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyPingTimeout)
			defer cancel()

			if err := infra.Database.Ping(ctx); err != nil {
				infra.Logger.Warn("readiness database ping failed", "error", err)
				handlers.RespondJSON(w, http.StatusServiceUnavailable, probeResponse{Status: "not ready", Database: "unreachable"})
				return
			}
			resp.Database = "ok"
		}
		handlers.RespondJSON(w, http.StatusOK, resp)
	})

	return router
}
