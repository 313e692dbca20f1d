// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/docroute/internal/config"
	"github.com/JaimeStill/docroute/internal/infrastructure"
	"github.com/JaimeStill/docroute/pkg/auth"
	"github.com/JaimeStill/docroute/pkg/middleware"
	"github.com/JaimeStill/docroute/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(infra)

	domain, err := NewDomain(cfg, runtime)
	if err != nil {
		return nil, err
	}

	var verifier auth.Verifier
	if cfg.Auth.Issuer != "" {
		verifier, err = auth.NewOIDCVerifier(runtime.Lifecycle.Context(), cfg.Auth.Issuer, cfg.Auth.ClientID)
		if err != nil {
			return nil, fmt.Errorf("auth init failed: %w", err)
		}
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(auth.Middleware(verifier, cfg.Auth.Required, runtime.Logger))

	return m, nil
}
