package api

import (
	"net/http"

	"github.com/JaimeStill/docroute/internal/config"
	"github.com/JaimeStill/docroute/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
	cfg *config.Config,
) {
	groups := []routes.Group{
		domain.Categories.Handler().Routes(),
		domain.Sessions.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	}

	if runtime.Storage != nil && cfg.Workbench.Archive {
		groups = append(groups, newArchiveHandler(runtime.Storage, runtime.Logger).routes())
	}

	routes.Register(mux, groups...)
}
