package api

import (
	"fmt"

	"github.com/JaimeStill/docroute/internal/categories"
	"github.com/JaimeStill/docroute/internal/classifier"
	"github.com/JaimeStill/docroute/internal/config"
	"github.com/JaimeStill/docroute/internal/dispatch"
	"github.com/JaimeStill/docroute/internal/documents"
	"github.com/JaimeStill/docroute/internal/workbench"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Categories categories.System
	Sessions   *workbench.Sessions
}

// NewDomain creates all domain systems from the API runtime and registers
// their lifecycle hooks.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	store := categories.NewMemoryStore()
	if runtime.Database != nil {
		store = categories.NewPostgresStore(runtime.Database.Connection())
	}
	categoriesSystem := categories.New(store, runtime.Logger)

	sender, err := dispatch.New(&cfg.Dispatch, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("dispatch init failed: %w", err)
	}
	if err := sender.Start(runtime.Lifecycle); err != nil {
		return nil, fmt.Errorf("dispatch start failed: %w", err)
	}

	deps := workbench.Deps{
		Registry:        categoriesSystem,
		Classifier:      classifier.New(&cfg.Classifier, nil, runtime.Logger),
		Sender:          sender,
		ClassifyTimeout: cfg.Workbench.ClassifyTimeoutDuration(),
		Logger:          runtime.Logger,
	}

	if cfg.Workbench.Archive {
		if runtime.Storage == nil {
			return nil, fmt.Errorf("workbench archive requires storage configuration")
		}
		deps.Archive = documents.NewArchive(runtime.Storage, runtime.Logger)
	}

	sessions := workbench.NewSessions(deps, cfg.Workbench.SessionTTLDuration())
	sessions.Start(runtime.Lifecycle, cfg.Workbench.SweepIntervalDuration())

	return &Domain{
		Categories: categoriesSystem,
		Sessions:   sessions,
	}, nil
}
