// Package dispatch delivers routed notifications for classified documents
// to the external send collaborator over HTTP or NATS request/reply.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/docroute/internal/config"
	"github.com/JaimeStill/docroute/pkg/lifecycle"
)

// Notification is the payload sent for one routed document.
type Notification struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Intent   string `json:"intent"`
	ToEmail  string `json:"to_email"`
}

// Sender delivers notifications. Send returns nil only when the collaborator
// acknowledged delivery.
type Sender interface {
	Start(lc *lifecycle.Coordinator) error
	Send(ctx context.Context, n Notification) error
}

// New creates the Sender selected by cfg.Driver.
func New(cfg *config.DispatchConfig, logger *slog.Logger) (Sender, error) {
	switch cfg.Driver {
	case config.DispatchHTTP:
		return NewHTTP(cfg.URL, nil, cfg.TimeoutDuration(), logger), nil
	case config.DispatchNATS:
		return NewNATS(cfg.NATSURL, cfg.Subject, cfg.TimeoutDuration(), logger)
	default:
		return nil, fmt.Errorf("unknown dispatch driver %q", cfg.Driver)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
