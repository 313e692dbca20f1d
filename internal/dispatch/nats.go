package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/JaimeStill/docroute/pkg/auth"
	"github.com/JaimeStill/docroute/pkg/lifecycle"
	"github.com/JaimeStill/docroute/pkg/transport"
)

// Reply is the acknowledgement a NATS responder returns for a notification.
type Reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type natsSender struct {
	conn    *nats.Conn
	subject string
	timeout time.Duration
	logger  *slog.Logger
}

// NewNATS connects to url and returns a Sender that issues a request on
// subject for every notification and waits for a Reply. The connection
// retries in the background if the server is not yet reachable.
func NewNATS(url, subject string, timeout time.Duration, logger *slog.Logger, opts ...nats.Option) (Sender, error) {
	logger = logger.With("system", "dispatch", "driver", "nats")

	defaults := []nats.Option{
		nats.Name("docroute-dispatch"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}

	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return &natsSender{
		conn:    nc,
		subject: subject,
		timeout: timeout,
		logger:  logger,
	}, nil
}

func (s *natsSender) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("dispatch sender ready", "subject", s.subject)

	lc.OnShutdown(func() {
		if err := s.conn.Drain(); err != nil {
			s.logger.Error("nats drain failed", "error", err)
			s.conn.Close()
			return
		}
		s.logger.Info("nats connection drained")
	})
	return nil
}

func (s *natsSender) Send(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	msg := nats.NewMsg(s.subject)
	msg.Data = data
	if token := auth.Token(ctx); token != "" {
		msg.Header.Set("Authorization", "Bearer "+token)
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.conn.RequestMsgWithContext(ctx, msg)
	if err != nil {
		if errors.Is(err, nats.ErrNoResponders) {
			return fmt.Errorf("%w: no responders on %s", transport.ErrTransport, s.subject)
		}
		return fmt.Errorf("%w: request %s: %v", transport.ErrTransport, s.subject, err)
	}

	var reply Reply
	if err := json.Unmarshal(resp.Data, &reply); err != nil {
		return fmt.Errorf("%w: %v", transport.ErrMalformedResponse, err)
	}
	if !reply.OK {
		message := reply.Error
		if message == "" {
			message = "notification rejected"
		}
		return &transport.ServerError{Message: message}
	}

	s.logger.Info("notification sent", "document", n.Name, "category", n.Category)
	return nil
}
