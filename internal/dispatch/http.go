package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/docroute/pkg/auth"
	"github.com/JaimeStill/docroute/pkg/lifecycle"
	"github.com/JaimeStill/docroute/pkg/transport"
)

type httpSender struct {
	client  *http.Client
	url     string
	timeout time.Duration
	logger  *slog.Logger
}

// NewHTTP creates a Sender that POSTs notifications as JSON to url.
// A nil client uses http.DefaultClient.
func NewHTTP(url string, client *http.Client, timeout time.Duration, logger *slog.Logger) Sender {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpSender{
		client:  client,
		url:     url,
		timeout: timeout,
		logger:  logger.With("system", "dispatch", "driver", "http"),
	}
}

func (s *httpSender) Start(*lifecycle.Coordinator) error {
	s.logger.Info("dispatch sender ready", "url", s.url)
	return nil
}

func (s *httpSender) Send(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	transport.SetBearer(req, auth.Token(ctx))

	resp, err := transport.Do(s.client, req)
	if err != nil {
		return err
	}
	transport.Discard(resp)

	s.logger.Info("notification sent", "document", n.Name, "category", n.Category)
	return nil
}
