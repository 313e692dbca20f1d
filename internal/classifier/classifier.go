// Package classifier is the client for the external batch classification
// service. A batch of files goes out in one multipart request and one
// positional guess per file comes back.
package classifier

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/JaimeStill/docroute/internal/config"
	"github.com/JaimeStill/docroute/internal/documents"
	"github.com/JaimeStill/docroute/pkg/auth"
	"github.com/JaimeStill/docroute/pkg/transport"
)

// Result is the classifier's guess for one submitted file. Empty fields are
// left for the caller to default.
type Result struct {
	Name string `json:"name"`
	// Status is "Done" or blank on success. The workbench treats any other
	// value, such as "Failed" or "Error", as a failed classification.
	Status   string `json:"status"`
	Category string `json:"category"`
	Intent   string `json:"intent"`
}

// Classifier classifies a batch of files in a single call.
type Classifier interface {
	Classify(ctx context.Context, files []documents.File) ([]Result, error)
}

type response struct {
	Results *[]Result `json:"results"`
}

type client struct {
	http   *http.Client
	url    string
	field  string
	logger *slog.Logger
}

// New creates an HTTP classifier client. A nil httpClient uses
// http.DefaultClient; deadlines come from the caller's context.
func New(cfg *config.ClassifierConfig, httpClient *http.Client, logger *slog.Logger) Classifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &client{
		http:   httpClient,
		url:    cfg.URL,
		field:  cfg.Field,
		logger: logger.With("system", "classifier"),
	}
}

func (c *client) Classify(ctx context.Context, files []documents.File) ([]Result, error) {
	body, contentType, err := c.encode(files)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	transport.SetBearer(req, auth.Token(ctx))

	resp, err := transport.Do(c.http, req)
	if err != nil {
		c.logger.Warn("classify request failed", "files", len(files), "error", err)
		return nil, err
	}

	decoded, err := transport.DecodeJSON[response](resp)
	if err != nil {
		return nil, err
	}
	if decoded.Results == nil {
		return nil, fmt.Errorf("%w: missing results", transport.ErrMalformedResponse)
	}

	results := *decoded.Results
	if len(results) != len(files) {
		c.logger.Warn("classifier result count mismatch", "files", len(files), "results", len(results))
	}
	return results, nil
}

func (c *client) encode(files []documents.File) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(c.field), escapeQuotes(f.Name)))
		h.Set("Content-Type", f.ContentType)

		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", f.Name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
