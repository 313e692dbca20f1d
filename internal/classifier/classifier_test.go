package classifier_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/docroute/internal/classifier"
	"github.com/JaimeStill/docroute/internal/config"
	"github.com/JaimeStill/docroute/internal/documents"
	"github.com/JaimeStill/docroute/pkg/auth"
	"github.com/JaimeStill/docroute/pkg/transport"
)

func newClient(url string) classifier.Classifier {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return classifier.New(&config.ClassifierConfig{URL: url, Field: "files"}, nil, logger)
}

var batch = []documents.File{
	{Name: "a.pdf", ContentType: "application/pdf", Data: []byte("%PDF-a")},
	{Name: "b.pdf", ContentType: "application/pdf", Data: []byte("%PDF-b")},
}

func TestClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		files := r.MultipartForm.File["files"]
		if len(files) != 2 || files[0].Filename != "a.pdf" || files[1].Filename != "b.pdf" {
			t.Errorf("unexpected parts: %d", len(files))
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"results":[
			{"name":"a.pdf","status":"Done","category":"Finance","intent":"invoice"},
			{"name":"b.pdf","status":"Failed"}
		]}`)
	}))
	defer srv.Close()

	ctx := auth.WithCredential(context.Background(), auth.Credential{Token: "tok"})
	results, err := newClient(srv.URL).Classify(ctx, batch)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	want := []classifier.Result{
		{Name: "a.pdf", Status: "Done", Category: "Finance", Intent: "invoice"},
		{Name: "b.pdf", Status: "Failed"},
	}
	if len(results) != len(want) {
		t.Fatalf("results = %d, want %d", len(results), len(want))
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("result[%d] = %+v, want %+v", i, results[i], want[i])
		}
	}
}

func TestClassifyFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{
			"server error with envelope", http.StatusBadGateway, `{"error":"model offline"}`,
			func(err error) bool {
				var se *transport.ServerError
				return errors.As(err, &se) && se.Status == http.StatusBadGateway && se.Message == "model offline"
			},
		},
		{
			"malformed body", http.StatusOK, `not json`,
			func(err error) bool { return errors.Is(err, transport.ErrMalformedResponse) },
		},
		{
			"missing results", http.StatusOK, `{"status":"ok"}`,
			func(err error) bool { return errors.Is(err, transport.ErrMalformedResponse) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).Classify(context.Background(), batch)
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestClassifyUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(url).Classify(context.Background(), batch)
	if !errors.Is(err, transport.ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}

func TestClassifyContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient(srv.URL).Classify(ctx, batch)
	if !errors.Is(err, transport.ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}
