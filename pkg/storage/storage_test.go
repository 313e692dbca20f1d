package storage_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/JaimeStill/docroute/pkg/storage"
)

const devConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func TestConfigFinalize(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		cfg := &storage.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if cfg.Enabled() {
			t.Error("expected storage disabled")
		}
		if cfg.ContainerName != "documents" {
			t.Errorf("container = %q, want documents", cfg.ContainerName)
		}
	})

	t.Run("env enables", func(t *testing.T) {
		t.Setenv("TEST_STORAGE_ACCOUNT_URL", "https://acct.blob.core.windows.net")
		cfg := &storage.Config{}
		if err := cfg.Finalize(&storage.Env{AccountURL: "TEST_STORAGE_ACCOUNT_URL"}); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if !cfg.Enabled() {
			t.Error("expected storage enabled")
		}
	})

	t.Run("mutually exclusive", func(t *testing.T) {
		cfg := &storage.Config{ConnectionString: devConnString, AccountURL: "https://acct"}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected error when both are set")
		}
	})
}

func TestKeyValidation(t *testing.T) {
	sys, err := storage.New(
		&storage.Config{ContainerName: "documents", ConnectionString: devConnString},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx := context.Background()
	if err := sys.Upload(ctx, "", strings.NewReader("x"), "text/plain"); !errors.Is(err, storage.ErrEmptyKey) {
		t.Errorf("empty key err = %v", err)
	}
	if _, err := sys.Download(ctx, "sessions/../secret"); !errors.Is(err, storage.ErrInvalidKey) {
		t.Errorf("traversal err = %v", err)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", storage.ErrEmptyKey), http.StatusBadRequest},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := storage.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
