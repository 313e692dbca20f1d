package documents

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/docroute/pkg/storage"
)

const archiveConcurrency = 4

// Archive stores batch originals in blob storage.
type Archive interface {
	// Store uploads files and returns their storage keys by position. A file
	// that failed to upload has an empty key; the first failure is returned
	// after all uploads finish.
	Store(ctx context.Context, batchID uuid.UUID, files []File) ([]string, error)
}

type archive struct {
	storage storage.System
	logger  *slog.Logger
}

// NewArchive creates an Archive over the given storage system.
func NewArchive(store storage.System, logger *slog.Logger) Archive {
	return &archive{
		storage: store,
		logger:  logger.With("system", "archive"),
	}
}

func (a *archive) Store(ctx context.Context, batchID uuid.UUID, files []File) ([]string, error) {
	keys := make([]string, len(files))

	var g errgroup.Group
	g.SetLimit(archiveConcurrency)

	for i, f := range files {
		g.Go(func() error {
			key := buildStorageKey(batchID, i, sanitizeFilename(f.Name))
			if err := a.storage.Upload(ctx, key, bytes.NewReader(f.Data), f.ContentType); err != nil {
				a.logger.Warn("archive upload failed", "batch", batchID, "file", f.Name, "error", err)
				return fmt.Errorf("archive %s: %w", f.Name, err)
			}
			keys[i] = key
			return nil
		})
	}

	err := g.Wait()
	return keys, err
}

func buildStorageKey(batchID uuid.UUID, index int, filename string) string {
	return fmt.Sprintf("batches/%s/%03d-%s", batchID, index, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "/" || name == "" {
		name = "document"
	}
	return url.PathEscape(name)
}
