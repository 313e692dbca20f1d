package documents

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/docroute/pkg/formatting"
)

// FilesField is the multipart field carrying batch files.
const FilesField = "files"

// ReadMultipart reads every file under field from a multipart request,
// bounded by maxSize bytes for the whole body.
func ReadMultipart(logger *slog.Logger, w http.ResponseWriter, r *http.Request, field string, maxSize int64) ([]File, error) {
	if r.ContentLength > maxSize {
		return nil, tooLarge(maxSize)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, tooLarge(maxSize)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, ErrNoFiles
	}

	files := make([]File, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrInvalidFile, header.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidFile, header.Filename, err)
		}

		files = append(files, NewFile(logger, header.Filename, header.Header.Get("Content-Type"), data))
	}
	return files, nil
}

func tooLarge(limit int64) error {
	return fmt.Errorf("%w: limit is %s", ErrFileTooLarge, formatting.FormatBytes(limit, 1))
}
