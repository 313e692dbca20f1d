// Package documents ingests uploaded files for classification. It reads
// multipart batches, detects content types, extracts PDF page counts, and
// optionally archives the originals to blob storage.
package documents

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// File is an uploaded document held in memory for the duration of a batch.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	PageCount   *int
}

// Size returns the length of the file content in bytes.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// NewFile builds a File, detecting the content type when the declared one
// is missing or generic and extracting the page count for PDFs.
func NewFile(logger *slog.Logger, name, declaredType string, data []byte) File {
	contentType := detectContentType(declaredType, data)
	return File{
		Name:        name,
		ContentType: contentType,
		Data:        data,
		PageCount:   extractPDFPageCount(logger, data, contentType),
	}
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(logger *slog.Logger, data []byte, contentType string) *int {
	if contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}
