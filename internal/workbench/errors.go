package workbench

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/docroute/internal/categories"
	"github.com/JaimeStill/docroute/internal/documents"
)

// Domain errors for workbench operations.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRowNotFound     = errors.New("row not found")
	ErrBatchPending    = errors.New("a batch is already being classified")
	ErrNotReady        = errors.New("row has not finished classification")
	ErrInvalidID       = errors.New("invalid id")
	ErrEmptyUpdate     = errors.New("update has no fields")
)

// MapHTTPStatus maps workbench and ingestion errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrRowNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBatchPending), errors.Is(err, ErrNotReady):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrEmptyUpdate):
		return http.StatusBadRequest
	case errors.Is(err, documents.ErrNoFiles),
		errors.Is(err, documents.ErrInvalidFile),
		errors.Is(err, documents.ErrFileTooLarge):
		return documents.MapHTTPStatus(err)
	default:
		return categories.MapHTTPStatus(err)
	}
}
