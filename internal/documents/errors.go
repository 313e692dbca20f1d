package documents

import (
	"errors"
	"net/http"
)

// Domain errors for document ingestion.
var (
	ErrNoFiles      = errors.New("no files provided")
	ErrFileTooLarge = errors.New("upload exceeds maximum size")
	ErrInvalidFile  = errors.New("invalid file")
)

// MapHTTPStatus maps document errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrNoFiles) || errors.Is(err, ErrInvalidFile) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
