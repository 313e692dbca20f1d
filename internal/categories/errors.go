package categories

import (
	"errors"
	"net/http"
)

// Domain errors for category operations.
var (
	ErrValidation = errors.New("invalid category")
	ErrConflict   = errors.New("category name must be unique")
	ErrNotFound   = errors.New("category not found")
)

// MapHTTPStatus maps category domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
