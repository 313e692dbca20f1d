package categories

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/docroute/pkg/handlers"
	"github.com/JaimeStill/docroute/pkg/routes"
)

// Handler provides HTTP endpoints for category management.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// ListResponse is the body returned by the list endpoint.
type ListResponse struct {
	Categories []Category `json:"categories"`
}

// AddRequest is the body of the add endpoint.
type AddRequest struct {
	Category      string   `json:"category"`
	Keywords      Keywords `json:"keywords"`
	ReceiverEmail string   `json:"receiver_email"`
}

// EditRequest identifies a category by its current name and carries its replacement fields.
type EditRequest struct {
	Name   string `json:"name"`
	Update Input  `json:"update"`
}

// DeleteRequest identifies the category to remove.
type DeleteRequest struct {
	Name string `json:"name"`
}

// MessageResponse acknowledges an operation without a resource body.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewHandler creates a Handler for the given system.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "categories"),
	}
}

// Routes returns the route group definition for category endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/categories",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Add},
			{Method: "PUT", Pattern: "", Handler: h.Edit},
			{Method: "DELETE", Pattern: "", Handler: h.Delete},
		},
	}
}

// List returns every category in registry order.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, ListResponse{Categories: items})
}

// Add registers a new category.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[AddRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	c, err := h.sys.Add(r.Context(), Input{
		Name:          req.Category,
		Keywords:      req.Keywords,
		ReceiverEmail: req.ReceiverEmail,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, c)
}

// Edit replaces the fields of an existing category.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[EditRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	c, err := h.sys.Edit(r.Context(), req.Name, req.Update)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, c)
}

// Delete removes a category by name.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[DeleteRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.Delete(r.Context(), req.Name); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("category %s deleted", req.Name),
	})
}
