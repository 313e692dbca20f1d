package workbench

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/docroute/internal/documents"
	"github.com/JaimeStill/docroute/pkg/handlers"
	"github.com/JaimeStill/docroute/pkg/routes"
)

// Handler provides HTTP endpoints for workbench sessions.
type Handler struct {
	sessions      *Sessions
	logger        *slog.Logger
	maxUploadSize int64
}

// SessionResponse is the JSON view of a session.
type SessionResponse struct {
	ID   uuid.UUID `json:"id"`
	Rows []Row     `json:"rows"`
}

// RowUpdate carries the row fields to change. Nil fields are left as is.
// A category is applied before an explicit recipient.
type RowUpdate struct {
	Category *string `json:"category"`
	Intent   *string `json:"intent"`
	ToEmail  *string `json:"to_email"`
}

// NewHandler creates a Handler over sessions.
func NewHandler(sessions *Sessions, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sessions:      sessions,
		logger:        logger.With("handler", "workbench"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for session endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "/{id}", Handler: h.Get},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Close},
			{Method: "POST", Pattern: "/{id}/batches", Handler: h.Submit},
			{Method: "PATCH", Pattern: "/{id}/rows/{row}", Handler: h.UpdateRow},
			{Method: "DELETE", Pattern: "/{id}/rows/{row}", Handler: h.RemoveRow},
			{Method: "POST", Pattern: "/{id}/rows/{row}/send", Handler: h.Send},
		},
	}
}

// Create opens a new session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	wb := h.sessions.Create()
	handlers.RespondJSON(w, http.StatusCreated, SessionResponse{ID: wb.ID(), Rows: []Row{}})
}

// Get returns a session and its rows.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	wb, ok := h.session(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, SessionResponse{ID: wb.ID(), Rows: wb.Rows()})
}

// Close discards a session.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}
	if err := h.sessions.Close(id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Submit classifies the multipart files of the request as one batch.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	wb, ok := h.session(w, r)
	if !ok {
		return
	}

	files, err := documents.ReadMultipart(h.logger, w, r, documents.FilesField, h.maxUploadSize)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	batch, err := wb.SubmitBatch(r.Context(), files)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, batch)
}

// UpdateRow edits a row's category, intent or recipient.
func (h *Handler) UpdateRow(w http.ResponseWriter, r *http.Request) {
	wb, id, ok := h.row(w, r)
	if !ok {
		return
	}

	upd, err := handlers.DecodeJSON[RowUpdate](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if upd.Category == nil && upd.Intent == nil && upd.ToEmail == nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyUpdate)
		return
	}

	var row Row
	if upd.Category != nil {
		if row, err = wb.SetCategory(r.Context(), id, *upd.Category); err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
	}
	if upd.ToEmail != nil {
		if row, err = wb.SetRecipient(id, *upd.ToEmail); err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
	}
	if upd.Intent != nil {
		if row, err = wb.SetIntent(id, *upd.Intent); err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
	}
	handlers.RespondJSON(w, http.StatusOK, row)
}

// RemoveRow deletes a row from the session.
func (h *Handler) RemoveRow(w http.ResponseWriter, r *http.Request) {
	wb, id, ok := h.row(w, r)
	if !ok {
		return
	}
	if err := wb.RemoveRow(id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Send dispatches the row's notification and returns the row with its
// resulting send status.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	wb, id, ok := h.row(w, r)
	if !ok {
		return
	}

	row, err := wb.Send(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, row)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Workbench, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return nil, false
	}

	wb, err := h.sessions.Get(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}
	return wb, true
}

func (h *Handler) row(w http.ResponseWriter, r *http.Request) (*Workbench, uuid.UUID, bool) {
	wb, ok := h.session(w, r)
	if !ok {
		return nil, uuid.Nil, false
	}

	id, err := uuid.Parse(r.PathValue("row"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return nil, uuid.Nil, false
	}
	return wb, id, true
}
