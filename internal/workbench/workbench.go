package workbench

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/docroute/internal/categories"
	"github.com/JaimeStill/docroute/internal/classifier"
	"github.com/JaimeStill/docroute/internal/dispatch"
	"github.com/JaimeStill/docroute/internal/documents"
	"github.com/JaimeStill/docroute/internal/recipients"
)

// Registry supplies the category snapshot used for recipient resolution.
type Registry interface {
	Snapshot(ctx context.Context) (categories.Snapshot, error)
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Registry   Registry
	Classifier classifier.Classifier
	Sender     dispatch.Sender
	// Archive is optional; when nil, uploads are not archived.
	Archive         documents.Archive
	ClassifyTimeout time.Duration
	Logger          *slog.Logger
}

// Workbench is one operator session. Rows are held in display order with
// the most recent batch first.
type Workbench struct {
	id   uuid.UUID
	deps Deps
	log  *slog.Logger
	now  func() time.Time

	mu         sync.Mutex
	rows       []*Row
	pending    map[uuid.UUID][]uuid.UUID
	sending    int
	lastActive time.Time
}

// New creates an empty session.
func New(deps Deps) *Workbench {
	return newWorkbench(uuid.New(), deps, time.Now)
}

func newWorkbench(id uuid.UUID, deps Deps, now func() time.Time) *Workbench {
	return &Workbench{
		id:         id,
		deps:       deps,
		log:        deps.Logger.With("session", id),
		now:        now,
		pending:    make(map[uuid.UUID][]uuid.UUID),
		lastActive: now(),
	}
}

// ID returns the session identifier.
func (w *Workbench) ID() uuid.UUID {
	return w.id
}

// Rows returns a copy of every row in display order.
func (w *Workbench) Rows() []Row {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()

	out := make([]Row, len(w.rows))
	for i, r := range w.rows {
		out[i] = *r
	}
	return out
}

// Row returns a copy of the row with id.
func (w *Workbench) Row(id uuid.UUID) (Row, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()

	r := w.find(id)
	if r == nil {
		return Row{}, ErrRowNotFound
	}
	return *r, nil
}

// SubmitBatch classifies files as one batch. Placeholder rows are prepended
// immediately; the call blocks until classification resolves and returns
// the batch rows in submission order. Classification failures are reported
// in Batch.Error with the rows marked failed, not as an error.
func (w *Workbench) SubmitBatch(ctx context.Context, files []documents.File) (Batch, error) {
	if len(files) == 0 {
		return Batch{}, documents.ErrNoFiles
	}

	batch, err := w.placeholders(files)
	if err != nil {
		return Batch{}, err
	}
	log := w.log.With("batch", batch.ID)
	log.Info("batch submitted", "files", len(files))

	// Outstanding calls run to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	if w.deps.Archive != nil {
		w.archive(ctx, log, batch.ID, files)
	}

	cctx, cancel := context.WithTimeout(ctx, w.classifyTimeout())
	results, err := w.deps.Classifier.Classify(cctx, files)
	cancel()

	if err != nil {
		log.Warn("batch classification failed", "error", err)
		batch.Rows = w.failBatch(batch.ID)
		batch.Error = err.Error()
		return batch, nil
	}

	snap, err := w.deps.Registry.Snapshot(ctx)
	if err != nil {
		log.Warn("category snapshot unavailable, recipients left unset", "error", err)
		snap = categories.Snapshot{}
	}

	batch.Rows = w.reconcile(batch.ID, results, snap)
	log.Info("batch classified", "files", len(files), "results", len(results))
	return batch, nil
}

func (w *Workbench) placeholders(files []documents.File) (Batch, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()

	if len(w.pending) > 0 {
		return Batch{}, ErrBatchPending
	}

	batch := Batch{ID: uuid.New(), Rows: make([]Row, len(files))}
	ids := make([]uuid.UUID, len(files))
	rows := make([]*Row, len(files))

	for i, f := range files {
		r := &Row{
			ID:          uuid.New(),
			BatchID:     batch.ID,
			Name:        f.Name,
			Status:      StatusProcessing,
			Category:    categories.Other,
			SendStatus:  SendIdle,
			ContentType: f.ContentType,
			SizeBytes:   f.Size(),
			PageCount:   f.PageCount,
		}
		rows[i] = r
		ids[i] = r.ID
		batch.Rows[i] = *r
	}

	w.rows = append(rows, w.rows...)
	w.pending[batch.ID] = ids
	return batch, nil
}

func (w *Workbench) archive(ctx context.Context, log *slog.Logger, batchID uuid.UUID, files []documents.File) {
	keys, err := w.deps.Archive.Store(ctx, batchID, files)
	if err != nil {
		log.Warn("batch archive incomplete", "error", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for i, id := range w.pending[batchID] {
		if i >= len(keys) || keys[i] == "" {
			continue
		}
		if r := w.find(id); r != nil {
			r.StorageKey = keys[i]
		}
	}
}

// reconcile applies positional results to the batch placeholders. Removed
// rows are skipped and placeholders without a result fail.
func (w *Workbench) reconcile(batchID uuid.UUID, results []classifier.Result, snap categories.Snapshot) []Row {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids := w.pending[batchID]
	delete(w.pending, batchID)

	out := make([]Row, 0, len(ids))
	for i, id := range ids {
		r := w.find(id)
		if r == nil {
			continue
		}

		if i >= len(results) {
			r.Status = StatusFailed
			out = append(out, *r)
			continue
		}

		res := results[i]
		if name := strings.TrimSpace(res.Name); name != "" {
			r.Name = name
		}
		r.Status = parseStatus(res.Status)
		r.Category = categories.ParseRef(res.Category)
		r.Intent = res.Intent
		r.ToEmail, _ = recipients.Resolve(r.Category, snap)
		out = append(out, *r)
	}
	return out
}

func (w *Workbench) failBatch(batchID uuid.UUID) []Row {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids := w.pending[batchID]
	delete(w.pending, batchID)

	out := make([]Row, 0, len(ids))
	for _, id := range ids {
		if r := w.find(id); r != nil {
			r.Status = StatusFailed
			out = append(out, *r)
		}
	}
	return out
}

// SetCategory assigns a category to a row. A named category overwrites the
// recipient with the registry's receiver, or clears it when the category is
// not registered. Other leaves the recipient untouched.
func (w *Workbench) SetCategory(ctx context.Context, id uuid.UUID, name string) (Row, error) {
	ref := categories.ParseRef(name)

	var email string
	if !ref.IsOther() {
		snap, err := w.deps.Registry.Snapshot(ctx)
		if err != nil {
			return Row{}, fmt.Errorf("resolve recipient: %w", err)
		}
		email, _ = recipients.Resolve(ref, snap)
	}

	return w.update(id, func(r *Row) {
		r.Category = ref
		if !ref.IsOther() {
			r.ToEmail = email
		}
	})
}

// SetIntent replaces a row's intent text.
func (w *Workbench) SetIntent(id uuid.UUID, text string) (Row, error) {
	return w.update(id, func(r *Row) {
		r.Intent = text
	})
}

// SetRecipient manually overrides a row's recipient. The address is
// validated when the row is sent.
func (w *Workbench) SetRecipient(id uuid.UUID, email string) (Row, error) {
	return w.update(id, func(r *Row) {
		r.ToEmail = strings.TrimSpace(email)
	})
}

// RemoveRow deletes a row. Results still in flight for it are discarded.
func (w *Workbench) RemoveRow(id uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()

	i := slices.IndexFunc(w.rows, func(r *Row) bool { return r.ID == id })
	if i < 0 {
		return ErrRowNotFound
	}
	w.rows = slices.Delete(w.rows, i, i+1)
	return nil
}

// Send dispatches a row's notification. A row already sending is left as
// is. An invalid recipient fails the send without contacting the sender.
// Rows that have not classified successfully return ErrNotReady unchanged.
// Delivery failures are reported through the row's SendStatus.
func (w *Workbench) Send(ctx context.Context, id uuid.UUID) (Row, error) {
	n, row, started, err := w.beginSend(id)
	if err != nil || !started {
		return row, err
	}

	err = w.deps.Sender.Send(context.WithoutCancel(ctx), n)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.sending--

	r := w.find(id)
	if r == nil {
		w.log.Info("send result discarded for removed row", "row", id, "error", err)
		return Row{}, ErrRowNotFound
	}

	if err != nil {
		r.SendStatus = SendFailed
		r.SendError = err.Error()
		w.log.Warn("send failed", "row", id, "to", n.ToEmail, "error", err)
	} else {
		r.SendStatus = SendSent
		w.log.Info("row sent", "row", id, "to", n.ToEmail)
	}
	return *r, nil
}

// beginSend checks send preconditions and marks the row Sending. started
// is true only when the caller now owns a transport call and must settle it.
func (w *Workbench) beginSend(id uuid.UUID) (n dispatch.Notification, row Row, started bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()

	r := w.find(id)
	if r == nil {
		return n, Row{}, false, ErrRowNotFound
	}
	if r.SendStatus == SendSending {
		return n, *r, false, nil
	}

	to := strings.TrimSpace(r.ToEmail)
	if !categories.ValidEmail(to) {
		r.SendStatus = SendFailed
		r.SendError = fmt.Sprintf("recipient %q is not a valid email address", to)
		return n, *r, false, nil
	}
	if r.Status != StatusDone {
		return n, *r, false, ErrNotReady
	}

	r.SendStatus = SendSending
	r.SendError = ""
	w.sending++

	n = dispatch.Notification{
		Name:     r.Name,
		Category: r.Category.Name(),
		Intent:   r.Intent,
		ToEmail:  to,
	}
	return n, *r, true, nil
}

func (w *Workbench) update(id uuid.UUID, fn func(*Row)) (Row, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touch()

	r := w.find(id)
	if r == nil {
		return Row{}, ErrRowNotFound
	}
	fn(r)
	return *r, nil
}

// idleSince reports whether the session has been inactive since cutoff with
// no batch or send outstanding.
func (w *Workbench) idleSince(cutoff time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending) == 0 && w.sending == 0 && w.lastActive.Before(cutoff)
}

func (w *Workbench) touch() {
	w.lastActive = w.now()
}

func (w *Workbench) find(id uuid.UUID) *Row {
	for _, r := range w.rows {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (w *Workbench) classifyTimeout() time.Duration {
	if w.deps.ClassifyTimeout > 0 {
		return w.deps.ClassifyTimeout
	}
	return 2 * time.Minute
}
