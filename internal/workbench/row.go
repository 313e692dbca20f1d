// Package workbench runs the classification and routing workflow for
// operator sessions. Each session owns a list of document rows that move
// through classification, category assignment, recipient resolution and
// dispatch, with per-row retry.
package workbench

import (
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/docroute/internal/categories"
)

// Status is the classification state of a row.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusDone       Status = "Done"
	StatusFailed     Status = "Failed"
)

// parseStatus maps a classifier status to a row status. Blank or "done" in
// any case is StatusDone; every other value collapses to StatusFailed.
func parseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "done":
		return StatusDone
	default:
		return StatusFailed
	}
}

// SendStatus is the dispatch state of a row, independent of Status.
type SendStatus string

const (
	SendIdle    SendStatus = "Idle"
	SendSending SendStatus = "Sending"
	SendSent    SendStatus = "Sent"
	SendFailed  SendStatus = "Failed"
)

// Row is one uploaded document's progress within a session.
type Row struct {
	ID          uuid.UUID      `json:"id"`
	BatchID     uuid.UUID      `json:"batch_id"`
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Category    categories.Ref `json:"category"`
	Intent      string         `json:"intent"`
	ToEmail     string         `json:"to_email"`
	SendStatus  SendStatus     `json:"send_status"`
	SendError   string         `json:"send_error,omitempty"`
	ContentType string         `json:"content_type"`
	SizeBytes   int64          `json:"size_bytes"`
	PageCount   *int           `json:"page_count,omitempty"`
	StorageKey  string         `json:"storage_key,omitempty"`
}

// Batch reports the rows created by one submission. Error carries the
// classification failure, if any; the rows then report StatusFailed.
type Batch struct {
	ID    uuid.UUID `json:"id"`
	Rows  []Row     `json:"results"`
	Error string    `json:"error,omitempty"`
}
