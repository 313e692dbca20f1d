package workbench

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/docroute/internal/categories"
	"github.com/JaimeStill/docroute/internal/classifier"
	"github.com/JaimeStill/docroute/internal/dispatch"
	"github.com/JaimeStill/docroute/internal/documents"
	"github.com/JaimeStill/docroute/pkg/lifecycle"
)

type stubClassifier struct {
	block chan struct{}
}

func (s stubClassifier) Classify(ctx context.Context, files []documents.File) ([]classifier.Result, error) {
	if s.block != nil {
		<-s.block
	}
	return make([]classifier.Result, len(files)), nil
}

type gatedSender struct {
	entered chan struct{}
	release chan error

	mu   sync.Mutex
	sent []dispatch.Notification
}

func (g *gatedSender) Start(*lifecycle.Coordinator) error { return nil }

func (g *gatedSender) Send(ctx context.Context, n dispatch.Notification) error {
	g.mu.Lock()
	g.sent = append(g.sent, n)
	g.mu.Unlock()
	g.entered <- struct{}{}
	return <-g.release
}

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func newTestSessions(c classifier.Classifier, clk *clock) *Sessions {
	s := NewSessions(Deps{
		Registry:   categories.New(categories.NewMemoryStore(), slog.New(slog.NewTextHandler(io.Discard, nil))),
		Classifier: c,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, 10*time.Minute)
	s.now = clk.now
	return s
}

func TestSessionsLifecycle(t *testing.T) {
	clk := &clock{t: time.Now()}
	s := newTestSessions(stubClassifier{}, clk)

	wb := s.Create()
	got, err := s.Get(wb.ID())
	if err != nil || got != wb {
		t.Fatalf("get = %v, %v", got, err)
	}

	if err := s.Close(wb.ID()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := s.Get(wb.ID()); err != ErrSessionNotFound {
		t.Errorf("get after close err = %v", err)
	}
	if err := s.Close(uuid.New()); err != ErrSessionNotFound {
		t.Errorf("close unknown err = %v", err)
	}
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	clk := &clock{t: time.Now()}
	s := newTestSessions(stubClassifier{}, clk)

	stale := s.Create()
	clk.t = clk.t.Add(8 * time.Minute)
	fresh := s.Create()
	clk.t = clk.t.Add(3 * time.Minute)

	if n := s.Sweep(); n != 1 {
		t.Fatalf("removed = %d, want 1", n)
	}
	if _, err := s.Get(stale.ID()); err != ErrSessionNotFound {
		t.Error("stale session should be expired")
	}
	if _, err := s.Get(fresh.ID()); err != nil {
		t.Error("fresh session should remain")
	}

	fresh.Rows()
	clk.t = clk.t.Add(9 * time.Minute)
	if n := s.Sweep(); n != 0 {
		t.Errorf("touched session expired early (removed %d)", n)
	}
}

func TestSweepKeepsBusySessions(t *testing.T) {
	clk := &clock{t: time.Now()}
	block := make(chan struct{})
	s := newTestSessions(stubClassifier{block: block}, clk)
	wb := s.Create()

	done := make(chan struct{})
	go func() {
		wb.SubmitBatch(context.Background(), []documents.File{{Name: "a.pdf"}})
		close(done)
	}()

	for {
		wb.mu.Lock()
		pending := len(wb.pending)
		wb.mu.Unlock()
		if pending > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	clk.t = clk.t.Add(time.Hour)
	if n := s.Sweep(); n != 0 {
		t.Errorf("busy session removed")
	}

	close(block)
	<-done
	if n := s.Sweep(); n != 1 {
		t.Errorf("removed = %d, want 1 once idle", n)
	}
}

func TestSweepAfterSendWhileSending(t *testing.T) {
	clk := &clock{t: time.Now()}
	s := newTestSessions(stubClassifier{}, clk)
	sender := &gatedSender{entered: make(chan struct{}, 1), release: make(chan error)}
	s.deps.Sender = sender

	wb := s.Create()
	ctx := context.Background()
	batch, err := wb.SubmitBatch(ctx, []documents.File{{Name: "a.pdf"}})
	if err != nil {
		t.Fatal(err)
	}
	id := batch.Rows[0].ID
	if _, err := wb.SetRecipient(id, "ops@co.com"); err != nil {
		t.Fatal(err)
	}

	done := make(chan Row)
	go func() {
		r, _ := wb.Send(ctx, id)
		done <- r
	}()
	<-sender.entered

	again, err := wb.Send(ctx, id)
	if err != nil || again.SendStatus != SendSending {
		t.Errorf("send while sending = %s, %v", again.SendStatus, err)
	}

	clk.t = clk.t.Add(time.Hour)
	if n := s.Sweep(); n != 0 {
		t.Error("session removed while a send was in flight")
	}

	sender.release <- nil
	if r := <-done; r.SendStatus != SendSent {
		t.Errorf("send status = %s, want Sent", r.SendStatus)
	}

	sender.mu.Lock()
	sent := len(sender.sent)
	sender.mu.Unlock()
	if sent != 1 {
		t.Errorf("sender calls = %d, want 1", sent)
	}

	wb.mu.Lock()
	inFlight := wb.sending
	wb.mu.Unlock()
	if inFlight != 0 {
		t.Errorf("sending = %d, want 0", inFlight)
	}

	if n := s.Sweep(); n != 1 {
		t.Errorf("removed = %d, want 1 once the send settled", n)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"", StatusDone},
		{"Done", StatusDone},
		{" done ", StatusDone},
		{"Failed", StatusFailed},
		{"Error", StatusFailed},
		{"Processing", StatusFailed},
	}

	for _, tt := range tests {
		if got := parseStatus(tt.in); got != tt.want {
			t.Errorf("parseStatus(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
