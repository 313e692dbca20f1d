package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/JaimeStill/docroute/internal/config"
	"github.com/JaimeStill/docroute/internal/dispatch"
	"github.com/JaimeStill/docroute/pkg/auth"
	"github.com/JaimeStill/docroute/pkg/lifecycle"
	"github.com/JaimeStill/docroute/pkg/transport"
)

const subject = "docroute.test.dispatch"

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var note = dispatch.Notification{
	Name:     "a.pdf",
	Category: "Finance",
	Intent:   "invoice",
	ToEmail:  "fin@x.com",
}

func credentialed() context.Context {
	return auth.WithCredential(context.Background(), auth.Credential{Token: "tok"})
}

func TestHTTPSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		var got dispatch.Notification
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		if got != note {
			t.Errorf("payload = %+v", got)
		}
		io.WriteString(w, `{"message":"sent"}`)
	}))
	defer srv.Close()

	s := dispatch.NewHTTP(srv.URL, nil, time.Second, discard())
	if err := s.Send(credentialed(), note); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func TestHTTPSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"smtp unavailable"}`)
	}))
	defer srv.Close()

	err := dispatch.NewHTTP(srv.URL, nil, time.Second, discard()).Send(context.Background(), note)

	var se *transport.ServerError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want ServerError", err)
	}
	if se.Message != "smtp unavailable" {
		t.Errorf("message = %q", se.Message)
	}
}

func TestHTTPSendTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	err := dispatch.NewHTTP(srv.URL, nil, 50*time.Millisecond, discard()).Send(context.Background(), note)
	if !errors.Is(err, transport.ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}

func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func startSender(t *testing.T, url string) dispatch.Sender {
	t.Helper()
	s, err := dispatch.NewNATS(url, subject, 2*time.Second, discard())
	if err != nil {
		t.Fatalf("new nats sender: %v", err)
	}

	lc := lifecycle.New()
	if err := s.Start(lc); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { lc.Shutdown(5 * time.Second) })
	return s
}

func respond(t *testing.T, url string, handler func(*nats.Msg) dispatch.Reply) {
	t.Helper()
	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connect responder: %v", err)
	}
	t.Cleanup(nc.Close)

	_, err = nc.Subscribe(subject, func(msg *nats.Msg) {
		data, _ := json.Marshal(handler(msg))
		msg.Respond(data)
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := nc.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestNATSSend(t *testing.T) {
	url := startTestNATS(t)

	received := make(chan dispatch.Notification, 1)
	respond(t, url, func(msg *nats.Msg) dispatch.Reply {
		if got := msg.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		var n dispatch.Notification
		json.Unmarshal(msg.Data, &n)
		received <- n
		return dispatch.Reply{OK: true}
	})

	s := startSender(t, url)
	if err := s.Send(credentialed(), note); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case n := <-received:
		if n != note {
			t.Errorf("payload = %+v", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("responder did not receive notification")
	}
}

func TestNATSSendRejected(t *testing.T) {
	url := startTestNATS(t)
	respond(t, url, func(*nats.Msg) dispatch.Reply {
		return dispatch.Reply{OK: false, Error: "mailbox full"}
	})

	err := startSender(t, url).Send(context.Background(), note)

	var se *transport.ServerError
	if !errors.As(err, &se) || se.Message != "mailbox full" {
		t.Fatalf("err = %v, want ServerError(mailbox full)", err)
	}
}

func TestNATSSendNoResponders(t *testing.T) {
	url := startTestNATS(t)

	err := startSender(t, url).Send(context.Background(), note)
	if !errors.Is(err, transport.ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}

func TestNew(t *testing.T) {
	s, err := dispatch.New(&config.DispatchConfig{Driver: config.DispatchHTTP, URL: "http://relay.test/send", Timeout: "1s"}, discard())
	if err != nil || s == nil {
		t.Fatalf("http driver: %v", err)
	}

	if _, err := dispatch.New(&config.DispatchConfig{Driver: "smtp"}, discard()); err == nil {
		t.Error("expected error for unknown driver")
	}
}
