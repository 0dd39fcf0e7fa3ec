package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/ampwatch/internal/frame"
	"github.com/muurk/ampwatch/internal/pipeline"
	"github.com/muurk/ampwatch/internal/report"
	"github.com/muurk/ampwatch/internal/store"
)

const txFrame = "34751a2b3c4d800d010003e8000000fa0000bf740"

type fakeHistory struct {
	entries []store.Entry
	err     error
	limit   int
}

func (f *fakeHistory) Recent(_ context.Context, limit int) ([]store.Entry, error) {
	f.limit = limit
	return f.entries, f.err
}

func reading(t *testing.T, crc uint16) pipeline.Reading {
	t.Helper()
	f, err := frame.WithCRC(txFrame, crc)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := frame.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	return pipeline.Reading{Date: "2024-01-05 10:00:00", Record: rec}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	s := New(Config{}, nil, nil, nil)
	rec := get(t, s.Router(), "/healthz")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestReadings(t *testing.T) {
	history := &fakeHistory{entries: []store.Entry{{Date: "a", SenderID: "3c4d", TotalAh: 10}}}

	tests := []struct {
		name      string
		history   History
		target    string
		status    int
		wantLimit int
		contains  string
	}{
		{"default limit", history, "/readings", http.StatusOK, DefaultReadingsLimit, `"sender_id":"3c4d"`},
		{"explicit limit", history, "/readings?limit=5", http.StatusOK, 5, `"total_ah":10`},
		{"capped limit", history, "/readings?limit=5000", http.StatusOK, MaxReadingsLimit, "["},
		{"bad limit", history, "/readings?limit=abc", http.StatusBadRequest, 0, "positive integer"},
		{"zero limit", history, "/readings?limit=0", http.StatusBadRequest, 0, "positive integer"},
		{"no store", nil, "/readings", http.StatusServiceUnavailable, 0, "not enabled"},
		{"store error", &fakeHistory{err: errors.New("locked")}, "/readings", http.StatusInternalServerError, 0, "failed"},
		{"empty store", &fakeHistory{}, "/readings", http.StatusOK, 0, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history.limit = 0
			s := New(Config{}, nil, tt.history, nil)
			rec := get(t, s.Router(), tt.target)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body = %s, want it to contain %s", rec.Body.String(), tt.contains)
			}
			if tt.wantLimit != 0 && history.limit != tt.wantLimit {
				t.Errorf("Recent() limit = %d, want %d", history.limit, tt.wantLimit)
			}
		})
	}
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ampwatch_lines_total 1\n"))
	})

	if rec := get(t, New(Config{}, nil, nil, metrics).Router(), "/metrics"); rec.Code != http.StatusOK {
		t.Errorf("status with metrics = %d", rec.Code)
	}
	if rec := get(t, New(Config{}, nil, nil, nil).Router(), "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("status without metrics = %d, want 404", rec.Code)
	}
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("hub has %d clients, want %d", hub.Clients(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLiveFeed(t *testing.T) {
	hub := NewHub(0)
	ts := httptest.NewServer(New(Config{}, hub, nil, nil).Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)

	ctx := context.Background()
	// invalid, shifted right and shifted left are held back
	for _, crc := range []uint16{0x1234, 0x5fba, 0x7ee8, 0xbf74} {
		if err := hub.Handle(ctx, reading(t, crc)); err != nil {
			t.Fatal(err)
		}
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	doc, err := report.DecodeDocument(data)
	if err != nil {
		t.Fatal(err)
	}
	if doc.CRCResult != "valid" {
		t.Errorf("first broadcast crc_result = %q, want valid", doc.CRCResult)
	}

	_ = conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, extra, err := conn.ReadMessage(); err == nil {
		t.Errorf("unexpected second broadcast %s", extra)
	}

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(0)
	ts := httptest.NewServer(New(Config{}, hub, nil, nil).Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)

	hub.Close()
	if hub.Clients() != 0 {
		t.Errorf("Clients() = %d after Close", hub.Clients())
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("ReadMessage() error = %v, want going-away close", err)
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	s := New(Config{Listen: "127.0.0.1:0", ShutdownTimeout: time.Second}, nil, nil, nil)
	addr, err := s.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	resp, err := http.Get("http://" + addr.String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
