package viewer

import (
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"nhooyr.io/websocket"

	"github.com/playperu/resultboard/internal/hub"
)

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func dial(t *testing.T, ctx context.Context, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func TestViewerReceivesBroadcasts(t *testing.T) {
	h := hub.New(slog.Default())
	defer h.Close()

	srv := httptest.NewServer(NewHandler(slog.Default(), h, clockwork.NewRealClock(), 0).Routes())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + srv.URL[len("http"):] + "/"
	first := dial(t, ctx, wsURL)
	second := dial(t, ctx, wsURL)
	waitUntil(t, func() bool { return h.Len() == 2 })

	// Frames from viewers are ignored and must not break the session.
	if err := first.Write(ctx, websocket.MessageText, []byte("hello?")); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := `{"type":"DISPLAY_PROGRAM","payload":{"program_name":"Dance Solo","section":"Senior"}}`
	if n := h.Broadcast([]byte(want)); n != 2 {
		t.Fatalf("queued for %d viewers, want 2", n)
	}

	for i, conn := range []*websocket.Conn{first, second} {
		typ, got, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("viewer %d read: %v", i, err)
		}
		if typ != websocket.MessageText {
			t.Errorf("viewer %d message type = %v, want text", i, typ)
		}
		if string(got) != want {
			t.Errorf("viewer %d got %s, want %s", i, got, want)
		}
	}
}

func TestViewerDisconnectUnregisters(t *testing.T) {
	h := hub.New(slog.Default())
	defer h.Close()

	srv := httptest.NewServer(NewHandler(slog.Default(), h, clockwork.NewRealClock(), 0).Routes())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + srv.URL[len("http"):] + "/"
	leaving := dial(t, ctx, wsURL)
	staying := dial(t, ctx, wsURL)
	waitUntil(t, func() bool { return h.Len() == 2 })

	leaving.Close(websocket.StatusNormalClosure, "bye")
	waitUntil(t, func() bool { return h.Len() == 1 })

	h.Broadcast([]byte("after"))
	_, got, err := staying.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "after" {
		t.Errorf("got %q, want %q", got, "after")
	}
}

func TestKeepalive(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pingErr := errors.New("no pong")
	calls := make(chan struct{}, 2)
	results := []error{nil, pingErr}
	ping := func(context.Context) error {
		err := results[0]
		results = results[1:]
		calls <- struct{}{}
		return err
	}

	done := make(chan error, 1)
	go func() { done <- keepalive(ctx, clock, 30*time.Second, ping) }()

	for range 2 {
		if err := clock.BlockUntilContext(ctx, 1); err != nil {
			t.Fatalf("waiting for ticker: %v", err)
		}
		clock.Advance(30 * time.Second)
		select {
		case <-calls:
		case <-ctx.Done():
			t.Fatal("ping was not called")
		}
	}

	select {
	case err := <-done:
		if !errors.Is(err, pingErr) {
			t.Fatalf("keepalive returned %v, want %v", err, pingErr)
		}
	case <-ctx.Done():
		t.Fatal("keepalive did not return after failed ping")
	}
}

func TestKeepaliveStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := keepalive(ctx, clockwork.NewFakeClock(), time.Second, func(context.Context) error {
		t.Error("ping should not be called")
		return nil
	})
	if err != nil {
		t.Fatalf("keepalive returned %v, want nil", err)
	}
}
