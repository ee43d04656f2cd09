package statehub

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// The tests exercise hub behavior (fan-out, replay, slow-client
// eviction) without standing up a real websocket server: clients are
// constructed with a nil conn, which the hub guards against on close.

func newTestHub(t *testing.T, sendBuf, broadcastBuf int) *Hub {
	t.Helper()
	return NewHub(slog.Default(), Config{SendBuf: sendBuf, BroadcastBuf: broadcastBuf})
}

func registerAndWait(t *testing.T, hub *Hub, c *Client) {
	t.Helper()
	hub.register <- c
	waitUntil(t, 500*time.Millisecond, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		_, ok := hub.clients[c]
		return ok
	}, "client not registered in time")
}

func TestBroadcastDeliveredToAllClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := newTestHub(t, 4, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Run(ctx)
	}()

	c1 := &Client{hub: hub, send: make(chan []byte, 4), remoteAddr: "c1", logger: slog.Default()}
	c2 := &Client{hub: hub, send: make(chan []byte, 4), remoteAddr: "c2", logger: slog.Default()}
	registerAndWait(t, hub, c1)
	registerAndWait(t, hub, c2)

	msg := []byte(`{"type":"spin_settled","data":{"label":"4 - 5 - 6"}}`)
	hub.broadcast <- msg

	for _, c := range []*Client{c1, c2} {
		select {
		case got := <-c.send:
			if string(got) != string(msg) {
				t.Fatalf("%s got %q, want %q", c.remoteAddr, got, msg)
			}
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("timeout waiting for %s to receive broadcast", c.remoteAddr)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for hub to stop")
	}
}

func TestNewClientReceivesLastFrame(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := newTestHub(t, 4, 8)
	go hub.Run(ctx)

	msg := []byte(`{"type":"spin_settled","data":{"label":"House Wins"}}`)
	hub.broadcast <- msg

	// Wait for the broadcast to be absorbed as the cached frame.
	waitUntil(t, 500*time.Millisecond, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return hub.last != nil
	}, "last frame never cached")

	late := &Client{hub: hub, send: make(chan []byte, 4), remoteAddr: "late", logger: slog.Default()}
	registerAndWait(t, hub, late)

	select {
	case got := <-late.send:
		if string(got) != string(msg) {
			t.Fatalf("late client got %q, want replayed %q", got, msg)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("late client never received the cached frame")
	}
}

func TestSlowClientDisconnectedOnFullSendBuffer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := newTestHub(t, 1, 8)
	go hub.Run(ctx)

	slow := &Client{hub: hub, send: make(chan []byte, 1), remoteAddr: "slow", logger: slog.Default()}
	fast := &Client{hub: hub, send: make(chan []byte, 8), remoteAddr: "fast", logger: slog.Default()}
	registerAndWait(t, hub, slow)
	registerAndWait(t, hub, fast)

	// Fill the slow client's buffer to simulate it being stuck.
	slow.send <- []byte(`"already queued"`)

	msg := []byte(`{"type":"spin_started"}`)
	hub.broadcast <- msg

	select {
	case got := <-fast.send:
		if string(got) != string(msg) {
			t.Fatalf("fast client got %q, want %q", got, msg)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting for fast client")
	}

	// Drain the pre-filled message, then the channel must be closed.
	select {
	case <-slow.send:
	default:
	}
	waitUntil(t, 750*time.Millisecond, func() bool {
		select {
		case _, ok := <-slow.send:
			return !ok
		default:
			return false
		}
	}, "expected slow send channel to be closed")
}

func TestBroadcastEnvelopeShape(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := newTestHub(t, 4, 8)
	go hub.Run(ctx)

	c := &Client{hub: hub, send: make(chan []byte, 4), remoteAddr: "c", logger: slog.Default()}
	registerAndWait(t, hub, c)

	hub.Broadcast("spin_settled", map[string]any{"label": "Spin Again"})

	select {
	case got := <-c.send:
		s := string(got)
		for _, want := range []string{`"type":"spin_settled"`, `"ts":`, `"label":"Spin Again"`} {
			if !strings.Contains(s, want) {
				t.Fatalf("envelope %s missing %s", s, want)
			}
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting for envelope")
	}
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout: %s", msg)
}
