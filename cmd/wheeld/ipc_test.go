package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// startIPCServer runs the IPC server on a throwaway socket and blocks
// until it is accepting connections.
func startIPCServer(t *testing.T) (string, chan Event) {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "ipc.sock")
	events := make(chan Event, 16)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runIPCServer(ctx, socketPath, events, logger)
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("IPC server exited with error: %v", err)
		}
	})

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(socketPath); err == nil {
			return socketPath, events
		}
		if time.Now().After(deadline) {
			t.Fatal("IPC socket never appeared")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestIPCDeliversEvents(t *testing.T) {
	socketPath, events := startIPCServer(t)

	if err := SendIPCEvent(socketPath, SpinRequested{Origin: "ipc"}); err != nil {
		t.Fatalf("send spin: %v", err)
	}
	if err := SendIPCEvent(socketPath, TestStep{Delta: -1}); err != nil {
		t.Fatalf("send step: %v", err)
	}

	got := []Event{<-events, <-events}
	if spin, ok := got[0].(SpinRequested); !ok || spin.Origin != "ipc" {
		t.Errorf("first event = %#v, want SpinRequested from ipc", got[0])
	}
	if step, ok := got[1].(TestStep); !ok || step.Delta != -1 {
		t.Errorf("second event = %#v, want TestStep{-1}", got[1])
	}
}

func TestIPCRejectsMalformedRequests(t *testing.T) {
	socketPath, _ := startIPCServer(t)

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintln(conn, "not json"); err != nil {
		t.Fatalf("write: %v", err)
	}

	var resp IPCResponse
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "error" || resp.Error == "" {
		t.Errorf("response = %+v, want error status with message", resp)
	}
}

func TestIPCSnapshotRoundTrip(t *testing.T) {
	socketPath, events := startIPCServer(t)

	// Stand in for the daemon loop: answer the one snapshot request.
	go func() {
		ev := <-events
		req, ok := ev.(SnapshotRequested)
		if !ok {
			return
		}
		req.Reply <- []byte(`{"phase":"idle","segment":7}`)
	}()

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintln(conn, `{"type":"snapshot"}`); err != nil {
		t.Fatalf("write: %v", err)
	}

	var resp IPCResponse
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("status = %q (%s), want ok", resp.Status, resp.Error)
	}

	var snap struct {
		Phase   string `json:"phase"`
		Segment int    `json:"segment"`
	}
	if err := json.Unmarshal(resp.Data, &snap); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if snap.Phase != "idle" || snap.Segment != 7 {
		t.Errorf("snapshot = %+v, want the loop's answer", snap)
	}
}
