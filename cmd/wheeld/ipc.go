package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"
)

// ============================================================================
// IPC Server - Unix Domain Socket Interface
// ============================================================================
// The IPC server lets external clients drive the daemon with JSON events
// over a Unix domain socket:
//   - wheelctl and other command-line tools
//   - Scripting and automation on the table host
//
// Protocol: line-delimited JSON
//   - Client sends: {"type": "event_name", "data": {...}}
//   - Server responds: {"status": "ok"} or {"status": "error", "error": "msg"}
//   - "snapshot" additionally carries a "data" object with the reply
// ============================================================================

// snapshotTimeout bounds how long a snapshot request waits for the daemon
// loop to answer.
const snapshotTimeout = 2 * time.Second

// IPCResponse represents the response sent back to IPC clients
type IPCResponse struct {
	Status string          `json:"status"`          // "ok" or "error"
	Error  string          `json:"error,omitempty"` // error message if status == "error"
	Data   json.RawMessage `json:"data,omitempty"`  // payload for query requests
}

// runIPCServer starts the Unix domain socket server.
// It runs until ctx is canceled, at which point it closes the listener and exits.
func runIPCServer(ctx context.Context, socketPath string, events chan<- Event, logger *slog.Logger) error {
	// Remove existing socket file if it exists
	if err := os.RemoveAll(socketPath); err != nil {
		return fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", socketPath, err)
	}
	defer listener.Close()
	defer os.Remove(socketPath)

	// Make socket accessible (consider security implications in production)
	if err := os.Chmod(socketPath, 0666); err != nil {
		return fmt.Errorf("chmod socket: %w", err)
	}

	logger.Info("IPC listening", "socket", socketPath)

	// Close the listener on shutdown. This unblocks Accept().
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			// Exit cleanly on shutdown/close.
			if ctx.Err() != nil {
				logger.Debug("IPC listener closed (shutdown)")
				return nil
			}

			// Some platforms return net.ErrClosed; keep this defensive.
			if errors.Is(err, net.ErrClosed) || strings.Contains(err.Error(), "use of closed network connection") {
				logger.Debug("IPC listener closed")
				return nil
			}

			logger.Error("IPC accept error", "error", err)
			continue
		}

		go handleIPCConnection(conn, events, logger)
	}
}

// handleIPCConnection processes a single IPC client connection
func handleIPCConnection(conn net.Conn, events chan<- Event, logger *slog.Logger) {
	defer conn.Close()

	logger.Debug("IPC connection", "remote_addr", conn.RemoteAddr())

	scanner := bufio.NewScanner(conn)
	encoder := json.NewEncoder(conn)

	for scanner.Scan() {
		line := scanner.Text()
		logger.Debug("IPC received", "line", line)

		var env EventEnvelope
		if err := json.Unmarshal([]byte(line), &env); err != nil {
			sendIPCError(encoder, logger, fmt.Sprintf("parse request: %v", err))
			continue
		}

		// Snapshot is a query, not a command: it needs an answer from the
		// daemon loop, so it is handled inline with a reply channel.
		if env.Type == "snapshot" {
			handleSnapshotRequest(encoder, events, logger)
			continue
		}

		ev, err := UnmarshalEvent([]byte(line))
		if err != nil {
			sendIPCError(encoder, logger, fmt.Sprintf("parse event: %v", err))
			continue
		}

		select {
		case events <- ev:
			if encErr := encoder.Encode(IPCResponse{Status: "ok"}); encErr != nil {
				logger.Error("IPC failed to send success response", "error", encErr)
			}
		default:
			sendIPCError(encoder, logger, "event queue full")
		}
	}

	logger.Debug("IPC connection closed")
}

func handleSnapshotRequest(encoder *json.Encoder, events chan<- Event, logger *slog.Logger) {
	req := SnapshotRequested{Reply: make(chan []byte, 1)}

	select {
	case events <- req:
	default:
		sendIPCError(encoder, logger, "event queue full")
		return
	}

	select {
	case data := <-req.Reply:
		if err := encoder.Encode(IPCResponse{Status: "ok", Data: data}); err != nil {
			logger.Error("IPC failed to send snapshot", "error", err)
		}
	case <-time.After(snapshotTimeout):
		sendIPCError(encoder, logger, "snapshot timed out")
	}
}

func sendIPCError(encoder *json.Encoder, logger *slog.Logger, msg string) {
	if err := encoder.Encode(IPCResponse{Status: "error", Error: msg}); err != nil {
		logger.Error("IPC failed to send error response", "error", err)
	}
}

// ============================================================================
// IPC Client Utility Functions
// ============================================================================

// SendIPCEvent sends an event to the daemon via IPC and returns the response
func SendIPCEvent(socketPath string, ev Event) error {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", socketPath, err)
	}
	defer conn.Close()

	data, err := MarshalEvent(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if _, err := fmt.Fprintf(conn, "%s\n", strings.TrimSpace(string(data))); err != nil {
		return fmt.Errorf("send event: %w", err)
	}

	decoder := json.NewDecoder(conn)
	var resp IPCResponse
	if err := decoder.Decode(&resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.Status != "ok" {
		return fmt.Errorf("ipc error: %s", resp.Error)
	}

	return nil
}
