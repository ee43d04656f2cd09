package main

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// ============================================================================
// wheelctl - Command-line IPC Client
// ============================================================================
// This tool sends commands to the wheeld daemon via its Unix socket.
//
// Usage:
//   wheelctl spin
//   wheelctl simulate [n]
//   wheelctl test on|off
//   wheelctl step left|right
//   wheelctl screen
//   wheelctl stats
//   wheelctl quit
//
// Options:
//   -socket PATH    Unix domain socket path (default: /tmp/wheeld.sock)
// ============================================================================

// Event types (duplicated from the wheeld package for standalone binary)
type Event interface{}

type SpinRequested struct {
	Origin string `json:"origin,omitempty"`
}

type SimulateRequested struct {
	Count int `json:"count,omitempty"`
}

type TestModeSet struct {
	Enabled bool `json:"enabled"`
}

type TestStep struct {
	Delta int `json:"delta"`
}

type ScreenToggled struct{}

type QuitRequested struct{}

// EventEnvelope wraps events for JSON
type EventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// IPCResponse represents the daemon's response
type IPCResponse struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// snapshot mirrors the daemon's snapshot payload.
type snapshot struct {
	Phase      string  `json:"phase"`
	Angle      float64 `json:"angle"`
	Segment    int     `json:"segment"`
	TestMode   bool    `json:"test_mode"`
	TestIndex  int     `json:"test_index"`
	ResultText string  `json:"result_text,omitempty"`
	Stats      struct {
		TotalSpins int      `json:"total_spins"`
		TotalDice  int      `json:"total_dice"`
		DieCounts  [7]int   `json:"die_counts"`
		HouseWins  int      `json:"house_wins"`
		SpinAgains int      `json:"spin_agains"`
		Singles    int      `json:"singles"`
		Doubles    int      `json:"doubles"`
		Triples    int      `json:"triples"`
		History    []string `json:"history"`
	} `json:"stats"`
}

func main() {
	socketPath := "/tmp/wheeld.sock"

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Check for -socket flag
	if args[0] == "-socket" || args[0] == "--socket" {
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: -socket requires an argument\n")
			os.Exit(1)
		}
		socketPath = args[1]
		args = args[2:]
	}

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	var event Event

	switch args[0] {
	case "spin":
		event = SpinRequested{Origin: "wheelctl"}

	case "simulate", "sim":
		count := 0
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				fmt.Fprintf(os.Stderr, "error: invalid spin count: %s\n", args[1])
				os.Exit(1)
			}
			count = n
		}
		event = SimulateRequested{Count: count}

	case "test":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: test requires on|off\n")
			os.Exit(1)
		}
		switch args[1] {
		case "on":
			event = TestModeSet{Enabled: true}
		case "off":
			event = TestModeSet{Enabled: false}
		default:
			fmt.Fprintf(os.Stderr, "error: test requires on|off, got %q\n", args[1])
			os.Exit(1)
		}

	case "step":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: step requires left|right\n")
			os.Exit(1)
		}
		switch args[1] {
		case "left":
			event = TestStep{Delta: -1}
		case "right":
			event = TestStep{Delta: 1}
		default:
			fmt.Fprintf(os.Stderr, "error: step requires left|right, got %q\n", args[1])
			os.Exit(1)
		}

	case "screen", "toggle-screen":
		event = ScreenToggled{}

	case "stats", "snapshot", "status":
		if err := printSnapshot(socketPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return

	case "quit", "stop":
		event = QuitRequested{}

	case "help", "-h", "--help":
		printUsage()
		os.Exit(0)

	default:
		fmt.Fprintf(os.Stderr, "error: unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}

	if err := sendEvent(socketPath, event); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("ok")
}

func roundTrip(socketPath string, line []byte) (IPCResponse, error) {
	var resp IPCResponse

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return resp, fmt.Errorf("connect to %s: %w", socketPath, err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
		return resp, fmt.Errorf("send request: %w", err)
	}

	decoder := json.NewDecoder(conn)
	if err := decoder.Decode(&resp); err != nil {
		return resp, fmt.Errorf("decode response: %w", err)
	}

	if resp.Status == "error" {
		return resp, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return resp, nil
}

func sendEvent(socketPath string, event Event) error {
	data, err := marshalEvent(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = roundTrip(socketPath, data)
	return err
}

func printSnapshot(socketPath string) error {
	resp, err := roundTrip(socketPath, []byte(`{"type":"snapshot"}`))
	if err != nil {
		return err
	}

	var snap snapshot
	if err := json.Unmarshal(resp.Data, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	fmt.Printf("phase:      %s\n", snap.Phase)
	fmt.Printf("angle:      %.1f\n", snap.Angle)
	fmt.Printf("segment:    %d\n", snap.Segment)
	if snap.TestMode {
		fmt.Printf("test mode:  on (index %d)\n", snap.TestIndex)
	}
	if snap.ResultText != "" {
		fmt.Printf("result:     %s\n", snap.ResultText)
	}
	fmt.Println()
	fmt.Printf("total spins: %d\n", snap.Stats.TotalSpins)
	fmt.Printf("house wins:  %d\n", snap.Stats.HouseWins)
	fmt.Printf("spin agains: %d\n", snap.Stats.SpinAgains)
	fmt.Printf("triples:     %d\n", snap.Stats.Triples)
	fmt.Printf("doubles:     %d\n", snap.Stats.Doubles)
	fmt.Printf("singles:     %d\n", snap.Stats.Singles)
	fmt.Println()
	fmt.Print("die counts: ")
	for face := 1; face <= 6; face++ {
		fmt.Printf(" %d:%d", face, snap.Stats.DieCounts[face])
	}
	fmt.Println()
	if len(snap.Stats.History) > 0 {
		n := len(snap.Stats.History)
		if n > 5 {
			n = 5
		}
		fmt.Printf("last %d:     %s\n", n, strings.Join(snap.Stats.History[:n], ", "))
	}
	return nil
}

func marshalEvent(event Event) ([]byte, error) {
	var env EventEnvelope

	switch e := event.(type) {
	case SpinRequested:
		env.Type = "spin"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal SpinRequested: %w", err)
		}
		env.Data = data

	case SimulateRequested:
		env.Type = "simulate"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal SimulateRequested: %w", err)
		}
		env.Data = data

	case TestModeSet:
		env.Type = "test_mode"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal TestModeSet: %w", err)
		}
		env.Data = data

	case TestStep:
		env.Type = "test_step"
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal TestStep: %w", err)
		}
		env.Data = data

	case ScreenToggled:
		env.Type = "toggle_screen"

	case QuitRequested:
		env.Type = "quit"

	default:
		return nil, fmt.Errorf("unknown event type: %T", event)
	}

	return json.Marshal(env)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `wheelctl - Control the wheeld daemon via IPC

Usage:
  wheelctl [options] <command> [args]

Options:
  -socket PATH    Unix domain socket path (default: /tmp/wheeld.sock)

Commands:
  spin                  Request a spin
  simulate, sim [n]     Run n silent spins to seed statistics (default 45)
  test on|off           Enter or leave wheel calibration mode
  step left|right       Step the parked wheel in test mode
  screen                Toggle between game and statistics screens
  stats, status         Print the daemon's current state and statistics
  quit, stop            Shut the daemon down
  help, -h, --help      Show this help message

Examples:
  wheelctl spin
  wheelctl simulate 100
  wheelctl test on
  wheelctl -socket /var/run/wheeld.sock stats
`)
}
