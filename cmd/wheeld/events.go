package main

import (
	"encoding/json"
	"fmt"
)

// ============================================================================
// Event Types
// ============================================================================
// Events represent intent from the daemon's input sources (keyboard, IPC,
// MQTT bridge). The daemon loop is the only consumer; it applies policy
// and performs all side effects.
// ============================================================================

// Event is a marker interface for daemon events.
type Event interface {
	eventMarker()
}

// SpinRequested asks for a new spin. The request is silently ignored if
// a spin is already running or test mode is active.
type SpinRequested struct {
	Origin string `json:"origin,omitempty"` // "key", "button", "ipc"
}

func (SpinRequested) eventMarker() {}

// SimulateRequested runs n instant spins to seed the statistics.
type SimulateRequested struct {
	Count int `json:"count,omitempty"`
}

func (SimulateRequested) eventMarker() {}

// TestModeSet enters or leaves calibration mode.
type TestModeSet struct {
	Enabled bool `json:"enabled"`
}

func (TestModeSet) eventMarker() {}

// TestStep moves the parked wheel while in test mode.
type TestStep struct {
	Delta int `json:"delta"` // +1 right, -1 left
}

func (TestStep) eventMarker() {}

// ScreenToggled switches between the game and statistics screens.
type ScreenToggled struct{}

func (ScreenToggled) eventMarker() {}

// SnapshotRequested asks the daemon for its current state. The reply is
// marshaled JSON, delivered on the Reply channel; IPC uses this to
// answer queries without sharing daemon state across goroutines.
type SnapshotRequested struct {
	Reply chan []byte `json:"-"`
}

func (SnapshotRequested) eventMarker() {}

// QuitRequested shuts the daemon down cleanly.
type QuitRequested struct{}

func (QuitRequested) eventMarker() {}

// ============================================================================
// JSON Encoding/Decoding Support
// ============================================================================

// EventEnvelope wraps an event with a type discriminator for JSON
// marshaling, since Go has no union types.
type EventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// UnmarshalEvent deserializes a JSON event envelope into a concrete
// Event. Only externally expressible events are accepted; snapshot
// requests are built by the IPC server itself because they carry a
// reply channel.
func UnmarshalEvent(data []byte) (Event, error) {
	var env EventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case "spin":
		var e SpinRequested
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &e); err != nil {
				return nil, fmt.Errorf("unmarshal SpinRequested: %w", err)
			}
		}
		return e, nil

	case "simulate":
		var e SimulateRequested
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &e); err != nil {
				return nil, fmt.Errorf("unmarshal SimulateRequested: %w", err)
			}
		}
		return e, nil

	case "test_mode":
		var e TestModeSet
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal TestModeSet: %w", err)
		}
		return e, nil

	case "test_step":
		var e TestStep
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal TestStep: %w", err)
		}
		return e, nil

	case "toggle_screen":
		return ScreenToggled{}, nil

	case "quit":
		return QuitRequested{}, nil

	default:
		return nil, fmt.Errorf("unknown event type: %q", env.Type)
	}
}

// MarshalEvent serializes an Event into a JSON envelope with type
// discriminator.
func MarshalEvent(e Event) ([]byte, error) {
	var env EventEnvelope

	switch e := e.(type) {
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
		return nil, fmt.Errorf("unsupported event type: %T", e)
	}

	return json.Marshal(env)
}
