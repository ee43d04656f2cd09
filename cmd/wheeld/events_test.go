package main

import (
	"testing"
)

func TestEventRoundTrip(t *testing.T) {
	cases := []Event{
		SpinRequested{Origin: "ipc"},
		SimulateRequested{Count: 45},
		TestModeSet{Enabled: true},
		TestModeSet{Enabled: false},
		TestStep{Delta: -1},
		ScreenToggled{},
		QuitRequested{},
	}

	for _, ev := range cases {
		data, err := MarshalEvent(ev)
		if err != nil {
			t.Fatalf("marshal %T: %v", ev, err)
		}
		back, err := UnmarshalEvent(data)
		if err != nil {
			t.Fatalf("unmarshal %T: %v", ev, err)
		}
		if back != ev {
			t.Errorf("round trip %T: got %+v, want %+v", ev, back, ev)
		}
	}
}

func TestUnmarshalEventRejectsUnknown(t *testing.T) {
	if _, err := UnmarshalEvent([]byte(`{"type":"reboot"}`)); err == nil {
		t.Error("unknown event type accepted")
	}
	if _, err := UnmarshalEvent([]byte(`not json`)); err == nil {
		t.Error("malformed JSON accepted")
	}
	// Snapshot carries a reply channel and is never expressible over the
	// wire as a plain event.
	if _, err := UnmarshalEvent([]byte(`{"type":"snapshot"}`)); err == nil {
		t.Error("snapshot accepted as plain event")
	}
}

func TestUnmarshalEventDefaults(t *testing.T) {
	ev, err := UnmarshalEvent([]byte(`{"type":"spin"}`))
	if err != nil {
		t.Fatalf("spin without data: %v", err)
	}
	if _, ok := ev.(SpinRequested); !ok {
		t.Fatalf("got %T, want SpinRequested", ev)
	}

	ev, err = UnmarshalEvent([]byte(`{"type":"simulate"}`))
	if err != nil {
		t.Fatalf("simulate without data: %v", err)
	}
	if sim := ev.(SimulateRequested); sim.Count != 0 {
		t.Errorf("count = %d, want 0 (daemon applies default)", sim.Count)
	}
}
