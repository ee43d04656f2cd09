package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/ch0de/video-Chuck-a-Luck/internal/mqttbus"
	"github.com/ch0de/video-Chuck-a-Luck/internal/wheel"
)

// ============================================================================
// Central Daemon Loop
// ============================================================================
//
// Design rules enforced here:
//   - The spin machine performs no I/O; it computes angles and emits events.
//   - The daemon loop is the only place that executes side effects
//     (MQTT publishes, hub broadcasts, display writes).
//   - Daemon state is never shared across goroutines; IPC queries go
//     through SnapshotRequested with a reply channel.
//
// ============================================================================

// errQuit signals an operator-requested shutdown, as opposed to a fault.
var errQuit = errors.New("quit requested")

// statePublisher is the outbound side of the button bridge. Satisfied by
// *mqttbus.Client; tests substitute a recorder.
type statePublisher interface {
	Publish(topic, payload string)
}

// broadcaster fans state frames out to signage clients. Satisfied by
// *statehub.Hub.
type broadcaster interface {
	Broadcast(msgType string, data any)
}

type daemon struct {
	logger *slog.Logger

	machine *wheel.Machine
	stats   *wheel.Stats
	rng     *rand.Rand

	bus     statePublisher // nil when the bridge is disabled
	hub     broadcaster    // nil when the hub is disabled
	display Display

	screen     screenMode
	resultText string
	haveResult bool

	// Display refresh is decoupled from the tick rate; a terminal does
	// not need 120 frames a second.
	lastRender      time.Time
	displayInterval time.Duration
}

// snapshotData is the JSON payload answered to SnapshotRequested.
type snapshotData struct {
	Phase      string         `json:"phase"`
	Angle      float64        `json:"angle"`
	Segment    int            `json:"segment"`
	TestMode   bool           `json:"test_mode"`
	TestIndex  int            `json:"test_index"`
	ResultText string         `json:"result_text,omitempty"`
	Stats      wheel.Snapshot `json:"stats"`
}

// run is the main daemon loop: it advances the animation on a fixed
// cadence, translates keyboard input, and reacts to events from IPC and
// the button bridge.
func (d *daemon) run(ctx context.Context, events <-chan Event, keys <-chan inputEvent, keyErr <-chan error, busMsgs <-chan mqttbus.Message, tickHz int) error {
	interval := time.Second / time.Duration(tickHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Allow up to ~2 ticks worth of time to be integrated in one step,
	// so a stalled scheduler cannot teleport the wheel.
	maxDt := 2.0 / float64(tickHz)
	lastTick := time.Now()

	defer d.display.Close()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("daemon stopping (context canceled)")
			return ctx.Err()

		case now := <-ticker.C:
			dt := now.Sub(lastTick).Seconds()
			lastTick = now
			if dt > maxDt {
				dt = maxDt
			}
			d.handleMachineEvents(d.machine.Advance(dt))
			d.render(now)

		case ev, ok := <-events:
			if !ok {
				d.logger.Info("daemon stopping (events channel closed)")
				return nil
			}
			if err := d.handleEvent(ev); err != nil {
				return err
			}

		case key := <-keys:
			if err := d.handleKey(key); err != nil {
				return err
			}

		case err := <-keyErr:
			// Losing the operator keyboard is fatal: the table cannot
			// run half-controllable.
			d.logger.Error("input reader stopped", "error", err)
			return err

		case msg := <-busMsgs:
			d.handleBusMessage(msg)
		}
	}
}

func (d *daemon) handleEvent(ev Event) error {
	switch ev := ev.(type) {
	case SpinRequested:
		d.startSpin(ev.Origin)

	case SimulateRequested:
		count := ev.Count
		if count <= 0 {
			count = defaultSimulateSpins
		}
		d.simulate(count)

	case TestModeSet:
		d.setTestMode(ev.Enabled)

	case TestStep:
		if d.machine.TestMode() {
			d.machine.StepTest(ev.Delta)
			d.resultText = d.machine.TestResult().Label
			d.haveResult = true
			d.broadcastTestPosition()
		}

	case ScreenToggled:
		if d.screen == screenGame {
			d.screen = screenStats
		} else {
			d.screen = screenGame
		}

	case SnapshotRequested:
		d.answerSnapshot(ev)

	case QuitRequested:
		d.logger.Info("daemon stopping (quit requested)")
		return errQuit

	default:
		d.logger.Warn("unhandled event", "type", eventTypeName(ev))
	}
	return nil
}

// handleKey translates operator keyboard events. Keys mirror the table
// conventions: SPACE spins, S flips to statistics, P seeds stats, T
// toggles test mode, arrows step the parked wheel, Q/ESC quit.
func (d *daemon) handleKey(ev inputEvent) error {
	if ev.Type != EV_KEY || ev.Value != evValuePress {
		return nil
	}
	switch ev.Code {
	case KEY_SPACE:
		d.startSpin("key")
	case KEY_S:
		return d.handleEvent(ScreenToggled{})
	case KEY_P:
		if d.machine.Phase() == wheel.PhaseIdle {
			d.simulate(defaultSimulateSpins)
		}
	case KEY_T:
		d.setTestMode(!d.machine.TestMode())
	case KEY_LEFT:
		return d.handleEvent(TestStep{Delta: -1})
	case KEY_RIGHT:
		return d.handleEvent(TestStep{Delta: 1})
	case KEY_Q, KEY_ESC:
		return d.handleEvent(QuitRequested{})
	}
	return nil
}

func (d *daemon) handleBusMessage(msg mqttbus.Message) {
	if msg.Topic == mqttbus.TopicSpin && msg.Payload == mqttbus.PayloadPressed {
		d.logger.Info("button press received")
		d.startSpin("button")
		return
	}
	d.logger.Debug("ignoring bus message", "topic", msg.Topic, "payload", msg.Payload)
}

func (d *daemon) startSpin(origin string) {
	evs := d.machine.Start()
	if len(evs) == 0 {
		d.logger.Debug("spin request ignored",
			"origin", origin,
			"phase", d.machine.Phase().String(),
			"test_mode", d.machine.TestMode())
		return
	}
	d.resultText = ""
	d.haveResult = false
	d.handleMachineEvents(evs)
	d.logger.Info("spin started", "origin", origin)
}

func (d *daemon) handleMachineEvents(evs []wheel.Event) {
	for _, ev := range evs {
		switch ev := ev.(type) {
		case wheel.SpinStarted:
			d.publish(mqttbus.StateSpinning)
			d.broadcast("spin_started", map[string]any{
				"duration_sec": ev.Duration,
				"revolutions":  ev.Spins,
			})

		case wheel.PegCrossed:
			d.display.Bell()

		case wheel.TargetMissed:
			// The solver guarantees this cannot happen; if it does the
			// result below still reflects the actual landing.
			d.logger.Error("wheel settled off target", "want", ev.Want, "got", ev.Got)

		case wheel.SpinSettled:
			d.settle(ev.Result)
		}
	}
}

func (d *daemon) settle(r wheel.Result) {
	d.stats.Record(r)
	d.resultText = r.Label
	d.haveResult = true

	d.publish(stateForColor(r.Color))
	d.broadcast("spin_settled", map[string]any{
		"result": r,
		"stats":  d.stats.Snapshot(),
	})
	d.logger.Info("spin settled",
		"segment", r.Index,
		"label", r.Label,
		"category", r.Category.String())
}

func (d *daemon) simulate(count int) {
	wheel.Simulate(d.stats, d.machine.Segments(), count, d.rng)
	d.broadcast("stats_updated", d.stats.Snapshot())
	d.logger.Info("silent simulation complete", "spins", count)
}

func (d *daemon) setTestMode(on bool) {
	if !d.machine.SetTestMode(on) {
		d.logger.Warn("test mode refused while spinning")
		return
	}
	if on {
		d.resultText = d.machine.TestResult().Label
		d.haveResult = true
	} else {
		d.resultText = ""
		d.haveResult = false
	}
	d.broadcastTestPosition()
	d.logger.Info("test mode", "enabled", on, "index", d.machine.TestIndex())
}

func (d *daemon) broadcastTestPosition() {
	d.broadcast("test_mode", map[string]any{
		"enabled": d.machine.TestMode(),
		"index":   d.machine.TestIndex(),
	})
}

func (d *daemon) answerSnapshot(req SnapshotRequested) {
	snap := snapshotData{
		Phase:      d.machine.Phase().String(),
		Angle:      d.machine.Angle(),
		Segment:    d.machine.Layout().SegmentAt(d.machine.Angle()),
		TestMode:   d.machine.TestMode(),
		TestIndex:  d.machine.TestIndex(),
		ResultText: d.resultText,
		Stats:      d.stats.Snapshot(),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		d.logger.Error("marshal snapshot", "error", err)
		data = []byte("{}")
	}
	// Reply channel is buffered by the requester; never block the loop.
	select {
	case req.Reply <- data:
	default:
		d.logger.Warn("snapshot reply dropped (requester gone)")
	}
}

func (d *daemon) render(now time.Time) {
	if now.Sub(d.lastRender) < d.displayInterval {
		return
	}
	d.lastRender = now
	d.display.Frame(View{
		Screen:     d.screen,
		Phase:      d.machine.Phase(),
		Angle:      d.machine.Angle(),
		Segment:    d.machine.Layout().SegmentAt(d.machine.Angle()),
		ResultText: d.resultText,
		HaveResult: d.haveResult,
		TestMode:   d.machine.TestMode(),
		TestIndex:  d.machine.TestIndex(),
		LastFive:   d.stats.LastN(5),
		Window:     d.stats.Window(5),
		Stats:      d.stats.Snapshot(),
	})
}

func (d *daemon) publish(state string) {
	if d.bus == nil {
		return
	}
	d.bus.Publish(mqttbus.TopicState, state)
}

func (d *daemon) broadcast(msgType string, data any) {
	if d.hub == nil {
		return
	}
	d.hub.Broadcast(msgType, data)
}

// stateForColor maps a settled flash color onto the bridge payload.
func stateForColor(c wheel.FlashColor) string {
	switch c {
	case wheel.FlashRed:
		return mqttbus.StateFlashRed
	case wheel.FlashGreen:
		return mqttbus.StateFlashGreen
	default:
		return mqttbus.StateFlashWhite
	}
}

func eventTypeName(ev Event) string {
	data, err := MarshalEvent(ev)
	if err != nil {
		return "unknown"
	}
	var env EventEnvelope
	if json.Unmarshal(data, &env) != nil {
		return "unknown"
	}
	return env.Type
}
