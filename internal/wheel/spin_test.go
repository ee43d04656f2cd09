package wheel

import (
	"math"
	"math/rand/v2"
	"testing"
)

func newTestMachine(t *testing.T, seed uint64) *Machine {
	t.Helper()
	cfg := DefaultConfig()
	// Short animation so a simulated clock settles in few frames.
	cfg.MinSpinTime = 2.0
	cfg.MaxSpinTime = 3.0
	cfg.WindUpTime = 0.5
	layout := Layout{Segments: 54, PointerAngle: 270}
	m, err := NewMachine(layout, DefaultSegments(), cfg, rand.New(rand.NewPCG(seed, 0)))
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	return m
}

// drive advances the machine at a fixed frame rate until it returns to
// idle, collecting every event.
func drive(t *testing.T, m *Machine, dt float64, maxFrames int) []Event {
	t.Helper()
	var evs []Event
	for i := 0; i < maxFrames; i++ {
		evs = append(evs, m.Advance(dt)...)
		if m.Phase() == PhaseIdle {
			return evs
		}
	}
	t.Fatalf("machine still %v after %d frames", m.Phase(), maxFrames)
	return nil
}

func TestStartEmitsSpinStartedAndRunsToSettle(t *testing.T) {
	m := newTestMachine(t, 1)

	evs := m.Start()
	if len(evs) != 1 {
		t.Fatalf("Start returned %d events, want 1", len(evs))
	}
	started, ok := evs[0].(SpinStarted)
	if !ok {
		t.Fatalf("Start returned %T, want SpinStarted", evs[0])
	}
	if started.Duration < 2.0 || started.Duration > 3.0 {
		t.Fatalf("duration %g outside configured range", started.Duration)
	}
	if started.Spins < 4 || started.Spins > 8 {
		t.Fatalf("spins %d outside configured range", started.Spins)
	}
	if m.Phase() != PhaseWindingUp {
		t.Fatalf("phase after Start = %v, want winding_up", m.Phase())
	}

	all := drive(t, m, 1.0/120, 10000)
	var settled *SpinSettled
	for _, ev := range all {
		switch ev := ev.(type) {
		case TargetMissed:
			t.Fatalf("wheel missed its target: want %d got %d", ev.Want, ev.Got)
		case SpinSettled:
			settled = &ev
		}
	}
	if settled == nil {
		t.Fatalf("no SpinSettled event")
	}
	if got := m.Layout().SegmentAt(m.Angle()); got != settled.Result.Index {
		t.Fatalf("rest angle is over segment %d but result says %d", got, settled.Result.Index)
	}
}

func TestStartIgnoredWhileSpinning(t *testing.T) {
	m := newTestMachine(t, 2)
	if evs := m.Start(); len(evs) != 1 {
		t.Fatalf("first Start returned %d events", len(evs))
	}
	angleBefore := m.Angle()
	phaseBefore := m.Phase()
	if evs := m.Start(); evs != nil {
		t.Fatalf("second Start returned events %v, want none", evs)
	}
	if m.Phase() != phaseBefore || m.Angle() != angleBefore {
		t.Fatalf("second Start perturbed the running spin")
	}
}

func TestStartIgnoredInTestMode(t *testing.T) {
	m := newTestMachine(t, 3)
	if !m.SetTestMode(true) {
		t.Fatalf("SetTestMode refused while idle")
	}
	if evs := m.Start(); evs != nil {
		t.Fatalf("Start in test mode returned events %v", evs)
	}
}

func TestTestModeRefusedWhileSpinning(t *testing.T) {
	m := newTestMachine(t, 4)
	m.Start()
	m.Advance(1.0 / 120)
	if m.SetTestMode(true) {
		t.Fatalf("SetTestMode accepted mid-spin")
	}
}

func TestAngleContinuousDuringSpin(t *testing.T) {
	m := newTestMachine(t, 5)
	m.Start()

	const dt = 1.0 / 120
	prev := m.Angle()
	for m.Phase() != PhaseIdle {
		m.Advance(dt)
		step := math.Abs(m.Angle() - prev)
		// At most a few revolutions per second across one frame.
		if step > 90 {
			t.Fatalf("angle jumped %g degrees in one frame", step)
		}
		prev = m.Angle()
	}
}

func TestPegCrossingsAreDistinctPerFrame(t *testing.T) {
	m := newTestMachine(t, 6)
	m.Start()

	lastPeg := -1
	total := 0
	for m.Phase() != PhaseIdle {
		for _, ev := range m.Advance(1.0 / 120) {
			if peg, ok := ev.(PegCrossed); ok {
				if peg.Peg == lastPeg {
					t.Fatalf("peg %d reported twice in a row", peg.Peg)
				}
				lastPeg = peg.Peg
				total++
			}
		}
	}
	// A 4+ revolution spin passes hundreds of pegs.
	if total < 54 {
		t.Fatalf("only %d peg crossings for a full spin", total)
	}
}

func TestConsecutiveSpinsAccumulateAngle(t *testing.T) {
	m := newTestMachine(t, 7)
	for i := 0; i < 3; i++ {
		before := m.Angle()
		m.Start()
		drive(t, m, 1.0/120, 10000)
		if m.Angle() <= before {
			t.Fatalf("spin %d did not advance the cumulative angle (%g -> %g)", i, before, m.Angle())
		}
	}
}

func TestTestModeParksOnSegmentCenter(t *testing.T) {
	m := newTestMachine(t, 8)
	m.SetTestMode(true)
	for i := 0; i < 54; i++ {
		if got := m.Layout().SegmentAt(m.Angle()); got != m.TestIndex() {
			t.Fatalf("parked on segment %d, test index %d", got, m.TestIndex())
		}
		if r := m.TestResult(); r.Index != m.TestIndex() {
			t.Fatalf("TestResult index %d, want %d", r.Index, m.TestIndex())
		}
		m.StepTest(1)
	}
	if m.TestIndex() != 0 {
		t.Fatalf("54 steps should wrap to 0, got %d", m.TestIndex())
	}
	m.StepTest(-1)
	if m.TestIndex() != 53 {
		t.Fatalf("step left from 0 should wrap to 53, got %d", m.TestIndex())
	}
}

func TestIdleHoldsRestAngle(t *testing.T) {
	m := newTestMachine(t, 9)
	m.Start()
	drive(t, m, 1.0/120, 10000)
	rest := m.Angle()
	for i := 0; i < 100; i++ {
		if evs := m.Advance(1.0 / 120); evs != nil {
			t.Fatalf("idle Advance produced events %v", evs)
		}
	}
	if m.Angle() != rest {
		t.Fatalf("idle angle drifted from %g to %g", rest, m.Angle())
	}
}

func TestNewMachineRejectsBadArguments(t *testing.T) {
	layout := Layout{Segments: 54, PointerAngle: 270}
	rng := rand.New(rand.NewPCG(1, 0))
	if _, err := NewMachine(layout, DefaultSegments()[:10], DefaultConfig(), rng); err == nil {
		t.Fatalf("mismatched face accepted")
	}
	bad := DefaultConfig()
	bad.MaxSpinTime = 1.0
	if _, err := NewMachine(layout, DefaultSegments(), bad, rng); err == nil {
		t.Fatalf("inverted spin time range accepted")
	}
	if _, err := NewMachine(layout, DefaultSegments(), DefaultConfig(), nil); err == nil {
		t.Fatalf("nil rng accepted")
	}
}
