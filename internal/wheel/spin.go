package wheel

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Phase is the animation state of the spin machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWindingUp
	PhaseSpinning
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWindingUp:
		return "winding_up"
	case PhaseSpinning:
		return "spinning"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Config holds the tunable animation parameters of a spin.
type Config struct {
	MinSpins        int     // full revolutions, inclusive
	MaxSpins        int     // inclusive
	MinSpinTime     float64 // seconds
	MaxSpinTime     float64 // seconds
	WindUpAngle     float64 // degrees of backward wind-up
	WindUpTime      float64 // seconds
	WobbleAmplitude float64 // degrees
	WobbleStart     float64 // progress fraction in [0,1)
}

// DefaultConfig matches the production wheel tuning.
func DefaultConfig() Config {
	return Config{
		MinSpins:        4,
		MaxSpins:        8,
		MinSpinTime:     28.0,
		MaxSpinTime:     38.0,
		WindUpAngle:     100.0,
		WindUpTime:      3.0,
		WobbleAmplitude: 1.8,
		WobbleStart:     0.75,
	}
}

func (c Config) validate() error {
	if c.MinSpins < 1 || c.MaxSpins < c.MinSpins {
		return fmt.Errorf("spin count range [%d,%d] invalid", c.MinSpins, c.MaxSpins)
	}
	if c.MinSpinTime <= 0 || c.MaxSpinTime < c.MinSpinTime {
		return fmt.Errorf("spin time range [%.1f,%.1f] invalid", c.MinSpinTime, c.MaxSpinTime)
	}
	if c.WindUpTime <= 0 {
		return fmt.Errorf("wind-up time %.1f invalid", c.WindUpTime)
	}
	if c.WobbleStart < 0 || c.WobbleStart >= 1 {
		return fmt.Errorf("wobble start %.2f outside [0,1)", c.WobbleStart)
	}
	return nil
}

// Event is a side effect emitted by the machine. The machine itself
// never performs I/O; the caller turns events into publishes, sounds and
// log lines.
type Event interface{ spinEvent() }

// SpinStarted is emitted once when a spin request is accepted.
type SpinStarted struct {
	Duration float64
	Spins    int
}

// PegCrossed is emitted each time the pointer passes a peg while the
// wheel is moving. Emitted only for the frame in which the crossing is
// first observed, never retroactively.
type PegCrossed struct {
	Peg int
}

// SpinSettled is emitted once when the wheel comes to rest.
type SpinSettled struct {
	Result Result
}

// TargetMissed reports that the wheel settled on a different segment
// than the one the spin was solved for. The solver is exact, so this can
// only mean a defect; the result still reflects the segment actually
// under the pointer.
type TargetMissed struct {
	Want int
	Got  int
}

func (SpinStarted) spinEvent()  {}
func (PegCrossed) spinEvent()   {}
func (SpinSettled) spinEvent()  {}
func (TargetMissed) spinEvent() {}

// Machine drives the wheel angle through idle, wind-up and spin phases.
// It is advanced explicitly with Advance(dt) once per frame and is safe
// to drive at any frame rate. Not safe for concurrent use; the owning
// loop is the only caller.
type Machine struct {
	layout Layout
	segs   []Segment
	cfg    Config
	rng    *rand.Rand

	phase    Phase
	progress float64
	rest     float64 // cumulative angle the wheel last settled at
	current  float64 // cumulative angle right now
	duration float64 // seconds, for the active spin
	final    float64 // solved cumulative final angle
	target   int

	testMode  bool
	testIndex int

	lastPeg int
}

// NewMachine builds a spin machine over the given wheel face. rng is the
// only source of randomness; tests inject a seeded generator.
func NewMachine(layout Layout, segs []Segment, cfg Config, rng *rand.Rand) (*Machine, error) {
	if layout.Segments != len(segs) {
		return nil, fmt.Errorf("layout has %d segments but face has %d", layout.Segments, len(segs))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("spin config: %w", err)
	}
	if rng == nil {
		return nil, fmt.Errorf("spin machine needs a random source")
	}
	return &Machine{
		layout:  layout,
		segs:    segs,
		cfg:     cfg,
		rng:     rng,
		lastPeg: layout.PegAt(0),
	}, nil
}

func (m *Machine) Phase() Phase        { return m.phase }
func (m *Machine) Angle() float64      { return m.current }
func (m *Machine) TestMode() bool      { return m.testMode }
func (m *Machine) TestIndex() int      { return m.testIndex }
func (m *Machine) Layout() Layout      { return m.layout }
func (m *Machine) Segments() []Segment { return m.segs }

// Start begins a new spin. A request while a spin is already running, or
// while test mode is active, is expected traffic and is silently
// ignored: the caller can tell from the empty event list.
func (m *Machine) Start() []Event {
	if m.phase != PhaseIdle || m.testMode {
		return nil
	}
	m.phase = PhaseWindingUp
	m.progress = 0
	m.duration = m.cfg.MinSpinTime + m.rng.Float64()*(m.cfg.MaxSpinTime-m.cfg.MinSpinTime)
	spins := m.cfg.MinSpins + m.rng.IntN(m.cfg.MaxSpins-m.cfg.MinSpins+1)
	m.target = m.rng.IntN(m.layout.Segments)
	m.final = m.layout.FinalAngle(m.target, m.rest, m.cfg.WindUpAngle, spins)
	m.lastPeg = m.layout.PegAt(m.current)
	return []Event{SpinStarted{Duration: m.duration, Spins: spins}}
}

// Advance moves the animation forward by dt seconds and returns any
// events produced in this frame. While idle it holds the rest angle and
// returns nothing.
func (m *Machine) Advance(dt float64) []Event {
	switch m.phase {
	case PhaseIdle:
		m.current = m.rest
		return nil

	case PhaseWindingUp:
		m.progress += dt / m.cfg.WindUpTime
		u := math.Min(1.0, m.progress)
		m.current = m.rest - m.cfg.WindUpAngle*EaseInOutQuad(u)
		if m.progress >= 1.0 {
			m.phase = PhaseSpinning
			m.progress = 0
		}
		return m.pegEvents(nil)

	case PhaseSpinning:
		m.progress += dt / m.duration
		u := math.Min(1.0, m.progress)
		start := m.rest - m.cfg.WindUpAngle
		base := start + (m.final-start)*EaseOutCubic(u)
		m.current = base + SettleWobble(u, m.cfg.WobbleAmplitude, m.cfg.WobbleStart)
		if u < 1.0 {
			return m.pegEvents(nil)
		}
		return m.settle()

	default:
		return nil
	}
}

func (m *Machine) settle() []Event {
	m.phase = PhaseIdle
	m.rest = m.final
	m.current = m.final

	var evs []Event
	landed := m.layout.SegmentAt(m.final)
	if landed != m.target {
		evs = append(evs, TargetMissed{Want: m.target, Got: landed})
	}
	return append(evs, SpinSettled{Result: Classify(landed, m.segs[landed])})
}

// pegEvents appends a PegCrossed event when the pointer has moved onto a
// different peg since the previous frame.
func (m *Machine) pegEvents(evs []Event) []Event {
	if peg := m.layout.PegAt(m.current); peg != m.lastPeg {
		m.lastPeg = peg
		evs = append(evs, PegCrossed{Peg: peg})
	}
	return evs
}

// SetTestMode enters or leaves calibration mode. Entering is refused
// while a spin is running; the caller decides whether that is worth a
// log line. Entering parks the wheel on the current test index, the one
// intentional discontinuity in the wheel angle.
func (m *Machine) SetTestMode(on bool) bool {
	if on && m.phase != PhaseIdle {
		return false
	}
	m.testMode = on
	if on {
		m.park()
	}
	return true
}

// StepTest moves the parked wheel delta segments, wrapping at the rim.
// No-op outside test mode.
func (m *Machine) StepTest(delta int) {
	if !m.testMode {
		return
	}
	n := m.layout.Segments
	m.testIndex = ((m.testIndex+delta)%n + n) % n
	m.park()
}

// TestResult classifies the segment currently parked under the pointer.
func (m *Machine) TestResult() Result {
	return Classify(m.testIndex, m.segs[m.testIndex])
}

func (m *Machine) park() {
	a := m.layout.SegmentCenter(m.testIndex) - m.layout.PointerAngle
	m.rest = a
	m.current = a
	m.lastPeg = m.layout.PegAt(a)
}
