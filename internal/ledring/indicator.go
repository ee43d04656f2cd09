package ledring

import (
	"math"
	"strings"
	"time"

	"github.com/ch0de/video-Chuck-a-Luck/internal/mqttbus"
)

// Mode is the animation state of the indicator machine.
type Mode int

const (
	ModeIdle Mode = iota
	ModeSpinning
	ModeFlashing
	ModePostFlashDelay
	ModeFadeToIdle
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeSpinning:
		return "spinning"
	case ModeFlashing:
		return "flashing"
	case ModePostFlashDelay:
		return "post_flash_delay"
	case ModeFadeToIdle:
		return "fade_to_idle"
	default:
		return "unknown"
	}
}

// SpinStyle selects the animation shown while the wheel spins.
type SpinStyle string

const (
	SpinStyleChasingRainbow SpinStyle = "chasing_rainbow"
	SpinStyleCyclingColor   SpinStyle = "cycling_color"
)

// Config tunes the ring animations. The defaults mirror the deployed
// button hardware.
type Config struct {
	Leds int

	IdleColor       RGB
	Breathing       bool
	BreatheInterval time.Duration
	BreatheMin      float64 // brightness floor, 0..255
	BreatheMax      float64 // brightness ceiling, 0..255

	SpinStyle     SpinStyle
	ChaseInterval time.Duration
	CycleInterval time.Duration

	FlashCountWhite int
	FlashCountRed   int
	FlashCountGreen int
	FlashFade       time.Duration
	PostFlashDelay  time.Duration
	FadeToIdle      time.Duration
}

func DefaultConfig() Config {
	return Config{
		Leds:            24,
		IdleColor:       RGB{0, 50, 0},
		Breathing:       true,
		BreatheInterval: 20 * time.Millisecond,
		BreatheMin:      30,
		BreatheMax:      200,
		SpinStyle:       SpinStyleCyclingColor,
		ChaseInterval:   time.Millisecond,
		CycleInterval:   5 * time.Millisecond,
		FlashCountWhite: 13,
		FlashCountRed:   13,
		FlashCountGreen: 13,
		FlashFade:       300 * time.Millisecond,
		PostFlashDelay:  2 * time.Second,
		FadeToIdle:      2 * time.Second,
	}
}

// Machine reconstructs the wheel's announced state from received state
// strings and local time. It deliberately assumes nothing about the
// wheel beyond those strings: messages may be lost or duplicated, so a
// repeat of the current state is a no-op, a new state preempts whatever
// animation is running, and anything unrecognized falls back to idle.
//
// Advance is called from a single loop; the machine is not safe for
// concurrent use.
type Machine struct {
	cfg Config

	mode  Mode
	state string // last applied state string, tracks internal phases too

	step     int // shared breathing / rainbow position
	lastAnim time.Time

	flashColor  RGB
	flashTarget int
	flashDone   int
	fadingIn    bool
	phaseStart  time.Time

	frame []RGB
}

// NewMachine builds an idle indicator.
func NewMachine(cfg Config) *Machine {
	if cfg.Leds <= 0 {
		cfg.Leds = 24
	}
	m := &Machine{
		cfg:   cfg,
		mode:  ModeIdle,
		state: "idle",
		frame: make([]RGB, cfg.Leds),
	}
	m.fill(cfg.IdleColor)
	return m
}

func (m *Machine) Mode() Mode          { return m.mode }
func (m *Machine) FlashesDone() int    { return m.flashDone }

// Frame returns the current LED colors. The slice is owned by the
// machine; callers must copy it if they hold onto it across Advance.
func (m *Machine) Frame() []RGB { return m.frame }

// Apply feeds one inbound state string. Repeating the machine's current
// state is a no-op so duplicate deliveries never restart an animation.
func (m *Machine) Apply(msg string, now time.Time) {
	if msg == m.state {
		return
	}
	m.state = msg
	m.step = 0
	m.lastAnim = time.Time{}

	switch {
	case msg == mqttbus.StateSpinning:
		m.mode = ModeSpinning

	case strings.HasPrefix(msg, "flash_") || msg == mqttbus.StateFlashing:
		m.mode = ModeFlashing
		m.flashDone = 0
		m.fadingIn = true
		m.phaseStart = now
		switch msg {
		case mqttbus.StateFlashRed:
			m.flashColor = Red
			m.flashTarget = m.cfg.FlashCountRed
		case mqttbus.StateFlashGreen:
			m.flashColor = Green
			m.flashTarget = m.cfg.FlashCountGreen
		default:
			// flash_white, the legacy "flashing", and any future
			// flash_* variant all flash white.
			m.flashColor = White
			m.flashTarget = m.cfg.FlashCountWhite
		}

	default:
		m.mode = ModeIdle
	}
}

// Advance recomputes the frame for the given time. It reports whether
// the frame changed, so the caller can skip redundant strip writes.
func (m *Machine) Advance(now time.Time) bool {
	switch m.mode {
	case ModeIdle:
		return m.advanceIdle(now)
	case ModeSpinning:
		return m.advanceSpinning(now)
	case ModeFlashing:
		return m.advanceFlashing(now)
	case ModePostFlashDelay:
		if now.Sub(m.phaseStart) >= m.cfg.PostFlashDelay {
			m.setMode(ModeFadeToIdle, now)
		}
		return m.fill(Black)
	case ModeFadeToIdle:
		progress := m.phaseProgress(now, m.cfg.FadeToIdle)
		changed := m.fill(Blend(Black, m.cfg.IdleColor, progress))
		if progress >= 1 {
			m.setMode(ModeIdle, now)
		}
		return changed
	default:
		return false
	}
}

func (m *Machine) advanceIdle(now time.Time) bool {
	if !m.cfg.Breathing {
		return m.fill(m.cfg.IdleColor)
	}
	if !m.due(now, m.cfg.BreatheInterval) {
		return false
	}
	norm := (math.Sin(float64(m.step)*math.Pi/128) + 1) / 2
	brightness := m.cfg.BreatheMin + norm*(m.cfg.BreatheMax-m.cfg.BreatheMin)
	m.step = (m.step + 1) % 256
	return m.fill(m.cfg.IdleColor.WithValue(brightness / 255))
}

func (m *Machine) advanceSpinning(now time.Time) bool {
	switch m.cfg.SpinStyle {
	case SpinStyleCyclingColor:
		if !m.due(now, m.cfg.CycleInterval) {
			return false
		}
		changed := m.fill(RainbowWheel(uint8(m.step)))
		m.step = (m.step + 1) % 256
		return changed
	default:
		if !m.due(now, m.cfg.ChaseInterval) {
			return false
		}
		n := len(m.frame)
		for i := range m.frame {
			m.frame[i] = RainbowWheel(uint8(i*256/n + m.step))
		}
		m.step = (m.step + 1) % 256
		return true
	}
}

func (m *Machine) advanceFlashing(now time.Time) bool {
	progress := m.phaseProgress(now, m.cfg.FlashFade)
	brightness := progress
	if !m.fadingIn {
		brightness = 1 - progress
	}
	changed := m.fill(Blend(Black, m.flashColor, brightness))

	if progress >= 1 {
		m.phaseStart = now
		if m.fadingIn {
			m.fadingIn = false
			return changed
		}
		m.fadingIn = true
		m.flashDone++
		if m.flashDone >= m.flashTarget {
			m.fill(Black)
			m.setMode(ModePostFlashDelay, now)
			return true
		}
	}
	return changed
}

// setMode performs an internal transition. The state string follows so
// that a repeat of the original trigger message is no longer considered
// a duplicate once the animation has moved on.
func (m *Machine) setMode(mode Mode, now time.Time) {
	m.mode = mode
	m.state = mode.String()
	m.phaseStart = now
}

func (m *Machine) phaseProgress(now time.Time, span time.Duration) float64 {
	if span <= 0 {
		return 1
	}
	return math.Min(float64(now.Sub(m.phaseStart))/float64(span), 1)
}

func (m *Machine) due(now time.Time, interval time.Duration) bool {
	if !m.lastAnim.IsZero() && now.Sub(m.lastAnim) < interval {
		return false
	}
	m.lastAnim = now
	return true
}

func (m *Machine) fill(c RGB) bool {
	changed := false
	for i := range m.frame {
		if m.frame[i] != c {
			m.frame[i] = c
			changed = true
		}
	}
	return changed
}
