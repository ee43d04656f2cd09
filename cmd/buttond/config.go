package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ch0de/video-Chuck-a-Luck/internal/ledring"
)

// ============================================================================
// Configuration
// ============================================================================
// buttond is the host-side stand-in for the remote button/LED unit: a
// physical button on a Linux input device and an LED ring indicator.
// Configuration follows the same YAML file + flag override layering as
// wheeld.
// ============================================================================

const (
	// BTN_0 from linux/input-event-codes.h, the first generic button code.
	defaultButtonCode = 256

	defaultDebounce = 200 * time.Millisecond
	defaultPollHz   = 100
)

type Config struct {
	Input   InputConfig   `yaml:"input"`
	Ring    RingConfig    `yaml:"ring"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Logging LoggingConfig `yaml:"logging"`
}

type InputConfig struct {
	// Device is the input event device carrying the button; empty
	// disables the button (the ring still follows wheel state).
	Device string `yaml:"device,omitempty"`
	// ButtonCode is the key code reported for the button.
	ButtonCode int `yaml:"button_code"`
	// DebounceMS suppresses repeat presses within this window.
	DebounceMS int `yaml:"debounce_ms"`
}

type RingConfig struct {
	Leds int `yaml:"leds"`
	// Mode selects the output device: "term" renders the ring as a row
	// of colored dots on the terminal, "none" runs headless.
	Mode string `yaml:"mode"`
	// SpinStyle is the animation while the wheel spins:
	// "chasing_rainbow" or "cycling_color".
	SpinStyle string `yaml:"spin_style"`
	Breathing bool   `yaml:"breathing"`
}

type MQTTConfig struct {
	BrokerURL string `yaml:"broker_url"`
	ClientID  string `yaml:"client_id"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() Config {
	return Config{
		Input: InputConfig{
			ButtonCode: defaultButtonCode,
			DebounceMS: int(defaultDebounce / time.Millisecond),
		},
		Ring: RingConfig{
			Leds:      24,
			Mode:      "term",
			SpinStyle: string(ledring.SpinStyleCyclingColor),
			Breathing: true,
		},
		MQTT: MQTTConfig{
			ClientID: "chuckaluck-button",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfigFile reads a YAML config file over the defaults. Unknown
// keys are rejected so typos fail loudly.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

type FlagOverrides struct {
	InputDevice *string
	BrokerURL   *string
	ClientID    *string
	RingMode    *string
	LogLevel    *string
}

func (o FlagOverrides) Apply(cfg *Config) {
	if o.InputDevice != nil {
		cfg.Input.Device = *o.InputDevice
	}
	if o.BrokerURL != nil {
		cfg.MQTT.BrokerURL = *o.BrokerURL
	}
	if o.ClientID != nil {
		cfg.MQTT.ClientID = *o.ClientID
	}
	if o.RingMode != nil {
		cfg.Ring.Mode = *o.RingMode
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
}

func (c *Config) Validate() error {
	if c.MQTT.BrokerURL == "" {
		return fmt.Errorf("mqtt broker URL is required (the button is useless without the wheel)")
	}
	if c.Input.ButtonCode < 0 {
		return fmt.Errorf("button code %d invalid", c.Input.ButtonCode)
	}
	if c.Input.DebounceMS < 0 {
		return fmt.Errorf("debounce %dms invalid", c.Input.DebounceMS)
	}
	if c.Ring.Leds <= 0 {
		return fmt.Errorf("ring needs at least one LED")
	}
	switch c.Ring.Mode {
	case "term", "none":
	default:
		return fmt.Errorf("ring mode %q invalid (term, none)", c.Ring.Mode)
	}
	switch ledring.SpinStyle(c.Ring.SpinStyle) {
	case ledring.SpinStyleChasingRainbow, ledring.SpinStyleCyclingColor:
	default:
		return fmt.Errorf("spin style %q invalid (chasing_rainbow, cycling_color)", c.Ring.SpinStyle)
	}
	return nil
}

// ToRingConfig maps the YAML ring section onto the indicator tuning.
func (c *Config) ToRingConfig() ledring.Config {
	rc := ledring.DefaultConfig()
	rc.Leds = c.Ring.Leds
	rc.Breathing = c.Ring.Breathing
	rc.SpinStyle = ledring.SpinStyle(c.Ring.SpinStyle)
	return rc
}

func (c *Config) newStrip() ledring.Strip {
	if c.Ring.Mode == "term" {
		return ledring.NewTermStrip(os.Stdout)
	}
	return ledring.NopStrip{}
}

func (c *Config) debounce() time.Duration {
	return time.Duration(c.Input.DebounceMS) * time.Millisecond
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
