package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ch0de/video-Chuck-a-Luck/internal/wheel"
)

// Config is the top-level YAML configuration for the wheel daemon.
//
// The config file is the primary configuration surface; flags exist for
// small overrides and for environments where a file is awkward. Keep
// defaults and validation centralized so the rest of the code can assume
// a well-formed config.
type Config struct {
	// Keyboard input configuration
	Input InputConfig `yaml:"input"`

	// Spin animation tuning
	Wheel WheelConfig `yaml:"wheel"`

	// MQTT bridge to the remote button
	MQTT MQTTConfig `yaml:"mqtt"`

	// WebSocket state hub for signage clients
	Hub HubConfig `yaml:"hub"`

	// IPC socket for wheelctl
	IPC IPCConfig `yaml:"ipc"`

	// Terminal display
	Display DisplayConfig `yaml:"display"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

type InputConfig struct {
	// Device is the Linux input event device for the operator keyboard.
	// Empty disables keyboard input (IPC and MQTT still work).
	Device string `yaml:"device,omitempty"`
}

type WheelConfig struct {
	PointerAngleDeg float64 `yaml:"pointer_angle_deg"`
	TickHz          int     `yaml:"tick_hz"`
	MinSpins        int     `yaml:"min_spins"`
	MaxSpins        int     `yaml:"max_spins"`
	MinSpinTimeSec  float64 `yaml:"min_spin_time_sec"`
	MaxSpinTimeSec  float64 `yaml:"max_spin_time_sec"`
	WindUpAngleDeg  float64 `yaml:"wind_up_angle_deg"`
	WindUpTimeSec   float64 `yaml:"wind_up_time_sec"`
	WobbleDeg       float64 `yaml:"wobble_deg"`
	WobbleStart     float64 `yaml:"wobble_start"`
	HistorySize     int     `yaml:"history_size"`
}

type MQTTConfig struct {
	// BrokerURL like "tcp://10.0.0.5:1883". Empty disables the bridge.
	BrokerURL string `yaml:"broker_url,omitempty"`
	ClientID  string `yaml:"client_id"`
}

type HubConfig struct {
	// Addr like ":8099". Empty disables the hub.
	Addr string `yaml:"addr,omitempty"`
	Path string `yaml:"path"`
}

type IPCConfig struct {
	SocketPath string `yaml:"socket_path"`
}

type DisplayConfig struct {
	// Mode is "ansi" for the terminal renderer or "none".
	Mode string `yaml:"mode"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a fully-populated Config with defaults matching
// the production table setup.
func DefaultConfig() Config {
	return Config{
		Input: InputConfig{
			Device: "",
		},
		Wheel: WheelConfig{
			PointerAngleDeg: defaultPointerAngle,
			TickHz:          defaultTickHz,
			MinSpins:        4,
			MaxSpins:        8,
			MinSpinTimeSec:  28.0,
			MaxSpinTimeSec:  38.0,
			WindUpAngleDeg:  100.0,
			WindUpTimeSec:   3.0,
			WobbleDeg:       1.8,
			WobbleStart:     0.75,
			HistorySize:     defaultHistorySize,
		},
		MQTT: MQTTConfig{
			BrokerURL: "",
			ClientID:  "chuckaluck-wheel",
		},
		Hub: HubConfig{
			Addr: "",
			Path: "/ws/state",
		},
		IPC: IPCConfig{
			SocketPath: "/tmp/wheeld.sock",
		},
		Display: DisplayConfig{
			Mode: "ansi",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfigFile reads and parses a YAML config file. Unknown fields are
// rejected (helps catch typos) via KnownFields(true).
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}
	// Only whitespace/comments may follow the document.
	if err := dec.Decode(&struct{}{}); err == nil {
		return Config{}, fmt.Errorf("decode config yaml: unexpected trailing document")
	}

	return cfg, nil
}

// FlagOverrides applies flag values on top of a loaded config. Each
// override is only applied if the pointer is non-nil.
type FlagOverrides struct {
	InputDevice *string

	TickHz *int

	BrokerURL *string
	ClientID  *string

	HubAddr *string

	IPCSocketPath *string

	DisplayMode *string

	LogLevel *string
}

// Apply merges the overrides into cfg. Nil pointers are ignored.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.InputDevice != nil {
		cfg.Input.Device = *o.InputDevice
	}
	if o.TickHz != nil {
		cfg.Wheel.TickHz = *o.TickHz
	}
	if o.BrokerURL != nil {
		cfg.MQTT.BrokerURL = *o.BrokerURL
	}
	if o.ClientID != nil {
		cfg.MQTT.ClientID = *o.ClientID
	}
	if o.HubAddr != nil {
		cfg.Hub.Addr = *o.HubAddr
	}
	if o.IPCSocketPath != nil {
		cfg.IPC.SocketPath = *o.IPCSocketPath
	}
	if o.DisplayMode != nil {
		cfg.Display.Mode = *o.DisplayMode
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
}

// Validate checks config invariants after defaults + file + overrides.
func (c *Config) Validate() error {
	if c.Wheel.TickHz <= 0 || c.Wheel.TickHz > 1000 {
		return errors.New("wheel.tick_hz must be between 1 and 1000")
	}
	if c.Wheel.MinSpins < 1 || c.Wheel.MaxSpins < c.Wheel.MinSpins {
		return errors.New("wheel.min_spins must be >= 1 and <= wheel.max_spins")
	}
	if c.Wheel.MinSpinTimeSec <= 0 || c.Wheel.MaxSpinTimeSec < c.Wheel.MinSpinTimeSec {
		return errors.New("wheel.min_spin_time_sec must be > 0 and <= wheel.max_spin_time_sec")
	}
	if c.Wheel.WindUpTimeSec <= 0 {
		return errors.New("wheel.wind_up_time_sec must be > 0")
	}
	if c.Wheel.WobbleStart < 0 || c.Wheel.WobbleStart >= 1 {
		return errors.New("wheel.wobble_start must be in [0, 1)")
	}
	if c.Wheel.HistorySize <= 0 {
		return errors.New("wheel.history_size must be > 0")
	}
	if c.MQTT.BrokerURL != "" && c.MQTT.ClientID == "" {
		return errors.New("mqtt.client_id must not be empty when mqtt.broker_url is set")
	}
	if c.Hub.Addr != "" && c.Hub.Path == "" {
		return errors.New("hub.path must not be empty when hub.addr is set")
	}
	if c.IPC.SocketPath == "" {
		return errors.New("ipc.socket_path must not be empty")
	}
	switch c.Display.Mode {
	case "ansi", "none":
	default:
		return fmt.Errorf("display.mode must be %q or %q", "ansi", "none")
	}
	if c.Logging.Level == "" {
		return errors.New("logging.level must not be empty")
	}
	return nil
}

// ToSpinConfig converts file config into the animation engine config.
func (c *Config) ToSpinConfig() wheel.Config {
	return wheel.Config{
		MinSpins:        c.Wheel.MinSpins,
		MaxSpins:        c.Wheel.MaxSpins,
		MinSpinTime:     c.Wheel.MinSpinTimeSec,
		MaxSpinTime:     c.Wheel.MaxSpinTimeSec,
		WindUpAngle:     c.Wheel.WindUpAngleDeg,
		WindUpTime:      c.Wheel.WindUpTimeSec,
		WobbleAmplitude: c.Wheel.WobbleDeg,
		WobbleStart:     c.Wheel.WobbleStart,
	}
}

// newDisplay builds the configured display.
func (c *Config) newDisplay() Display {
	if c.Display.Mode == "ansi" {
		return newAnsiDisplay(os.Stdout)
	}
	return nopDisplay{}
}

// ExpandPath expands a leading "~" in a path using $HOME.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	if p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if len(p) >= 2 && (p[1] == '/' || p[1] == '\\') {
		return filepath.Join(home, p[2:])
	}
	return p
}
