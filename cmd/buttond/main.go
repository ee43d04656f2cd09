package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ch0de/video-Chuck-a-Luck/internal/ledring"
	"github.com/ch0de/video-Chuck-a-Luck/internal/logging"
	"github.com/ch0de/video-Chuck-a-Luck/internal/mqttbus"
)

const version = "1.0.0"

func printVersion() {
	fmt.Printf("buttond v%s\n", version)
	fmt.Println("Chuck-a-Luck remote button and LED ring daemon")
}

func printUsage() {
	printVersion()
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  buttond [OPTIONS]")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Daemon for the player-facing button unit: publishes debounced button")
	fmt.Println("  presses to the wheel over MQTT and mirrors the wheel's announced")
	fmt.Println("  state on an LED ring (breathing idle, spin animation, result flash).")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -config string")
	fmt.Println("        Path to YAML config file (optional)")
	fmt.Println()
	fmt.Println("  -input-device string")
	fmt.Println("        Linux input event device carrying the button")
	fmt.Println("        (empty disables the button; the ring still follows the wheel)")
	fmt.Println()
	fmt.Println("  -broker-url string")
	fmt.Println("        MQTT broker URL, e.g. tcp://192.168.1.50:1883 (required)")
	fmt.Println()
	fmt.Println("  -client-id string")
	fmt.Println("        MQTT client identifier (default \"chuckaluck-button\")")
	fmt.Println()
	fmt.Println("  -ring string")
	fmt.Println("        Ring output: term, none (default \"term\")")
	fmt.Println()
	fmt.Println("  -log-level string")
	fmt.Println("        Log level: error, warn, info, debug (default \"info\")")
	fmt.Println()
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println()
	fmt.Println("  -help")
	fmt.Println("        Print this help message")
	fmt.Println()
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" {
			printVersion()
			return
		}
		if arg == "-help" || arg == "--help" || arg == "-h" {
			printUsage()
			return
		}
	}

	var (
		configPath  = flag.String("config", "", "Path to YAML config file")
		inputDevice = flag.String("input-device", "", "Linux input event device carrying the button")
		brokerURL   = flag.String("broker-url", "", "MQTT broker URL")
		clientID    = flag.String("client-id", "", "MQTT client identifier")
		ringMode    = flag.String("ring", "", "Ring output: term, none")
		logLevelStr = flag.String("log-level", "", "Log level: error, warn, info, debug")
		showVersion = flag.Bool("version", false, "Print version and exit")
		showHelp    = flag.Bool("help", false, "Print help message")
	)

	flag.Usage = printUsage
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}
	if *showVersion {
		printVersion()
		return
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfigFile(ExpandPath(*configPath))
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	overrides := FlagOverrides{}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input-device":
			overrides.InputDevice = inputDevice
		case "broker-url":
			overrides.BrokerURL = brokerURL
		case "client-id":
			overrides.ClientID = clientID
		case "ring":
			overrides.RingMode = ringMode
		case "log-level":
			overrides.LogLevel = logLevelStr
		}
	})
	overrides.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	logLevel, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	logger := logging.New(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	busCfg := mqttbus.DefaultConfig()
	busCfg.BrokerURL = cfg.MQTT.BrokerURL
	busCfg.ClientID = cfg.MQTT.ClientID
	bus := mqttbus.New(busCfg, []string{mqttbus.TopicState}, logger)
	bus.Start()
	defer bus.Close()

	keys := make(chan inputEvent, 64)
	keyErr := make(chan error, 1)
	if cfg.Input.Device != "" {
		f, err := os.Open(cfg.Input.Device)
		if err != nil {
			logger.Error("failed to open input device",
				"device", cfg.Input.Device,
				"error", err,
				"tip", "run as root or add user to 'input' group")
			os.Exit(1)
		}
		defer f.Close()
		go readInputEvents(f, keys, keyErr)
	} else {
		logger.Info("button disabled (no input device)")
	}

	d := &daemon{
		logger:     logger,
		ring:       ledring.NewMachine(cfg.ToRingConfig()),
		strip:      cfg.newStrip(),
		bus:        bus,
		buttonCode: uint16(cfg.Input.ButtonCode),
		debounce:   cfg.debounce(),
	}

	logger.Info("starting buttond",
		"version", version,
		"input_device", cfg.Input.Device,
		"button_code", cfg.Input.ButtonCode,
		"broker_url", cfg.MQTT.BrokerURL,
		"ring", cfg.Ring.Mode,
		"leds", cfg.Ring.Leds)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.run(ctx, keys, keyErr, bus.Inbox())
	})

	err = g.Wait()
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("daemon exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
