package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ch0de/video-Chuck-a-Luck/internal/logging"
	"github.com/ch0de/video-Chuck-a-Luck/internal/mqttbus"
	"github.com/ch0de/video-Chuck-a-Luck/internal/statehub"
	"github.com/ch0de/video-Chuck-a-Luck/internal/wheel"
)

const version = "1.0.0"

func printVersion() {
	fmt.Printf("wheeld v%s\n", version)
	fmt.Println("Chuck-a-Luck prize wheel daemon")
}

func printUsage() {
	printVersion()
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  wheeld [OPTIONS]")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Daemon that runs the Chuck-a-Luck prize wheel: spin animation and")
	fmt.Println("  result bookkeeping, operator keyboard control, an MQTT bridge to the")
	fmt.Println("  remote button/LED unit, a websocket state feed for signage, and a")
	fmt.Println("  Unix socket for wheelctl.")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -config string")
	fmt.Println("        Path to YAML config file (optional)")
	fmt.Println()
	fmt.Println("  -input-device string")
	fmt.Println("        Linux input event device for the operator keyboard")
	fmt.Println("        (empty disables keyboard input)")
	fmt.Println()
	fmt.Printf("  -tick-hz int\n")
	fmt.Printf("        Animation tick rate in Hz (default %d)\n", defaultTickHz)
	fmt.Println()
	fmt.Println("  -broker-url string")
	fmt.Println("        MQTT broker URL, e.g. tcp://192.168.1.50:1883")
	fmt.Println("        (empty disables the button/LED bridge)")
	fmt.Println()
	fmt.Println("  -client-id string")
	fmt.Println("        MQTT client identifier (default \"chuckaluck-wheel\")")
	fmt.Println()
	fmt.Println("  -hub-addr string")
	fmt.Println("        Listen address for the websocket state feed, e.g. :8080")
	fmt.Println("        (empty disables the feed)")
	fmt.Println()
	fmt.Println("  -ipc-socket string")
	fmt.Println("        Unix domain socket path for IPC (default \"/tmp/wheeld.sock\")")
	fmt.Println()
	fmt.Println("  -display string")
	fmt.Println("        Display mode: ansi, none (default \"ansi\")")
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
	fmt.Println("KEYS:")
	fmt.Println("  SPACE        spin the wheel")
	fmt.Println("  S            toggle statistics screen")
	fmt.Println("  P            run silent simulation (idle only)")
	fmt.Println("  T            toggle test mode")
	fmt.Println("  LEFT/RIGHT   step the wheel in test mode")
	fmt.Println("  Q / ESC      quit")
	fmt.Println()
	fmt.Println("NOTES:")
	fmt.Println("  - Requires read access to the input device (run as root or add user")
	fmt.Println("    to the 'input' group)")
	fmt.Println("  - All networked subsystems are optional; the wheel runs standalone")
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
		inputDevice = flag.String("input-device", "", "Linux input event device for the operator keyboard")
		tickHz      = flag.Int("tick-hz", 0, "Animation tick rate in Hz")
		brokerURL   = flag.String("broker-url", "", "MQTT broker URL (empty disables the bridge)")
		clientID    = flag.String("client-id", "", "MQTT client identifier")
		hubAddr     = flag.String("hub-addr", "", "Websocket state feed listen address (empty disables)")
		ipcSocket   = flag.String("ipc-socket", "", "Unix domain socket path for IPC")
		displayMode = flag.String("display", "", "Display mode: ansi, none")
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
		case "tick-hz":
			overrides.TickHz = tickHz
		case "broker-url":
			overrides.BrokerURL = brokerURL
		case "client-id":
			overrides.ClientID = clientID
		case "hub-addr":
			overrides.HubAddr = hubAddr
		case "ipc-socket":
			overrides.IPCSocketPath = ipcSocket
		case "display":
			overrides.DisplayMode = displayMode
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

	layout := wheel.Layout{Segments: defaultSegments, PointerAngle: cfg.Wheel.PointerAngleDeg}
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	machine, err := wheel.NewMachine(layout, wheel.DefaultSegments(), cfg.ToSpinConfig(), rng)
	if err != nil {
		logger.Error("invalid wheel configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	d := &daemon{
		logger:          logger,
		machine:         machine,
		stats:           wheel.NewStats(cfg.Wheel.HistorySize),
		rng:             rng,
		display:         cfg.newDisplay(),
		displayInterval: 50 * time.Millisecond,
	}

	// MQTT bridge to the button/LED unit (optional).
	var busMsgs <-chan mqttbus.Message
	if cfg.MQTT.BrokerURL != "" {
		busCfg := mqttbus.DefaultConfig()
		busCfg.BrokerURL = cfg.MQTT.BrokerURL
		busCfg.ClientID = cfg.MQTT.ClientID
		bus := mqttbus.New(busCfg, []string{mqttbus.TopicSpin}, logger)
		bus.Start()
		defer bus.Close()
		d.bus = bus
		busMsgs = bus.Inbox()
	} else {
		logger.Info("MQTT bridge disabled (no broker URL)")
	}

	// Websocket state feed for signage (optional).
	if cfg.Hub.Addr != "" {
		hub := statehub.NewHub(logger, statehub.Config{})
		g.Go(func() error {
			hub.Run(ctx)
			return nil
		})

		mux := http.NewServeMux()
		hub.Register(mux, cfg.Hub.Path)
		srv := &http.Server{Addr: cfg.Hub.Addr, Handler: mux}
		g.Go(func() error {
			<-ctx.Done()
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutCtx)
		})
		g.Go(func() error {
			logger.Info("state feed listening", "addr", cfg.Hub.Addr, "path", cfg.Hub.Path)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("state feed: %w", err)
			}
			return nil
		})
		d.hub = hub
	} else {
		logger.Info("state feed disabled (no listen address)")
	}

	// IPC server for wheelctl.
	events := make(chan Event, 64)
	g.Go(func() error {
		return runIPCServer(ctx, ExpandPath(cfg.IPC.SocketPath), events, logger)
	})

	// Operator keyboard (optional).
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
		logger.Info("keyboard input disabled (no device)")
	}

	logger.Info("starting wheeld",
		"version", version,
		"tick_hz", cfg.Wheel.TickHz,
		"segments", defaultSegments,
		"pointer_angle", cfg.Wheel.PointerAngleDeg,
		"input_device", cfg.Input.Device,
		"broker_url", cfg.MQTT.BrokerURL,
		"hub_addr", cfg.Hub.Addr,
		"ipc_socket", cfg.IPC.SocketPath,
		"display", cfg.Display.Mode)

	g.Go(func() error {
		return d.run(ctx, events, keys, keyErr, busMsgs, cfg.Wheel.TickHz)
	})

	err = g.Wait()
	stop()
	if err != nil && !errors.Is(err, errQuit) && !errors.Is(err, context.Canceled) {
		logger.Error("daemon exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
