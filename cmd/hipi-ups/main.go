// Command hipi-ups protects a single-board host from unclean power loss.
// It watches a power-fault line and a power-supply heartbeat line, drives
// an orderly shutdown if power does not return within a grace window, and
// reports supply-controller liveness over MQTT and HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cletusw/hipi-ups/internal/clock"
	"github.com/cletusw/hipi-ups/internal/config"
	"github.com/cletusw/hipi-ups/internal/gpio"
	"github.com/cletusw/hipi-ups/internal/host"
	"github.com/cletusw/hipi-ups/internal/mqtt"
	"github.com/cletusw/hipi-ups/internal/power"
	"github.com/cletusw/hipi-ups/internal/status"
	"github.com/cletusw/hipi-ups/internal/web"
)

func main() {
	fs := flag.NewFlagSet("hipi-ups", flag.ExitOnError)
	fl := registerFlags(fs)
	fs.Parse(os.Args[1:])

	cfg := config.Default()
	if *fl.configPath != "" {
		loaded, err := config.Load(*fl.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	fl.apply(&cfg, fs)

	logger := newLogger(cfg.Log.Level)

	if err := run(cfg, logger, *fl.printState); err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
}

// flags holds the command-line overrides. Only flags the user actually set
// override the config file.
type flags struct {
	configPath       *string
	chip             *string
	pinFault         *int
	pinHeartbeat     *int
	pinStatus        *int
	shutdownDelay    *time.Duration
	heartbeatTimeout *time.Duration
	watchdog         *bool
	broker           *string
	httpAddr         *string
	logLevel         *string
	printState       *bool
}

func registerFlags(fs *flag.FlagSet) *flags {
	def := config.Default()
	return &flags{
		configPath:       fs.String("config", "", "YAML config file (optional)"),
		chip:             fs.String("chip", def.GPIO.Chip, "GPIO character device"),
		pinFault:         fs.Int("pin-fault", def.GPIO.PowerFaultPin, "BCM pin for the power-fault input"),
		pinHeartbeat:     fs.Int("pin-heartbeat", def.GPIO.HeartbeatPin, "BCM pin for the supply heartbeat input"),
		pinStatus:        fs.Int("pin-status", def.GPIO.StatusPin, "BCM pin for the lifecycle output (-1 to disable)"),
		shutdownDelay:    fs.Duration("shutdown-delay", def.Power.ShutdownDelay, "grace window between power fault and forced shutdown"),
		heartbeatTimeout: fs.Duration("heartbeat-timeout", def.Heartbeat.Timeout, "supply heartbeat watchdog timeout"),
		watchdog:         fs.Bool("watchdog", def.Heartbeat.Enabled, "enable the supply heartbeat watchdog"),
		broker:           fs.String("broker", def.MQTT.Broker, "MQTT broker address (setting this enables MQTT)"),
		httpAddr:         fs.String("http", def.HTTP.Addr, "HTTP status address (empty to disable)"),
		logLevel:         fs.String("log-level", def.Log.Level, "log level (trace, debug, info, warn, error)"),
		printState:       fs.Bool("print-state", false, "print current line levels and exit"),
	}
}

// apply copies explicitly set flags over cfg.
func (f *flags) apply(cfg *config.Config, fs *flag.FlagSet) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "chip":
			cfg.GPIO.Chip = *f.chip
		case "pin-fault":
			cfg.GPIO.PowerFaultPin = *f.pinFault
		case "pin-heartbeat":
			cfg.GPIO.HeartbeatPin = *f.pinHeartbeat
		case "pin-status":
			cfg.GPIO.StatusPin = *f.pinStatus
		case "shutdown-delay":
			cfg.Power.ShutdownDelay = *f.shutdownDelay
		case "heartbeat-timeout":
			cfg.Heartbeat.Timeout = *f.heartbeatTimeout
		case "watchdog":
			cfg.Heartbeat.Enabled = *f.watchdog
		case "broker":
			cfg.MQTT.Broker = *f.broker
			cfg.MQTT.Enabled = true
		case "http":
			cfg.HTTP.Addr = *f.httpAddr
		case "log-level":
			cfg.Log.Level = *f.logLevel
		}
	})
}

func run(cfg config.Config, logger zerolog.Logger, printState bool) error {
	chip, err := gpio.OpenChip(cfg.GPIO.Chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer chip.Close()

	powerLine, err := chip.RequestInput(cfg.GPIO.PowerFaultPin)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer powerLine.Close()

	var heartbeatLine *gpio.RealInput
	if cfg.Heartbeat.Enabled {
		heartbeatLine, err = chip.RequestInput(cfg.GPIO.HeartbeatPin)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer heartbeatLine.Close()
	}

	if printState {
		return printLevels(powerLine, heartbeatLine)
	}

	var statusLine *gpio.RealOutput
	if cfg.GPIO.StatusPin >= 0 {
		statusLine, err = chip.RequestOutput(cfg.GPIO.StatusPin, false)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer statusLine.Close()
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		ShutdownDelayMs:    cfg.Power.ShutdownDelay.Milliseconds(),
		HeartbeatTimeoutMs: cfg.Heartbeat.Timeout.Milliseconds(),
		WatchdogEnabled:    cfg.Heartbeat.Enabled,
		PowerFaultPin:      cfg.GPIO.PowerFaultPin,
		HeartbeatPin:       cfg.GPIO.HeartbeatPin,
		StatusPin:          cfg.GPIO.StatusPin,
		Broker:             cfg.MQTT.Broker,
		HTTPAddr:           cfg.HTTP.Addr,
	})

	var publisher mqtt.Publisher
	var connStatus mqtt.ConnectionStatus
	if cfg.MQTT.Enabled {
		clientID := cfg.MQTT.ClientID + "-" + uuid.New().String()
		pub, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, clientID, logger)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer pub.Close()
		publisher = pub
		connStatus = pub
	}

	sink := func(e power.Event) {
		tracker.Record(e)
		if publisher != nil {
			if err := publisher.Publish(e); err != nil {
				logger.Error().Err(err).Str("event", string(e.Type)).Msg("publish event")
			}
		}
	}

	opts := power.Options{
		PowerLine:        powerLine,
		Host:             host.SystemdRequester{},
		Clock:            clock.New(),
		ShutdownDelay:    cfg.Power.ShutdownDelay,
		HeartbeatTimeout: cfg.Heartbeat.Timeout,
		Sink:             sink,
		Logger:           logger,
	}
	// Assign through the nil checks so a nil *Real{Input,Output} never
	// becomes a non-nil interface.
	if heartbeatLine != nil {
		opts.HeartbeatLine = heartbeatLine
	}
	if statusLine != nil {
		opts.StatusLine = statusLine
	}

	sup := power.NewSupervisor(opts)
	if err := sup.Start(); err != nil {
		return fmt.Errorf("start monitoring: %w", err)
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("http server")
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("http status endpoint listening")
	}

	publishLifecycle(publisher, connStatus, tracker, logger, "STARTUP", "")

	logger.Info().
		Dur("shutdown_delay", cfg.Power.ShutdownDelay).
		Dur("heartbeat_timeout", cfg.Heartbeat.Timeout).
		Bool("watchdog", cfg.Heartbeat.Enabled).
		Msg("hipi-ups started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigCh
	logger.Info().Str("signal", s.String()).Msg("received signal, shutting down")

	sup.Stop()
	publishLifecycle(publisher, connStatus, tracker, logger, "SHUTDOWN", signalName(s))
	return nil
}

// publishLifecycle sends a retained lifecycle event carrying a full status
// snapshot, so the last known state survives on the broker.
func publishLifecycle(pub mqtt.Publisher, conn mqtt.ConnectionStatus, tracker *status.Tracker, logger zerolog.Logger, event, reason string) {
	if pub == nil {
		return
	}
	if conn != nil {
		tracker.SetMQTTConnected(conn.IsConnected())
	}
	snap := tracker.Snapshot()
	ev := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	}
	if err := pub.PublishSystem(ev); err != nil {
		logger.Error().Err(err).Str("event", event).Msg("publish lifecycle event")
	}
}

func printLevels(powerLine, heartbeatLine *gpio.RealInput) error {
	fault, err := powerLine.Level()
	if err != nil {
		return fmt.Errorf("read power-fault line: %w", err)
	}
	out := "POWER: " + faultString(fault)
	if heartbeatLine != nil {
		hb, err := heartbeatLine.Level()
		if err != nil {
			return fmt.Errorf("read heartbeat line: %w", err)
		}
		out += ", HEARTBEAT: " + levelString(hb)
	}
	fmt.Println(out)
	return nil
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

func faultString(faulted bool) string {
	if faulted {
		return "FAULT"
	}
	return "OK"
}

func levelString(active bool) string {
	if active {
		return "HIGH"
	}
	return "LOW"
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}
