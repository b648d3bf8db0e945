package main

import (
	"flag"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cletusw/hipi-ups/internal/config"
)

func parseAndApply(t *testing.T, args []string) config.Config {
	t.Helper()
	fs := flag.NewFlagSet("hipi-ups", flag.ContinueOnError)
	fl := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	cfg := config.Default()
	fl.apply(&cfg, fs)
	return cfg
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg := parseAndApply(t, []string{
		"-shutdown-delay", "30s",
		"-pin-fault", "5",
		"-watchdog=false",
		"-http", "",
	})

	if cfg.Power.ShutdownDelay != 30*time.Second {
		t.Errorf("expected 30s delay, got %v", cfg.Power.ShutdownDelay)
	}
	if cfg.GPIO.PowerFaultPin != 5 {
		t.Errorf("expected pin 5, got %d", cfg.GPIO.PowerFaultPin)
	}
	if cfg.Heartbeat.Enabled {
		t.Error("expected watchdog disabled")
	}
	if cfg.HTTP.Addr != "" {
		t.Errorf("expected empty http addr, got %q", cfg.HTTP.Addr)
	}
}

func TestUnsetFlagsKeepDefaults(t *testing.T) {
	cfg := parseAndApply(t, nil)
	def := config.Default()

	if cfg != def {
		t.Errorf("expected untouched defaults, got %+v", cfg)
	}
}

func TestBrokerFlagEnablesMQTT(t *testing.T) {
	cfg := parseAndApply(t, []string{"-broker", "tcp://broker.local:1883"})

	if !cfg.MQTT.Enabled {
		t.Error("expected MQTT enabled when -broker is set")
	}
	if cfg.MQTT.Broker != "tcp://broker.local:1883" {
		t.Errorf("unexpected broker %q", cfg.MQTT.Broker)
	}

	// Without -broker, MQTT stays disabled.
	if parseAndApply(t, nil).MQTT.Enabled {
		t.Error("expected MQTT disabled by default")
	}
}

func TestSignalName(t *testing.T) {
	if got := signalName(syscall.SIGINT); got != "SIGINT" {
		t.Errorf("expected SIGINT, got %q", got)
	}
	if got := signalName(syscall.SIGTERM); got != "SIGTERM" {
		t.Errorf("expected SIGTERM, got %q", got)
	}
	if got := signalName(syscall.SIGHUP); got != "UNKNOWN" {
		t.Errorf("expected UNKNOWN, got %q", got)
	}
}

func TestLevelStrings(t *testing.T) {
	if got := faultString(true); got != "FAULT" {
		t.Errorf("expected FAULT, got %q", got)
	}
	if got := faultString(false); got != "OK" {
		t.Errorf("expected OK, got %q", got)
	}
	if got := levelString(true); got != "HIGH" {
		t.Errorf("expected HIGH, got %q", got)
	}
	if got := levelString(false); got != "LOW" {
		t.Errorf("expected LOW, got %q", got)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	if got := newLogger("debug").GetLevel(); got != zerolog.DebugLevel {
		t.Errorf("expected debug, got %s", got)
	}
	// Unknown levels fall back to info.
	if got := newLogger("shouting").GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("expected info fallback, got %s", got)
	}
}
