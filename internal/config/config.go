// Package config loads the daemon configuration from a YAML file, with
// defaults that match the reference hardware.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cletusw/hipi-ups/internal/gpio"
)

// Config represents the structure of the configuration file.
type Config struct {
	GPIO struct {
		Chip          string `yaml:"chip"`            // GPIO character device
		PowerFaultPin int    `yaml:"power_fault_pin"` // input, active = primary power lost
		HeartbeatPin  int    `yaml:"heartbeat_pin"`   // input, toggled by the supply controller
		StatusPin     int    `yaml:"status_pin"`      // output, active = host stopping (-1 disables)
	} `yaml:"gpio"`

	Power struct {
		ShutdownDelay time.Duration `yaml:"shutdown_delay"` // grace window before forced shutdown
	} `yaml:"power"`

	Heartbeat struct {
		Enabled bool          `yaml:"enabled"` // enable the supply-controller watchdog
		Timeout time.Duration `yaml:"timeout"` // watchdog expiry window (~4x the nominal period)
	} `yaml:"heartbeat"`

	MQTT struct {
		Enabled  bool   `yaml:"enabled"`
		Broker   string `yaml:"broker"`
		ClientID string `yaml:"client_id"` // a UUID suffix is appended at startup
	} `yaml:"mqtt"`

	HTTP struct {
		Addr string `yaml:"addr"` // empty disables the status endpoint
	} `yaml:"http"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the configuration for the reference hardware: a 60s
// shutdown grace window and a 2s heartbeat timeout against the supply
// controller's nominal 500ms heartbeat period.
func Default() Config {
	var c Config
	c.GPIO.Chip = gpio.DefaultChip
	c.GPIO.PowerFaultPin = gpio.DefaultPinPowerFault
	c.GPIO.HeartbeatPin = gpio.DefaultPinHeartbeat
	c.GPIO.StatusPin = gpio.DefaultPinStatus
	c.Power.ShutdownDelay = 60 * time.Second
	c.Heartbeat.Enabled = true
	c.Heartbeat.Timeout = 2 * time.Second
	c.MQTT.Enabled = false
	c.MQTT.Broker = "tcp://localhost:1883"
	c.MQTT.ClientID = "hipi-ups"
	c.HTTP.Addr = ":8080"
	c.Log.Level = "info"
	return c
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the temporal parameters.
func (c Config) Validate() error {
	if c.Power.ShutdownDelay <= 0 {
		return fmt.Errorf("power.shutdown_delay must be positive, got %v", c.Power.ShutdownDelay)
	}
	if c.Heartbeat.Enabled && c.Heartbeat.Timeout <= 0 {
		return fmt.Errorf("heartbeat.timeout must be positive, got %v", c.Heartbeat.Timeout)
	}
	return nil
}
