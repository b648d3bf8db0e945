// Package mqtt publishes UPS monitoring events with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/cletusw/hipi-ups/internal/power"
)

// Topic is the MQTT topic for power monitoring events.
const Topic = "power/ups/events"

// TopicSystem is the MQTT topic for daemon lifecycle events.
const TopicSystem = "power/ups/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a power event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event power.Event) error

	// PublishSystem sends a daemon lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a daemon lifecycle event (startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // "STARTUP", "SHUTDOWN"
	Reason     string // "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // pre-formatted JSON; if set, FormatSystemPayload returns it directly
	Retained   bool   // whether the broker should retain the message
}

// Payload is the MQTT message payload for a power event.
type Payload struct {
	UPS UPSPayload `json:"ups"`
}

// UPSPayload contains the power event details.
type UPSPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`

	// ShutdownDeadline is set only for FAULT_DETECTED.
	ShutdownDeadline string `json:"shutdown_deadline,omitempty"`
}

// FormatPayload creates the JSON payload for a power event.
func FormatPayload(event power.Event) ([]byte, error) {
	p := Payload{
		UPS: UPSPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
		},
	}
	if !event.Deadline.IsZero() {
		p.UPS.ShutdownDeadline = event.Deadline.UTC().Format(time.RFC3339)
	}
	return json.Marshal(p)
}

// SystemPayload is the MQTT message payload for a lifecycle event.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the lifecycle event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
// If event.RawPayload is set, it is returned directly (used for full
// status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
