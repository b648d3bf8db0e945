package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event            string     `json:"event,omitempty"`
	Reason           string     `json:"reason,omitempty"`
	Power            string     `json:"power"`
	Heartbeat        string     `json:"heartbeat"`
	ShutdownAction   string     `json:"shutdown_action"`
	ShutdownDeadline string     `json:"shutdown_deadline,omitempty"`
	UptimeSeconds    int64      `json:"uptime_seconds"`
	StartTime        string     `json:"start_time"`
	Timestamp        string     `json:"timestamp"`
	MQTT             MQTTStatus `json:"mqtt"`
	Counts           CountsJSON `json:"event_counts"`
	Config           ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	FaultDetected    int `json:"fault_detected"`
	FaultCleared     int `json:"fault_cleared"`
	HeartbeatOnline  int `json:"heartbeat_online"`
	HeartbeatOffline int `json:"heartbeat_offline"`
	ShutdownFiring   int `json:"shutdown_firing"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	ShutdownDelayMs    int64  `json:"shutdown_delay_ms"`
	HeartbeatTimeoutMs int64  `json:"heartbeat_timeout_ms"`
	WatchdogEnabled    bool   `json:"watchdog_enabled"`
	PowerFaultPin      int    `json:"power_fault_pin"`
	HeartbeatPin       int    `json:"heartbeat_pin"`
	StatusPin          int    `json:"status_pin"`
	Broker             string `json:"broker,omitempty"`
	HTTPAddr           string `json:"http_addr,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Power:          string(snap.Power),
		Heartbeat:      string(snap.Heartbeat),
		ShutdownAction: string(snap.Action),
		UptimeSeconds:  int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:      snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:      snap.Now.UTC().Format(time.RFC3339),
		MQTT:           MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			FaultDetected:    snap.Counts.FaultDetected,
			FaultCleared:     snap.Counts.FaultCleared,
			HeartbeatOnline:  snap.Counts.HeartbeatOnline,
			HeartbeatOffline: snap.Counts.HeartbeatOffline,
			ShutdownFiring:   snap.Counts.ShutdownFiring,
		},
		Config: ConfigJSON{
			ShutdownDelayMs:    snap.Config.ShutdownDelayMs,
			HeartbeatTimeoutMs: snap.Config.HeartbeatTimeoutMs,
			WatchdogEnabled:    snap.Config.WatchdogEnabled,
			PowerFaultPin:      snap.Config.PowerFaultPin,
			HeartbeatPin:       snap.Config.HeartbeatPin,
			StatusPin:          snap.Config.StatusPin,
			Broker:             snap.Config.Broker,
			HTTPAddr:           snap.Config.HTTPAddr,
		},
	}
	if !snap.ShutdownDeadline.IsZero() {
		inner.ShutdownDeadline = snap.ShutdownDeadline.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT lifecycle event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
