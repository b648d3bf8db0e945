package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cletusw/hipi-ups/internal/power"
)

var (
	startTime = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	testCfg   = Config{
		ShutdownDelayMs:    60000,
		HeartbeatTimeoutMs: 2000,
		WatchdogEnabled:    true,
		PowerFaultPin:      17,
		HeartbeatPin:       27,
		StatusPin:          22,
		Broker:             "tcp://broker:1883",
		HTTPAddr:           ":8080",
	}
)

func newTestTracker() *Tracker {
	tr := NewTracker(startTime, testCfg)
	tr.SetNow(func() time.Time { return startTime.Add(90 * time.Second) })
	return tr
}

func TestTrackerInitialState(t *testing.T) {
	snap := newTestTracker().Snapshot()

	if snap.Power != power.PowerStable {
		t.Errorf("expected initial power %s, got %s", power.PowerStable, snap.Power)
	}
	if snap.Heartbeat != power.HeartbeatUnknown {
		t.Errorf("expected initial heartbeat %s, got %s", power.HeartbeatUnknown, snap.Heartbeat)
	}
	if snap.Action != power.ActionIdle {
		t.Errorf("expected initial action %s, got %s", power.ActionIdle, snap.Action)
	}
	if got := snap.Uptime(); got != 90*time.Second {
		t.Errorf("expected uptime 90s, got %v", got)
	}
}

func TestTrackerRecordFaultCycle(t *testing.T) {
	tr := newTestTracker()
	deadline := startTime.Add(60 * time.Second)

	tr.Record(power.Event{Timestamp: startTime, Type: power.EventFaultDetected, Deadline: deadline})
	snap := tr.Snapshot()
	if snap.Power != power.PowerFaultActive || snap.Action != power.ActionArmed {
		t.Errorf("after fault: power=%s action=%s", snap.Power, snap.Action)
	}
	if !snap.ShutdownDeadline.Equal(deadline) {
		t.Errorf("expected deadline %v, got %v", deadline, snap.ShutdownDeadline)
	}

	tr.Record(power.Event{Timestamp: startTime, Type: power.EventFaultCleared})
	snap = tr.Snapshot()
	if snap.Power != power.PowerStable || snap.Action != power.ActionCancelled {
		t.Errorf("after clear: power=%s action=%s", snap.Power, snap.Action)
	}
	if !snap.ShutdownDeadline.IsZero() {
		t.Errorf("expected cleared deadline, got %v", snap.ShutdownDeadline)
	}
	if snap.Counts.FaultDetected != 1 || snap.Counts.FaultCleared != 1 {
		t.Errorf("unexpected counts: %+v", snap.Counts)
	}
}

func TestTrackerRecordHeartbeat(t *testing.T) {
	tr := newTestTracker()

	tr.Record(power.Event{Type: power.EventHeartbeatOnline})
	if got := tr.Snapshot().Heartbeat; got != power.HeartbeatOnline {
		t.Errorf("expected %s, got %s", power.HeartbeatOnline, got)
	}

	tr.Record(power.Event{Type: power.EventHeartbeatOffline})
	snap := tr.Snapshot()
	if snap.Heartbeat != power.HeartbeatOffline {
		t.Errorf("expected %s, got %s", power.HeartbeatOffline, snap.Heartbeat)
	}
	if snap.Counts.HeartbeatOnline != 1 || snap.Counts.HeartbeatOffline != 1 {
		t.Errorf("unexpected counts: %+v", snap.Counts)
	}
}

func TestTrackerRecordShutdownFiring(t *testing.T) {
	tr := newTestTracker()
	tr.Record(power.Event{Type: power.EventShutdownFiring})

	snap := tr.Snapshot()
	if snap.Action != power.ActionFiring {
		t.Errorf("expected %s, got %s", power.ActionFiring, snap.Action)
	}
	if snap.Counts.ShutdownFiring != 1 {
		t.Errorf("unexpected counts: %+v", snap.Counts)
	}
}

func TestFormatJSON(t *testing.T) {
	tr := newTestTracker()
	tr.Record(power.Event{
		Type:     power.EventFaultDetected,
		Deadline: startTime.Add(60 * time.Second),
	})
	tr.SetMQTTConnected(true)

	data := FormatJSON(tr.Snapshot())

	var sj StatusJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if sj.Status.Power != "FAULT_ACTIVE" {
		t.Errorf("expected power FAULT_ACTIVE, got %q", sj.Status.Power)
	}
	if sj.Status.ShutdownAction != "ARMED" {
		t.Errorf("expected action ARMED, got %q", sj.Status.ShutdownAction)
	}
	if sj.Status.ShutdownDeadline != "2026-03-15T10:01:00Z" {
		t.Errorf("unexpected deadline %q", sj.Status.ShutdownDeadline)
	}
	if !sj.Status.MQTT.Connected || sj.Status.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("unexpected mqtt status: %+v", sj.Status.MQTT)
	}
	if sj.Status.UptimeSeconds != 90 {
		t.Errorf("expected uptime 90, got %d", sj.Status.UptimeSeconds)
	}
	if !sj.Status.Config.WatchdogEnabled || sj.Status.Config.ShutdownDelayMs != 60000 {
		t.Errorf("unexpected config echo: %+v", sj.Status.Config)
	}
	if sj.Status.Event != "" {
		t.Errorf("web snapshot must not carry an event, got %q", sj.Status.Event)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := newTestTracker()
	data := FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM")

	var sj StatusJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if sj.Status.Event != "SHUTDOWN" || sj.Status.Reason != "SIGTERM" {
		t.Errorf("unexpected lifecycle fields: %+v", sj.Status)
	}
	if sj.Status.Heartbeat != "UNKNOWN" {
		t.Errorf("expected heartbeat UNKNOWN, got %q", sj.Status.Heartbeat)
	}
}
