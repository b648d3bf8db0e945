// Package status provides a thread-safe status tracker for the hipi-ups
// daemon. It is fed by the core's event sink and read by HTTP handlers and
// lifecycle snapshots.
package status

import (
	"sync"
	"time"

	"github.com/cletusw/hipi-ups/internal/power"
)

// Config contains daemon configuration for display.
type Config struct {
	ShutdownDelayMs    int64
	HeartbeatTimeoutMs int64
	WatchdogEnabled    bool
	PowerFaultPin      int
	HeartbeatPin       int
	StatusPin          int
	Broker             string
	HTTPAddr           string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Power            power.PowerState
	Heartbeat        power.HeartbeatStatus
	Action           power.ActionStatus
	ShutdownDeadline time.Time // zero when no action is armed or firing
	Counts           power.EventCounts
	StartTime        time.Time
	Now              time.Time
	MQTTConnected    bool
	Config           Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Power:     power.PowerStable,
			Heartbeat: power.HeartbeatUnknown,
			Action:    power.ActionIdle,
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// SetNow overrides the time source. Tests only.
func (t *Tracker) SetNow(now func() time.Time) {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
}

// Record folds a core event into the tracked state and counts.
// Called from the core's notification workers and timer callbacks.
func (t *Tracker) Record(e power.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e.Type {
	case power.EventFaultDetected:
		t.snap.Power = power.PowerFaultActive
		t.snap.Action = power.ActionArmed
		t.snap.ShutdownDeadline = e.Deadline
		t.snap.Counts.FaultDetected++
	case power.EventFaultCleared:
		t.snap.Power = power.PowerStable
		t.snap.Action = power.ActionCancelled
		t.snap.ShutdownDeadline = time.Time{}
		t.snap.Counts.FaultCleared++
	case power.EventHeartbeatOnline:
		t.snap.Heartbeat = power.HeartbeatOnline
		t.snap.Counts.HeartbeatOnline++
	case power.EventHeartbeatOffline:
		t.snap.Heartbeat = power.HeartbeatOffline
		t.snap.Counts.HeartbeatOffline++
	case power.EventShutdownFiring:
		t.snap.Action = power.ActionFiring
		t.snap.Counts.ShutdownFiring++
	}
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a copy of the current state stamped with the current time.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap := t.snap
	snap.Now = t.now()
	return snap
}
