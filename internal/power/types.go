// Package power contains the event-driven monitoring core: the power-fault
// monitor, the cancellable delayed shutdown action, and the heartbeat
// watchdog. All state is in-memory and re-derived at startup by sampling
// current line levels; nothing here persists across restarts.
//
// Time is always injected through the clock package, never read ambiently.
package power

import "time"

// PowerState is derived from the last observed level of the power line.
type PowerState string

const (
	PowerStable      PowerState = "STABLE"
	PowerFaultActive PowerState = "FAULT_ACTIVE"
)

// ActionStatus is the lifecycle of the scheduled shutdown action.
type ActionStatus string

const (
	ActionIdle      ActionStatus = "IDLE"
	ActionArmed     ActionStatus = "ARMED"
	ActionFiring    ActionStatus = "FIRING"
	ActionCompleted ActionStatus = "COMPLETED"
	ActionCancelled ActionStatus = "CANCELLED"
)

// HeartbeatStatus tracks whether the external supply controller is alive.
type HeartbeatStatus string

const (
	HeartbeatUnknown HeartbeatStatus = "UNKNOWN"
	HeartbeatOnline  HeartbeatStatus = "ONLINE"
	HeartbeatOffline HeartbeatStatus = "OFFLINE"
)

// EventType identifies an observable core transition.
type EventType string

const (
	EventFaultDetected    EventType = "FAULT_DETECTED"
	EventFaultCleared     EventType = "FAULT_CLEARED"
	EventHeartbeatOnline  EventType = "HEARTBEAT_ONLINE"
	EventHeartbeatOffline EventType = "HEARTBEAT_OFFLINE"
	EventShutdownFiring   EventType = "SHUTDOWN_FIRING"
)

// Event is an observable transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType

	// Deadline is the scheduled shutdown deadline.
	// Set only for FAULT_DETECTED.
	Deadline time.Time
}

// Sink receives core events. It is called from the notification workers
// and the timer callbacks; implementations should return promptly.
type Sink func(Event)

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	FaultDetected    int
	FaultCleared     int
	HeartbeatOnline  int
	HeartbeatOffline int
	ShutdownFiring   int
}
