// Package clock provides a monotonic time source with cancellable
// single-shot timers. The real implementation wraps the time package.
// The fake implementation allows deterministic tests without sleeping.
package clock

import "time"

// Clock is a monotonic time source that can schedule delayed callbacks.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc schedules f to run once after d has elapsed.
	// f runs on its own goroutine (or the advancing goroutine, for fakes).
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a handle to a single pending callback.
type Timer interface {
	// Stop prevents the callback from running. It returns true if it
	// succeeded, false if the callback already ran or was already stopped.
	// Stop does not wait for a callback that has already started.
	Stop() bool
}

// realClock implements Clock using the time package.
type realClock struct{}

// New returns a Clock backed by the system monotonic clock.
func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}

type realTimer struct {
	t *time.Timer
}

func (r realTimer) Stop() bool {
	return r.t.Stop()
}
