package gpio

import (
	"sync"
	"time"
)

// FakeInput is a test double input line. Tests drive it to a level, which
// emits an edge notification, exactly as hardware would.
type FakeInput struct {
	mu     sync.Mutex
	level  bool
	events chan Event
	closed bool

	// LevelError, if set, is returned by Level.
	LevelError error
}

// NewFakeInput creates a FakeInput at the given initial level.
// No edge is emitted for the initial level.
func NewFakeInput(level bool) *FakeInput {
	return &FakeInput{
		level:  level,
		events: make(chan Event, 64),
	}
}

// Level returns the current fake level.
func (f *FakeInput) Level() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LevelError != nil {
		return false, f.LevelError
	}
	return f.level, nil
}

// Events returns the edge notification stream.
func (f *FakeInput) Events() <-chan Event {
	return f.events
}

// Drive sets the level and emits an edge notification stamped at t.
// Driving to the current level still emits an edge, modelling a glitch
// that produced a same-level notification.
func (f *FakeInput) Drive(level bool, t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.level = level
	f.events <- Event{Rising: level, Time: t}
}

// Close closes the event stream.
func (f *FakeInput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

// FakeOutput is a test double output line recording every write.
type FakeOutput struct {
	mu     sync.Mutex
	writes []bool
	closed bool

	// SetError, if set, is returned by SetActive.
	SetError error
}

// NewFakeOutput creates a FakeOutput.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// SetActive records the write.
func (f *FakeOutput) SetActive(active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.writes = append(f.writes, active)
	return nil
}

// Writes returns a copy of all recorded writes, in order.
func (f *FakeOutput) Writes() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.writes...)
}

// Active returns the last written level, or false if nothing was written.
func (f *FakeOutput) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		return false
	}
	return f.writes[len(f.writes)-1]
}

// Closed reports whether Close was called.
func (f *FakeOutput) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Close marks the output as closed.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
