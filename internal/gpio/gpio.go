// Package gpio provides GPIO line access with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"fmt"
	"time"
)

// Event is an edge notification from an input line. Edges are wake-ups
// only; consumers act on the line's current level, not the edge polarity.
type Event struct {
	// Rising is true for an inactive-to-active transition.
	Rising bool
	// Time is the best-effort timestamp of the edge.
	Time time.Time
}

// InputLine is a digital input with edge notification and level read-back.
type InputLine interface {
	// Level returns the current logic level (true = active).
	Level() (bool, error)

	// Events returns the edge notification stream for this line.
	// Edges on a single line are delivered one at a time, in the order
	// they occurred. The channel is closed when the line is closed.
	Events() <-chan Event

	// Close releases the line and closes the event stream.
	Close() error
}

// OutputLine is a digital output.
type OutputLine interface {
	// SetActive drives the line active (true) or inactive (false).
	SetActive(active bool) error

	// Close releases the line.
	Close() error
}

// Default pin assignments (BCM numbering).
const (
	DefaultPinPowerFault = 17 // input: active = primary power lost
	DefaultPinHeartbeat  = 27 // input: toggled by the supply controller
	DefaultPinStatus     = 22 // output: active = host stopping
)

// DefaultChip is the GPIO character device on Raspberry Pi hardware.
const DefaultChip = "gpiochip0"

// AcquisitionError reports that a required GPIO resource could not be
// obtained. Fatal to initialization; never retried.
type AcquisitionError struct {
	Resource string
	Err      error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire %s: %v", e.Resource, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}
