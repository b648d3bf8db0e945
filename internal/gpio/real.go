//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// eventBuffer bounds the per-line notification queue. A full buffer drops
// the newest edge; consumers read the level back on every wake-up, so a
// dropped notification during a storm collapses into the next one.
const eventBuffer = 16

// Chip wraps a GPIO character device and hands out lines.
type Chip struct {
	chip *gpiocdev.Chip
}

// OpenChip opens the named GPIO character device (e.g. "gpiochip0").
func OpenChip(name string) (*Chip, error) {
	chip, err := gpiocdev.NewChip(name)
	if err != nil {
		return nil, &AcquisitionError{Resource: "gpio chip " + name, Err: err}
	}
	return &Chip{chip: chip}, nil
}

// Close releases the chip. Lines requested from it must be closed first.
func (c *Chip) Close() error {
	return c.chip.Close()
}

// RealInput is an input line on actual hardware, delivering edge events
// on both transitions.
type RealInput struct {
	line   *gpiocdev.Line
	events chan Event

	mu     sync.Mutex
	closed bool
}

// RequestInput requests pin as an input with both-edge event detection.
// Pull-down matches Pi boot defaults so behavior is consistent with
// external optocoupler modules.
func (c *Chip) RequestInput(pin int) (*RealInput, error) {
	in := &RealInput{events: make(chan Event, eventBuffer)}

	line, err := c.chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(in.handleEvent))
	if err != nil {
		return nil, &AcquisitionError{Resource: fmt.Sprintf("input pin %d", pin), Err: err}
	}

	in.line = line
	return in, nil
}

// handleEvent runs on the gpiocdev event goroutine. It must not block:
// a full buffer drops the notification rather than stalling the kernel
// event reader.
func (r *RealInput) handleEvent(evt gpiocdev.LineEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	e := Event{
		Rising: evt.Type == gpiocdev.LineEventRisingEdge,
		Time:   time.Now(),
	}
	select {
	case r.events <- e:
	default:
	}
}

// Level returns the current logic level of the line.
func (r *RealInput) Level() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read level: %w", err)
	}
	return v != 0, nil
}

// Events returns the edge notification stream.
func (r *RealInput) Events() <-chan Event {
	return r.events
}

// Close releases the line and closes the event stream.
func (r *RealInput) Close() error {
	err := r.line.Close()

	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.events)
	}
	r.mu.Unlock()

	if err != nil {
		return fmt.Errorf("close input line: %w", err)
	}
	return nil
}

// RealOutput is an output line on actual hardware.
type RealOutput struct {
	line *gpiocdev.Line
}

// RequestOutput requests pin as an output driven to the given initial level.
func (c *Chip) RequestOutput(pin int, active bool) (*RealOutput, error) {
	initial := 0
	if active {
		initial = 1
	}
	line, err := c.chip.RequestLine(pin, gpiocdev.AsOutput(initial))
	if err != nil {
		return nil, &AcquisitionError{Resource: fmt.Sprintf("output pin %d", pin), Err: err}
	}
	return &RealOutput{line: line}, nil
}

// SetActive drives the line to the requested level.
func (o *RealOutput) SetActive(active bool) error {
	v := 0
	if active {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("set level: %w", err)
	}
	return nil
}

// Close reconfigures the pin back to input with pull-down (matching Pi
// boot defaults) before releasing it, so external hardware sees a clean
// state across restarts.
func (o *RealOutput) Close() error {
	var errs []error
	if err := o.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure output pin: %w", err))
	}
	if err := o.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close output pin: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
