//go:build !linux

package gpio

import "errors"

var errNotSupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Chip is not available on non-Linux platforms.
type Chip struct{}

// OpenChip returns an error on non-Linux platforms.
func OpenChip(name string) (*Chip, error) {
	return nil, errNotSupported
}

// Close is not implemented on non-Linux platforms.
func (c *Chip) Close() error { return nil }

// RealInput is not available on non-Linux platforms.
type RealInput struct{}

// RequestInput returns an error on non-Linux platforms.
func (c *Chip) RequestInput(pin int) (*RealInput, error) {
	return nil, errNotSupported
}

// Level is not implemented on non-Linux platforms.
func (r *RealInput) Level() (bool, error) { return false, errNotSupported }

// Events is not implemented on non-Linux platforms.
func (r *RealInput) Events() <-chan Event { return nil }

// Close is not implemented on non-Linux platforms.
func (r *RealInput) Close() error { return nil }

// RealOutput is not available on non-Linux platforms.
type RealOutput struct{}

// RequestOutput returns an error on non-Linux platforms.
func (c *Chip) RequestOutput(pin int, active bool) (*RealOutput, error) {
	return nil, errNotSupported
}

// SetActive is not implemented on non-Linux platforms.
func (o *RealOutput) SetActive(active bool) error { return errNotSupported }

// Close is not implemented on non-Linux platforms.
func (o *RealOutput) Close() error { return nil }
