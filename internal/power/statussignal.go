package power

import (
	"fmt"
	"sync"

	"github.com/cletusw/hipi-ups/internal/gpio"
)

// StatusValue is the host lifecycle phase reflected on the status line.
type StatusValue string

const (
	StatusRunning  StatusValue = "RUNNING"  // inactive level
	StatusStopping StatusValue = "STOPPING" // active level
)

// StatusSignal reflects the host lifecycle phase on an output line so the
// external supply controller can see the host going away.
type StatusSignal struct {
	line gpio.OutputLine

	mu       sync.Mutex
	stopping bool
}

// NewStatusSignal wraps the given output line.
func NewStatusSignal(line gpio.OutputLine) *StatusSignal {
	return &StatusSignal{line: line}
}

// SetRunning drives the line to the Running (inactive) level. The write is
// explicit even when the power-on default already matches.
func (s *StatusSignal) SetRunning() error {
	if err := s.line.SetActive(false); err != nil {
		return fmt.Errorf("drive status line running: %w", err)
	}
	return nil
}

// SetStopping drives the line to the Stopping (active) level. It takes
// effect once; further calls within the process lifetime are no-ops.
func (s *StatusSignal) SetStopping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		return nil
	}
	if err := s.line.SetActive(true); err != nil {
		return fmt.Errorf("drive status line stopping: %w", err)
	}
	s.stopping = true
	return nil
}

// Value returns the current lifecycle phase.
func (s *StatusSignal) Value() StatusValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		return StatusStopping
	}
	return StatusRunning
}
