package power

import (
	"errors"
	"testing"

	"github.com/cletusw/hipi-ups/internal/gpio"
)

func TestStatusSignalRunning(t *testing.T) {
	line := gpio.NewFakeOutput()
	s := NewStatusSignal(line)

	if err := s.SetRunning(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Value(); got != StatusRunning {
		t.Errorf("expected %s, got %s", StatusRunning, got)
	}

	writes := line.Writes()
	if len(writes) != 1 || writes[0] != false {
		t.Errorf("expected one inactive write, got %v", writes)
	}
}

func TestStatusSignalStoppingExactlyOnce(t *testing.T) {
	line := gpio.NewFakeOutput()
	s := NewStatusSignal(line)

	if err := s.SetRunning(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetStopping(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetStopping(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	writes := line.Writes()
	if len(writes) != 2 {
		t.Fatalf("expected exactly 2 writes (second SetStopping is a no-op), got %v", writes)
	}
	if writes[1] != true {
		t.Errorf("expected final write active, got %v", writes)
	}
	if got := s.Value(); got != StatusStopping {
		t.Errorf("expected %s, got %s", StatusStopping, got)
	}
}

func TestStatusSignalWriteError(t *testing.T) {
	line := gpio.NewFakeOutput()
	line.SetError = errors.New("boom")
	s := NewStatusSignal(line)

	if err := s.SetStopping(); err == nil {
		t.Error("expected error from SetStopping")
	}
	if got := s.Value(); got != StatusRunning {
		t.Errorf("failed write must not latch stopping, got %s", got)
	}
}
