package gpio

import (
	"errors"
	"testing"
	"time"
)

func TestFakeInputLevel(t *testing.T) {
	f := NewFakeInput(true)

	level, err := f.Level()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !level {
		t.Error("expected initial level true")
	}

	// No edge is emitted for the initial level.
	select {
	case e := <-f.Events():
		t.Errorf("unexpected event at construction: %+v", e)
	default:
	}
}

func TestFakeInputDriveEmitsEdge(t *testing.T) {
	f := NewFakeInput(false)
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	f.Drive(true, at)

	select {
	case e := <-f.Events():
		if !e.Rising {
			t.Error("expected rising edge")
		}
		if !e.Time.Equal(at) {
			t.Errorf("expected event time %v, got %v", at, e.Time)
		}
	default:
		t.Fatal("expected an event after Drive")
	}

	level, _ := f.Level()
	if !level {
		t.Error("expected level true after Drive(true)")
	}
}

func TestFakeInputSameLevelDriveStillNotifies(t *testing.T) {
	f := NewFakeInput(true)
	f.Drive(true, time.Now())

	select {
	case <-f.Events():
	default:
		t.Fatal("same-level Drive should still emit a notification")
	}
}

func TestFakeInputLevelError(t *testing.T) {
	f := NewFakeInput(false)
	f.LevelError = errors.New("boom")

	if _, err := f.Level(); err == nil {
		t.Error("expected error from Level")
	}
}

func TestFakeInputCloseClosesEvents(t *testing.T) {
	f := NewFakeInput(false)
	if err := f.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := <-f.Events(); ok {
		t.Error("expected closed event channel")
	}

	// Double close must not panic.
	if err := f.Close(); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}
}

func TestFakeOutputRecordsWrites(t *testing.T) {
	f := NewFakeOutput()

	if err := f.SetActive(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.SetActive(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	writes := f.Writes()
	if len(writes) != 2 || writes[0] != false || writes[1] != true {
		t.Errorf("expected writes [false true], got %v", writes)
	}
	if !f.Active() {
		t.Error("expected Active()=true after last write")
	}
}

func TestFakeOutputSetError(t *testing.T) {
	f := NewFakeOutput()
	f.SetError = errors.New("boom")

	if err := f.SetActive(true); err == nil {
		t.Error("expected error from SetActive")
	}
	if len(f.Writes()) != 0 {
		t.Error("failed write should not be recorded")
	}
}
