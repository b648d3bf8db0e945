package power

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cletusw/hipi-ups/internal/clock"
	"github.com/cletusw/hipi-ups/internal/gpio"
)

// Monitor consumes power-fault line edges and drives the Scheduler.
// Edges are only wake-ups: the acted-upon datum is the line's current
// level, read back on every notification. Repeated same-level
// notifications collapse through the scheduler's idempotent
// schedule/cancel, so no debounce is needed.
type Monitor struct {
	line  gpio.InputLine
	sched *Scheduler
	delay time.Duration
	clk   clock.Clock
	log   zerolog.Logger
	sink  Sink

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewMonitor creates a Monitor that schedules shutdown after delay when
// the fault level is asserted. sink may be nil.
func NewMonitor(line gpio.InputLine, sched *Scheduler, delay time.Duration, clk clock.Clock, logger zerolog.Logger, sink Sink) *Monitor {
	return &Monitor{
		line:  line,
		sched: sched,
		delay: delay,
		clk:   clk,
		log:   logger,
		sink:  sink,
	}
}

// Start samples the current level once and applies the fault rule to it,
// so a reboot during an ongoing outage schedules shutdown without waiting
// for an edge. It then starts the notification worker. The worker runs on
// its own goroutine, which may block in Cancel.
func (m *Monitor) Start() error {
	level, err := m.line.Level()
	if err != nil {
		return fmt.Errorf("sample power-fault line: %w", err)
	}
	m.apply(level)

	m.quit = make(chan struct{})
	m.wg.Add(1)
	go m.run()
	return nil
}

// Stop makes the monitor stop accepting notifications and waits for the
// worker to finish any in-progress one.
func (m *Monitor) Stop() {
	if m.quit == nil {
		return
	}
	close(m.quit)
	m.wg.Wait()
	m.quit = nil
}

// run processes edge notifications in the order they occurred.
func (m *Monitor) run() {
	defer m.wg.Done()
	for {
		select {
		case <-m.quit:
			return
		case _, ok := <-m.line.Events():
			if !ok {
				return
			}
			level, err := m.line.Level()
			if err != nil {
				m.log.Error().Err(err).Msg("read power-fault level")
				continue
			}
			m.apply(level)
		}
	}
}

// apply maps the fault level to a scheduler decision. Logs and events are
// emitted only when the scheduler state actually changed, so notification
// storms and the startup sample of an already-clear line stay quiet.
func (m *Monitor) apply(faulted bool) {
	if faulted {
		if m.sched.Schedule(m.delay) {
			m.log.Warn().Dur("delay", m.delay).Time("deadline", m.sched.Deadline()).
				Msg("power fault detected, shutdown scheduled")
			m.emit(EventFaultDetected, m.sched.Deadline())
		}
		return
	}

	if _, changed := m.sched.Cancel(); changed {
		m.log.Info().Msg("power fault cleared, scheduled shutdown cancelled")
		m.emit(EventFaultCleared, time.Time{})
	}
}

func (m *Monitor) emit(t EventType, deadline time.Time) {
	if m.sink == nil {
		return
	}
	m.sink(Event{Timestamp: m.clk.Now(), Type: t, Deadline: deadline})
}
