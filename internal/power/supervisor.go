package power

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cletusw/hipi-ups/internal/clock"
	"github.com/cletusw/hipi-ups/internal/gpio"
	"github.com/cletusw/hipi-ups/internal/host"
)

// Options configures the monitoring subsystem.
type Options struct {
	// PowerLine is the power-fault input. Required.
	PowerLine gpio.InputLine

	// HeartbeatLine is the supply controller heartbeat input.
	// nil disables the watchdog (the original hardware shipped both
	// with and without the heartbeat wire).
	HeartbeatLine gpio.InputLine

	// StatusLine is the lifecycle output. nil disables the status signal.
	StatusLine gpio.OutputLine

	// Host receives the orderly shutdown request. Required.
	Host host.Requester

	// Clock provides time and single-shot timers. Required.
	Clock clock.Clock

	// ShutdownDelay is the grace window between fault and shutdown.
	ShutdownDelay time.Duration

	// HeartbeatTimeout is the watchdog expiry window.
	HeartbeatTimeout time.Duration

	// Sink receives observable core events. May be nil.
	Sink Sink

	Logger zerolog.Logger
}

// Supervisor assembles the monitoring core and owns its startup and
// teardown ordering.
type Supervisor struct {
	sched    *Scheduler
	monitor  *Monitor
	watchdog *Watchdog // nil when no heartbeat line is configured
	signal   *StatusSignal
	log      zerolog.Logger

	started bool
}

// NewSupervisor wires the components together. It does not touch hardware;
// Start does.
func NewSupervisor(opts Options) *Supervisor {
	s := &Supervisor{log: opts.Logger}

	s.sched = NewScheduler(opts.Host, opts.Clock, opts.Logger, opts.Sink)
	s.monitor = NewMonitor(opts.PowerLine, s.sched, opts.ShutdownDelay, opts.Clock, opts.Logger, opts.Sink)
	if opts.HeartbeatLine != nil {
		s.watchdog = NewWatchdog(opts.HeartbeatLine, opts.HeartbeatTimeout, opts.Clock, opts.Logger, opts.Sink)
	}
	if opts.StatusLine != nil {
		s.signal = NewStatusSignal(opts.StatusLine)
	}
	return s
}

// Start brings the subsystem up: status line Running, then the fault
// monitor (which samples the current level), then the watchdog. A failure
// leaves nothing running; the caller releases the lines it acquired.
func (s *Supervisor) Start() error {
	if s.signal != nil {
		if err := s.signal.SetRunning(); err != nil {
			return fmt.Errorf("status signal: %w", err)
		}
	}

	if err := s.monitor.Start(); err != nil {
		return fmt.Errorf("power-fault monitor: %w", err)
	}

	if s.watchdog != nil {
		s.watchdog.Start()
	}

	s.started = true
	s.log.Info().Msg("power monitoring started")
	return nil
}

// Stop quiesces the subsystem. The order matters: stop accepting
// notifications first, so nothing can re-arm the scheduler; then
// synchronously cancel any pending or in-flight shutdown action; then stop
// the watchdog timer; finally drive the status line to Stopping. A
// late-arriving action can therefore never fire after Stop returns.
func (s *Supervisor) Stop() {
	if !s.started {
		return
	}
	s.started = false

	s.monitor.Stop()

	if st, changed := s.sched.Cancel(); changed {
		if st == ActionCompleted {
			s.log.Warn().Str("action", string(st)).Msg("in-flight shutdown request completed during teardown")
		} else {
			s.log.Info().Str("action", string(st)).Msg("pending shutdown cancelled during teardown")
		}
	}

	if s.watchdog != nil {
		s.watchdog.Stop()
	}

	if s.signal != nil {
		if err := s.signal.SetStopping(); err != nil {
			s.log.Error().Err(err).Msg("drive status line stopping")
		}
	}

	s.log.Info().Msg("power monitoring stopped")
}

// Scheduler exposes the shutdown action for observability.
func (s *Supervisor) Scheduler() *Scheduler {
	return s.sched
}

// Watchdog exposes the heartbeat watchdog for observability.
// Returns nil when the watchdog is disabled.
func (s *Supervisor) Watchdog() *Watchdog {
	return s.watchdog
}

// StatusSignal exposes the lifecycle signal for observability.
// Returns nil when no status line is configured.
func (s *Supervisor) StatusSignal() *StatusSignal {
	return s.signal
}
