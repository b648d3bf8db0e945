package power

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cletusw/hipi-ups/internal/clock"
	"github.com/cletusw/hipi-ups/internal/host"
)

// Scheduler owns at most one pending "fire orderly shutdown" action.
// Schedule, Cancel and the timer-driven fire resolve their races through a
// single mutex-guarded decision on the action status: exactly one of a
// racing Cancel/fire pair wins, and Cancel blocks on the losing path until
// the in-flight execution finishes.
type Scheduler struct {
	host host.Requester
	clk  clock.Clock
	log  zerolog.Logger
	sink Sink

	mu       sync.Mutex
	status   ActionStatus
	deadline time.Time
	timer    clock.Timer
	done     chan struct{} // closed when a firing execution finishes
}

// NewScheduler creates a Scheduler in the Idle state.
// sink may be nil.
func NewScheduler(requester host.Requester, clk clock.Clock, logger zerolog.Logger, sink Sink) *Scheduler {
	return &Scheduler{
		host:   requester,
		clk:    clk,
		log:    logger,
		sink:   sink,
		status: ActionIdle,
	}
}

// Schedule arms a shutdown action to fire after delay. While an action is
// already Armed or Firing this is a no-op preserving the original deadline,
// so signal bounce cannot extend an outage's grace window. Returns true if
// a new action was armed. Never blocks.
func (s *Scheduler) Schedule(delay time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == ActionArmed || s.status == ActionFiring {
		return false
	}

	s.status = ActionArmed
	s.deadline = s.clk.Now().Add(delay)
	s.done = make(chan struct{})
	s.timer = s.clk.AfterFunc(delay, s.fire)
	return true
}

// Cancel guarantees that, on return, no shutdown will occur from the
// current action unless it already reached the host. Armed actions are
// cancelled and will never fire. A Firing action cannot be undone; Cancel
// blocks until its execution finishes so the caller observes a settled
// state. Returns the resulting status and whether this call changed
// anything (cancelled a pending action or waited out an in-flight one).
func (s *Scheduler) Cancel() (ActionStatus, bool) {
	s.mu.Lock()

	switch s.status {
	case ActionArmed:
		s.timer.Stop()
		s.status = ActionCancelled
		s.mu.Unlock()
		return ActionCancelled, true

	case ActionFiring:
		done := s.done
		s.mu.Unlock()
		s.log.Warn().Msg("cancel arrived while shutdown request in flight, waiting for completion")
		<-done
		return ActionCompleted, true

	default:
		st := s.status
		s.mu.Unlock()
		return st, false
	}
}

// fire is the timer callback. If a Cancel won the race the action is no
// longer Armed and fire is a no-op; otherwise the host shutdown request is
// made exactly once, with no retry. Masking a failure of a last-resort
// safety action behind a retry loop would be worse than one loud attempt.
func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.status != ActionArmed {
		s.mu.Unlock()
		return
	}
	s.status = ActionFiring
	done := s.done
	s.mu.Unlock()

	s.log.Error().Bool("alert", true).Bool("force", true).
		Msg("shutdown delay elapsed without power restore, requesting host shutdown")
	if s.sink != nil {
		s.sink(Event{Timestamp: s.clk.Now(), Type: EventShutdownFiring})
	}

	if err := s.host.RequestShutdown(true); err != nil {
		s.log.Error().Err(err).Msg("host shutdown request failed")
	}

	s.mu.Lock()
	s.status = ActionCompleted
	s.mu.Unlock()
	close(done)
}

// Status returns the current action status.
func (s *Scheduler) Status() ActionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Deadline returns the deadline of the current action, or the zero time
// when no action is armed or firing.
func (s *Scheduler) Deadline() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == ActionArmed || s.status == ActionFiring {
		return s.deadline
	}
	return time.Time{}
}
