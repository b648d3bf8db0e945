package power

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cletusw/hipi-ups/internal/clock"
	"github.com/cletusw/hipi-ups/internal/gpio"
)

// Watchdog tracks whether the external supply controller is alive from the
// toggling of its heartbeat line. Online transitions happen only via edges;
// Offline transitions happen only via timer expiry. Expiry does not rearm
// the timer, so an uninterrupted gap yields exactly one Offline transition
// regardless of how many pulses were missed. Heartbeat loss is reported,
// never acted on: the watchdog has no path to the shutdown scheduler.
//
// The host serializes a single line's notifications, but the state is
// mutex-guarded anyway so the edge path and the timer callback stay safe
// if that guarantee is ever relaxed.
type Watchdog struct {
	line    gpio.InputLine
	timeout time.Duration
	clk     clock.Clock
	log     zerolog.Logger
	sink    Sink

	mu       sync.Mutex
	status   HeartbeatStatus
	deadline time.Time
	timer    clock.Timer

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewWatchdog creates a Watchdog with the given timeout. The timeout must
// exceed the nominal heartbeat period by enough margin to absorb jitter
// and the occasional missed pulse (reference ratio 4x).
func NewWatchdog(line gpio.InputLine, timeout time.Duration, clk clock.Clock, logger zerolog.Logger, sink Sink) *Watchdog {
	return &Watchdog{
		line:    line,
		timeout: timeout,
		clk:     clk,
		log:     logger,
		sink:    sink,
		status:  HeartbeatUnknown,
	}
}

// Start arms the initial timeout window, so total silence after startup is
// detected rather than silently assumed Online, and starts the worker.
func (w *Watchdog) Start() {
	w.arm()
	w.quit = make(chan struct{})
	w.wg.Add(1)
	go w.run()
}

// Stop makes the watchdog stop accepting notifications, waits for the
// worker, then stops the timeout timer. Status is left as-is.
func (w *Watchdog) Stop() {
	if w.quit == nil {
		return
	}
	close(w.quit)
	w.wg.Wait()
	w.quit = nil

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
}

// Status returns the current heartbeat status.
func (w *Watchdog) Status() HeartbeatStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Deadline returns the instant at which the watchdog expires unless an
// edge resets it first.
func (w *Watchdog) Deadline() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.deadline
}

func (w *Watchdog) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.quit:
			return
		case _, ok := <-w.line.Events():
			if !ok {
				return
			}
			w.beat(w.clk.Now())
		}
	}
}

// arm starts the initial timeout window.
func (w *Watchdog) arm() {
	w.mu.Lock()
	w.deadline = w.clk.Now().Add(w.timeout)
	w.timer = w.clk.AfterFunc(w.timeout, w.expire)
	w.mu.Unlock()
}

// beat records a heartbeat edge at now: transition to Online if not there
// already, and push the expiry deadline out by the full timeout.
func (w *Watchdog) beat(now time.Time) {
	w.mu.Lock()
	wasOnline := w.status == HeartbeatOnline
	w.status = HeartbeatOnline
	w.deadline = now.Add(w.timeout)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = w.clk.AfterFunc(w.timeout, w.expire)
	w.mu.Unlock()

	if !wasOnline {
		w.log.Info().Msg("power supply heartbeat online")
		w.emit(EventHeartbeatOnline, now)
	}
}

// expire is the timer callback. A stale expiry that raced a beat is
// detected by the deadline check and ignored. The timer is not rearmed
// here; an expired watchdog stays Offline until heartbeat resumes.
func (w *Watchdog) expire() {
	now := w.clk.Now()

	w.mu.Lock()
	if now.Before(w.deadline) {
		w.mu.Unlock()
		return
	}
	w.status = HeartbeatOffline
	w.mu.Unlock()

	w.log.Error().Dur("timeout", w.timeout).
		Msg("power supply heartbeat lost, controller offline")
	w.emit(EventHeartbeatOffline, now)
}

func (w *Watchdog) emit(t EventType, now time.Time) {
	if w.sink == nil {
		return
	}
	w.sink(Event{Timestamp: now, Type: t})
}
