// Package host exposes the host's orderly-shutdown facility as a narrow
// interface so the monitoring core never talks to the OS directly.
package host

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// Requester asks the host to perform an orderly shutdown.
type Requester interface {
	// RequestShutdown initiates an orderly shutdown. force makes it
	// proceed despite conditions that would ordinarily delay it
	// (inhibitor locks, logged-in users).
	RequestShutdown(force bool) error
}

// SystemdRequester requests shutdown through systemctl.
type SystemdRequester struct{}

// RequestShutdown invokes "systemctl poweroff", with --force when asked.
func (SystemdRequester) RequestShutdown(force bool) error {
	args := []string{"poweroff"}
	if force {
		args = append(args, "--force")
	}
	out, err := exec.Command("systemctl", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl poweroff: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// FakeRequester records shutdown requests for tests.
type FakeRequester struct {
	mu    sync.Mutex
	calls []bool

	// Err, if set, is returned by RequestShutdown after recording.
	Err error

	// Hook, if set, runs inside RequestShutdown after the call is
	// recorded. Tests use it to hold a request in flight.
	Hook func(force bool)
}

// RequestShutdown records the force flag.
func (f *FakeRequester) RequestShutdown(force bool) error {
	f.mu.Lock()
	f.calls = append(f.calls, force)
	f.mu.Unlock()
	if f.Hook != nil {
		f.Hook(force)
	}
	return f.Err
}

// Calls returns a copy of the recorded force flags, in call order.
func (f *FakeRequester) Calls() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.calls...)
}
