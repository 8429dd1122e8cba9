// File: reactor/poller.go
// Author: momentics <momentics@gmail.com>

package reactor

// Poller is invoked once per main-loop iteration. It reports whether it
// did any work (resolved a completion, delivered an event, fired a
// timer...), which keeps the loop from considering itself idle.
// CanSleep reports whether this poller is capable of waking the reactor
// from a blocking sleep (e.g. epoll's fd is itself sleepable); pollers
// that must be polled actively (plain flag checks) return false.
type Poller interface {
	Poll() (didWork bool, err error)
	CanSleep() bool
}

// PollerFunc adapts a plain function into a Poller that never supports
// sleep, for pollers with no native wake mechanism.
type PollerFunc func() (bool, error)

func (f PollerFunc) Poll() (bool, error) { return f() }
func (f PollerFunc) CanSleep() bool      { return false }
