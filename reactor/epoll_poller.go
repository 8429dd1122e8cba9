// File: reactor/epoll_poller.go
// Author: momentics <momentics@gmail.com>
//
// EpollPoller adapts the platform EventReactor backend (epoll on Linux,
// IOCP on Windows, an error stub elsewhere) into the engine's Poller
// contract, dispatching to per-fd callbacks registered via userData.

package reactor

import (
	"sync"
	"time"
)

// FDCallback is invoked when the backend reports activity on fd.
type FDCallback func(fd uintptr)

// EpollPoller multiplexes network descriptors for one reactor.
type EpollPoller struct {
	backend EventReactor

	mu        sync.Mutex
	callbacks map[uintptr]FDCallback
	tokens    map[uintptr]uintptr
	nextToken uintptr
}

// NewEpollPoller constructs the network-descriptor poller for the
// calling reactor using the platform-appropriate backend.
func NewEpollPoller() (*EpollPoller, error) {
	backend, err := NewReactor()
	if err != nil {
		return nil, err
	}
	return &EpollPoller{
		backend:   backend,
		callbacks: make(map[uintptr]FDCallback),
		tokens:    make(map[uintptr]uintptr),
	}, nil
}

// Register arms fd for readiness notification, invoking cb from the
// owning reactor's goroutine whenever the backend reports the fd ready.
func (p *EpollPoller) Register(fd uintptr, cb FDCallback) error {
	p.mu.Lock()
	p.nextToken++
	token := p.nextToken
	p.callbacks[token] = cb
	p.tokens[fd] = token
	p.mu.Unlock()
	if err := p.backend.Register(fd, token); err != nil {
		p.mu.Lock()
		delete(p.callbacks, token)
		delete(p.tokens, fd)
		p.mu.Unlock()
		return err
	}
	return nil
}

// Unregister removes fd from the watch set. The backend (epoll, IOCP)
// also drops its registration; on Linux this happens automatically when
// the fd is closed, but calling Unregister first avoids leaking the
// callback table entry for fds closed by the caller explicitly.
func (p *EpollPoller) Unregister(fd uintptr) error {
	p.mu.Lock()
	token, ok := p.tokens[fd]
	delete(p.tokens, fd)
	if ok {
		delete(p.callbacks, token)
	}
	p.mu.Unlock()
	if !ok {
		return nil
	}
	return p.backend.Unregister(fd)
}

// Poll implements Poller: a single non-blocking pass that dispatches any
// backend events observed since the previous call.
func (p *EpollPoller) Poll() (bool, error) {
	return p.wait(0)
}

// WaitBlocking blocks for up to timeout waiting for backend events,
// dispatching any that arrive. The reactor main loop calls this instead
// of Poll when every registered poller agrees it is safe to sleep.
func (p *EpollPoller) WaitBlocking(timeout time.Duration) (bool, error) {
	ms := int(timeout / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return p.wait(ms)
}

func (p *EpollPoller) wait(timeoutMs int) (bool, error) {
	events := make([]Event, 128)
	n, err := p.backend.Wait(events, timeoutMs)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	p.mu.Lock()
	for i := 0; i < n; i++ {
		if cb, ok := p.callbacks[events[i].UserData]; ok {
			p.mu.Unlock()
			cb(events[i].Fd)
			p.mu.Lock()
		}
	}
	p.mu.Unlock()
	return true, nil
}

// CanSleep reports that the backend is itself an interruptible wait
// primitive (epoll_wait/IOCP GetQueuedCompletionStatus).
func (p *EpollPoller) CanSleep() bool { return true }

// Close releases the backend.
func (p *EpollPoller) Close() error { return p.backend.Close() }
