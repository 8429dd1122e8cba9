//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based reactor implementation and factory.

package reactor

import (
	"sync"

	"golang.org/x/sys/unix"
)

// linuxReactor is an epoll-based event reactor. The user-data word passed
// to Register is kept in a side table rather than packed into the kernel
// event (EpollEvent's Pad field is too narrow to hold a uintptr on every
// architecture), keyed by fd since fds are not reused while registered.
type linuxReactor struct {
	epfd int

	mu    sync.Mutex
	udata map[int32]uintptr
}

// NewReactor constructs a new platform-specific EventReactor for Linux.
func NewReactor() (EventReactor, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}
	return &linuxReactor{epfd: epfd, udata: make(map[int32]uintptr)}, nil
}

// Register adds file descriptor to epoll.
func (r *linuxReactor) Register(fd uintptr, udata uintptr) error {
	event := &unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLOUT,
		Fd:     int32(fd),
	}
	r.mu.Lock()
	r.udata[int32(fd)] = udata
	r.mu.Unlock()
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, int(fd), event); err != nil {
		r.mu.Lock()
		delete(r.udata, int32(fd))
		r.mu.Unlock()
		return err
	}
	return nil
}

// Unregister removes fd from the epoll set.
func (r *linuxReactor) Unregister(fd uintptr) error {
	r.mu.Lock()
	delete(r.udata, int32(fd))
	r.mu.Unlock()
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, int(fd), nil)
}

// Wait waits for epoll events and fills the result into events slice. A
// timeoutMs of -1 blocks until at least one event or a signal arrives; 0
// polls without blocking.
func (r *linuxReactor) Wait(events []Event, timeoutMs int) (int, error) {
	rawEvents := make([]unix.EpollEvent, len(events))
	n, err := unix.EpollWait(r.epfd, rawEvents, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	r.mu.Lock()
	for i := 0; i < n; i++ {
		events[i] = Event{
			Fd:       uintptr(rawEvents[i].Fd),
			UserData: r.udata[rawEvents[i].Fd],
		}
	}
	r.mu.Unlock()
	return n, nil
}

// Close closes the epoll instance.
func (r *linuxReactor) Close() error {
	return unix.Close(r.epfd)
}
