//go:build linux

// File: net/engine_poller.go
// Author: momentics <momentics@gmail.com>

package net

import (
	"sync"

	"github.com/momentics/corereactor/reactor"
)

// enginePollers caches one EpollPoller per engine so that every
// Listen/Dial/ListenUDP call against the same engine shares a single
// epoll instance rather than opening one per socket.
var (
	enginePollersMu sync.Mutex
	enginePollers   = map[*reactor.Engine]*reactor.EpollPoller{}
)

func pollerFor(e *reactor.Engine) (*reactor.EpollPoller, error) {
	enginePollersMu.Lock()
	defer enginePollersMu.Unlock()
	if p, ok := enginePollers[e]; ok {
		return p, nil
	}
	p, err := reactor.NewEpollPoller()
	if err != nil {
		return nil, err
	}
	e.RegisterPoller(p)
	enginePollers[e] = p
	return p, nil
}
