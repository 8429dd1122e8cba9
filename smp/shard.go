// File: smp/shard.go
// Author: momentics <momentics@gmail.com>

package smp

import (
	"github.com/momentics/corereactor/reactor"
)

// Shard pairs one reactor Engine with its place in the System's ring
// grid. All of Shard's methods other than SubmitTo are meant to be
// called only from the owning Engine's goroutine.
type Shard struct {
	CPU    int
	Engine *reactor.Engine

	sys        *System
	pendingOut []*msgQueue // pendingOut[dst]: backlog waiting for ring[CPU][dst] capacity
}

// poll is this shard's SMP poller, registered on Engine by NewShard. It
// drains outbound backlogs into rings with available capacity, then
// drains inbound rings from every peer, executing work items and
// resolving completions addressed to this shard.
func (s *Shard) poll() (bool, error) {
	didWork := false

	for dst := 0; dst < s.sys.NumCPUs(); dst++ {
		if dst == s.CPU {
			continue
		}
		ring := s.sys.rings[s.CPU][dst]
		pq := s.pendingOut[dst]
		for i := 0; i < SMPBatchSize; i++ {
			msg := pq.peek()
			if msg == nil {
				break
			}
			if !ring.Enqueue(msg) {
				break
			}
			pq.drop()
			didWork = true
		}
	}

	for src := 0; src < s.sys.NumCPUs(); src++ {
		if src == s.CPU {
			continue
		}
		ring := s.sys.rings[src][s.CPU]
		for i := 0; i < SMPBatchSize; i++ {
			msg, ok := ring.Dequeue()
			if !ok {
				break
			}
			didWork = true
			s.handleInbound(src, msg)
		}
	}

	return didWork, nil
}

func (s *Shard) handleInbound(src int, msg *message) {
	switch msg.kind {
	case kindWork:
		value, err := func() (v any, rerr error) {
			defer func() {
				if r := recover(); r != nil {
					v, rerr = nil, recoverToError(r)
				}
			}()
			return msg.work.run()
		}()
		s.enqueueOut(src, &message{
			kind: kindCompletion,
			completion: &completionItem{
				value:      value,
				marshalErr: marshalError(err),
				resolve:    msg.work.resolve,
			},
		})
	case kindCompletion:
		msg.completion.resolve(msg.completion.value, msg.completion.marshalErr)
	}
}

// enqueueOut appends msg to the backlog for dst; poll() drains it into
// the ring as capacity allows.
func (s *Shard) enqueueOut(dst int, msg *message) {
	s.pendingOut[dst].push(msg)
}

func recoverToError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicError{r}
}

type panicError struct{ v any }

func (p *panicError) Error() string { return "smp: panic in remote work item" }
