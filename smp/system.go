// File: smp/system.go
// Author: momentics <momentics@gmail.com>

package smp

import (
	"sync"

	"github.com/momentics/corereactor/core/concurrency"
	"github.com/momentics/corereactor/reactor"
)

// RingCapacity is the fixed capacity of every per-pair message ring,
// matching spec.md §5's "128 items, enforced by a sender-side token
// semaphore." This implementation folds the semaphore into the ring
// itself: the ring's own bounded Enqueue failing *is* the backpressure
// signal, so a saturated pair simply defers delivery rather than
// maintaining a separate counter that would track the same thing.
const RingCapacity = 128

// SMPBatchSize bounds how many messages the SMP poller moves per
// ordered pair, per Poll call, matching spec.md §4.3.
const SMPBatchSize = 16

// System owns every reactor in the sharded deployment plus the NxN grid
// of per-pair rings connecting them. Construct it once at startup with
// the full CPU set, then build one Shard per Engine via NewShard.
type System struct {
	mu     sync.RWMutex
	shards []*Shard
	rings  [][]*concurrency.RingBuffer[*message]
}

// NewSystem allocates the ring grid for n CPUs. Shards register
// themselves via NewShard before any submit_to call may target them.
func NewSystem(n int) *System {
	rings := make([][]*concurrency.RingBuffer[*message], n)
	for i := range rings {
		rings[i] = make([]*concurrency.RingBuffer[*message], n)
		for j := range rings[i] {
			if i != j {
				rings[i][j] = concurrency.NewRingBuffer[*message](uint64(RingCapacity))
			}
		}
	}
	return &System{shards: make([]*Shard, n), rings: rings}
}

// NumCPUs returns the configured shard count.
func (s *System) NumCPUs() int { return len(s.shards) }

// Shards returns every registered shard, indexed by CPU.
func (s *System) Shards() []*Shard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Shard, len(s.shards))
	copy(out, s.shards)
	return out
}

func (s *System) shardAt(cpu int) *Shard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shards[cpu]
}

// NewShard creates and registers the shard for cpu, wiring its SMP
// poller onto engine. Call this once per CPU, after NewSystem and
// before any reactor's Run.
func NewShard(sys *System, cpu int, engine *reactor.Engine) *Shard {
	sh := &Shard{
		CPU:        cpu,
		Engine:     engine,
		sys:        sys,
		pendingOut: make([]*msgQueue, sys.NumCPUs()),
	}
	for i := range sh.pendingOut {
		sh.pendingOut[i] = newMsgQueue()
	}
	sys.mu.Lock()
	sys.shards[cpu] = sh
	sys.mu.Unlock()
	engine.RegisterPoller(reactor.PollerFunc(sh.poll))
	return sh
}
