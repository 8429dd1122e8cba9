// File: timer/heap.go
// Author: momentics <momentics@gmail.com>
//
// Min-heap of armed timer entries ordered by deadline, ties broken by
// insertion sequence. Grounded on the container/heap timer-heap idiom
// used by joeycumines-go-utilpkg/eventloop's Loop.

package timer

import (
	"container/heap"
	"time"
)

type entry struct {
	deadline time.Time
	seq      int64
	fn       func()
	period   time.Duration
	canceled bool
	firing   bool
	index    int
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

var _ heap.Interface = (*entryHeap)(nil)
