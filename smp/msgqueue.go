// File: smp/msgqueue.go
// Author: momentics <momentics@gmail.com>

package smp

import "github.com/eapache/queue"

// msgQueue is the per-destination backlog of messages waiting for ring
// capacity to free up, backed by the same eapache/queue FIFO the
// reactor package uses for its task queues.
type msgQueue struct {
	q *queue.Queue
}

func newMsgQueue() *msgQueue {
	return &msgQueue{q: queue.New()}
}

func (m *msgQueue) push(msg *message) {
	m.q.Add(msg)
}

func (m *msgQueue) peek() *message {
	if m.q.Length() == 0 {
		return nil
	}
	return m.q.Peek().(*message)
}

func (m *msgQueue) drop() {
	m.q.Remove()
}

func (m *msgQueue) len() int {
	return m.q.Length()
}
