// File: reactor/task_queue.go
// Author: momentics <momentics@gmail.com>
//
// taskQueue is a thin FIFO wrapper over eapache/queue sized for erased
// task callables; eapache/queue predates generics, so it stores `any`
// and this wrapper does the one type assertion needed at each end.

package reactor

import "github.com/eapache/queue"

type taskQueue struct {
	q *queue.Queue
}

func newTaskQueue() *taskQueue {
	return &taskQueue{q: queue.New()}
}

func (t *taskQueue) push(task func()) {
	t.q.Add(task)
}

func (t *taskQueue) pop() func() {
	if t.q.Length() == 0 {
		return nil
	}
	v := t.q.Peek()
	t.q.Remove()
	return v.(func())
}

func (t *taskQueue) len() int {
	return t.q.Length()
}
