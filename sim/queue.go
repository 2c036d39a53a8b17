// Implements the WaitingQueue, which holds every admitted task not yet
// dispatched to a server.

package sim

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyQueue is returned when dequeuing from an empty WaitingQueue.
var ErrEmptyQueue = errors.New("waiting queue is empty")

// WaitingQueue is a FIFO of tasks. Enqueue times are non-decreasing, so
// insertion order is arrival order and no reordering is ever needed.
type WaitingQueue struct {
	queue []*Task
}

// Enqueue appends a task at the tail and stamps its enqueue time.
func (wq *WaitingQueue) Enqueue(t *Task, clock float64) {
	if t == nil {
		panic("Enqueue: task must not be nil")
	}
	t.EnqueueTime = clock
	t.State = TaskQueued
	wq.queue = append(wq.queue, t)
}

// DequeueOldest removes and returns the task at the head.
func (wq *WaitingQueue) DequeueOldest() (*Task, error) {
	if len(wq.queue) == 0 {
		return nil, ErrEmptyQueue
	}
	head := wq.queue[0]
	wq.queue[0] = nil
	wq.queue = wq.queue[1:]
	return head, nil
}

// Len returns the number of waiting tasks.
func (wq *WaitingQueue) Len() int {
	return len(wq.queue)
}

// Peek returns the task at the head without removing it.
// Returns nil if the queue is empty.
func (wq *WaitingQueue) Peek() *Task {
	if len(wq.queue) == 0 {
		return nil
	}
	return wq.queue[0]
}

// Items returns a copy of the queue contents, head first.
func (wq *WaitingQueue) Items() []Task {
	out := make([]Task, len(wq.queue))
	for i, t := range wq.queue {
		out[i] = *t
	}
	return out
}

func (wq *WaitingQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, t := range wq.queue {
		sb.WriteString(fmt.Sprint(t.ID))
		if i < len(wq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
