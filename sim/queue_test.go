package sim

import (
	"errors"
	"testing"
)

func TestWaitingQueue_DequeueOldest_FIFO(t *testing.T) {
	// GIVEN a queue with tasks [1, 2, 3] enqueued at increasing clocks
	wq := &WaitingQueue{}
	for i := 1; i <= 3; i++ {
		wq.Enqueue(&Task{ID: i}, float64(i))
	}

	// WHEN all are dequeued
	var got []int
	for wq.Len() > 0 {
		task, err := wq.DequeueOldest()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, task.ID)
	}

	// THEN they leave in arrival order
	want := []int{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dequeue order = %v, want %v", got, want)
		}
	}
}

func TestWaitingQueue_DequeueOldest_Empty_ReturnsError(t *testing.T) {
	wq := &WaitingQueue{}
	task, err := wq.DequeueOldest()
	if !errors.Is(err, ErrEmptyQueue) {
		t.Errorf("err = %v, want ErrEmptyQueue", err)
	}
	if task != nil {
		t.Errorf("task = %v, want nil", task)
	}
}

func TestWaitingQueue_Enqueue_StampsTimeAndState(t *testing.T) {
	wq := &WaitingQueue{}
	task := &Task{ID: 7, State: TaskRunning}
	wq.Enqueue(task, 2.5)

	if task.EnqueueTime != 2.5 {
		t.Errorf("EnqueueTime = %v, want 2.5", task.EnqueueTime)
	}
	if task.State != TaskQueued {
		t.Errorf("State = %v, want %v", task.State, TaskQueued)
	}
	if wq.Peek() != task {
		t.Error("Peek must return the only task")
	}
}

func TestWaitingQueue_ItemsAndString(t *testing.T) {
	wq := &WaitingQueue{}
	wq.Enqueue(&Task{ID: 4}, 0)
	wq.Enqueue(&Task{ID: 9}, 1)

	items := wq.Items()
	if len(items) != 2 || items[0].ID != 4 || items[1].ID != 9 {
		t.Errorf("Items() = %v", items)
	}
	if got := wq.String(); got != "[4 9]" {
		t.Errorf("String() = %q, want %q", got, "[4 9]")
	}
}
