// Defines the Task struct that models one unit of work routed through the queue.

package sim

import "fmt"

// TaskState represents the lifecycle state of a task.
type TaskState string

const (
	TaskQueued    TaskState = "queued"
	TaskRunning   TaskState = "running"
	TaskCompleted TaskState = "completed"
)

// Task is one unit of work. ServiceDuration is sampled once when the task is
// created, independent of when it is eventually dispatched.
type Task struct {
	ID              int       // unique, assigned in arrival order starting at 1
	ArrivalTime     float64   // clock at admission
	ServiceDuration float64   // time the task holds a server
	EnqueueTime     float64   // clock when it entered the waiting queue
	StartTime       float64   // clock at dispatch; valid once running
	EndTime         float64   // clock at release; valid once completed
	ServerID        int       // server that served it; 0 while queued
	State           TaskState // queued, running, completed
}

// Wait returns the time spent in the waiting queue. Zero while queued.
func (t *Task) Wait() float64 {
	if t.State == TaskQueued {
		return 0
	}
	return t.StartTime - t.ArrivalTime
}

func (t Task) String() string {
	return fmt.Sprintf("Task: (ID: %d, State: %s, ArrivalTime: %g, ServiceDuration: %g)", t.ID, t.State, t.ArrivalTime, t.ServiceDuration)
}
