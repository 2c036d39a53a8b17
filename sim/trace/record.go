// Package trace provides the append-only event log of a queue simulation run.
// It has no dependencies on sim/ and stores pure data types.
package trace

import "fmt"

// SubjectKind names the kind of entity a Record is about.
type SubjectKind string

const (
	SubjectTask   SubjectKind = "task"
	SubjectServer SubjectKind = "server"
	SubjectQueue  SubjectKind = "queue"
)

// EventKind names the state transition a Record captures.
type EventKind string

const (
	EventArrival EventKind = "arrival"
	EventStart   EventKind = "start"
	EventEnd     EventKind = "end"
	EventEngage  EventKind = "engage"
	EventRelease EventKind = "release"
	EventEnqueue EventKind = "enqueue"
	EventDequeue EventKind = "dequeue"
)

// validEvents maps each subject kind to the event kinds it may emit.
var validEvents = map[SubjectKind]map[EventKind]bool{
	SubjectTask:   {EventArrival: true, EventStart: true, EventEnd: true},
	SubjectServer: {EventEngage: true, EventRelease: true},
	SubjectQueue:  {EventEnqueue: true, EventDequeue: true},
}

// IsValidPair reports whether event is a legal transition for subject.
func IsValidPair(subject SubjectKind, event EventKind) bool {
	return validEvents[subject][event]
}

// Record captures a single state transition.
//
// ID is the subject's id; queue records carry the id of the task entering or
// leaving the queue. Ref is the counterpart of the transition: the task a
// server engaged or released, the server a task started or ended on, and the
// task for queue records. Arrivals have Ref 0.
type Record struct {
	Seq     int         `json:"seq"`
	Clock   float64     `json:"clock"`
	Subject SubjectKind `json:"subject"`
	ID      int         `json:"id"`
	Event   EventKind   `json:"event"`
	Ref     int         `json:"ref"`
}

func (r Record) String() string {
	return fmt.Sprintf("#%d [%g] %s %d %s (ref %d)", r.Seq, r.Clock, r.Subject, r.ID, r.Event, r.Ref)
}
