package trace

import (
	"fmt"
	"iter"
)

// Reader is read-only, emission-ordered access to an event log.
// Consumers downstream of the simulator (statistics, export, storage) only
// ever see this interface.
type Reader interface {
	Len() int
	At(i int) Record
	All() iter.Seq2[int, Record]
}

// EventLog is the append-only record of every state transition of a run.
// Records are immutable once appended; Seq is assigned on append.
type EventLog struct {
	records []Record
}

// NewEventLog creates an empty EventLog with room for capacity records.
func NewEventLog(capacity int) *EventLog {
	return &EventLog{records: make([]Record, 0, max(capacity, 0))}
}

// FromRecords rebuilds a read-only log from previously persisted records.
// Records must already be in emission order.
func FromRecords(records []Record) (Reader, error) {
	log := NewEventLog(len(records))
	prev := 0.0
	for i, r := range records {
		if r.Seq != i {
			return nil, fmt.Errorf("record %d has seq %d", i, r.Seq)
		}
		if !IsValidPair(r.Subject, r.Event) {
			return nil, fmt.Errorf("record %d: invalid transition %s/%s", i, r.Subject, r.Event)
		}
		if r.Clock < prev {
			return nil, fmt.Errorf("record %d: clock %g precedes %g", i, r.Clock, prev)
		}
		prev = r.Clock
		log.records = append(log.records, r)
	}
	return log, nil
}

// Append records a transition and returns the stored Record.
// Panics on an invalid subject/event pair or a clock that moves backwards.
func (l *EventLog) Append(clock float64, subject SubjectKind, id int, event EventKind, ref int) Record {
	if !IsValidPair(subject, event) {
		panic(fmt.Sprintf("Append: invalid transition %s/%s", subject, event))
	}
	if n := len(l.records); n > 0 && clock < l.records[n-1].Clock {
		panic(fmt.Sprintf("Append: clock %g precedes last record clock %g", clock, l.records[n-1].Clock))
	}
	r := Record{
		Seq:     len(l.records),
		Clock:   clock,
		Subject: subject,
		ID:      id,
		Event:   event,
		Ref:     ref,
	}
	l.records = append(l.records, r)
	return r
}

// Len returns the number of records.
func (l *EventLog) Len() int {
	return len(l.records)
}

// At returns the i-th record in emission order.
func (l *EventLog) At(i int) Record {
	return l.records[i]
}

// All iterates records in emission order.
func (l *EventLog) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		for i, r := range l.records {
			if !yield(i, r) {
				return
			}
		}
	}
}
