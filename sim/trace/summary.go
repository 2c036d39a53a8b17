package trace

// Transition is a (subject, event) pair used as a summary key.
type Transition struct {
	Subject SubjectKind
	Event   EventKind
}

// Summary aggregates counts from an event log.
type Summary struct {
	TotalRecords int
	FirstClock   float64
	LastClock    float64
	Counts       map[Transition]int
	Tasks        int // distinct tasks that arrived
	Completed    int // tasks that reached end
}

// Count returns how many records carry the given transition.
func (s *Summary) Count(subject SubjectKind, event EventKind) int {
	return s.Counts[Transition{Subject: subject, Event: event}]
}

// Summarize computes aggregate counts from a log.
// Safe for nil or empty logs (returns zero-value fields).
func Summarize(r Reader) *Summary {
	summary := &Summary{
		Counts: make(map[Transition]int),
	}
	if r == nil || r.Len() == 0 {
		return summary
	}

	summary.TotalRecords = r.Len()
	summary.FirstClock = r.At(0).Clock
	summary.LastClock = r.At(r.Len() - 1).Clock
	for _, rec := range r.All() {
		summary.Counts[Transition{Subject: rec.Subject, Event: rec.Event}]++
	}
	summary.Tasks = summary.Count(SubjectTask, EventArrival)
	summary.Completed = summary.Count(SubjectTask, EventEnd)

	return summary
}
