// Package testutil provides shared test infrastructure for the queue simulator.
// It consolidates scripted samplers and assertion helpers used across
// sim/ and its sub-package tests.
package testutil

import (
	"math"
	"math/rand"
	"testing"

	"github.com/inference-sim/queue-sim/sim/dist"
	"github.com/inference-sim/queue-sim/sim/trace"
)

// SequenceSampler replays a fixed list of values, cycling when exhausted.
// It ignores the rng so scenario tests can pin exact interarrival and
// service sequences.
type SequenceSampler struct {
	Values []float64
	next   int
}

// Sequence returns a SequenceSampler over values.
func Sequence(values ...float64) *SequenceSampler {
	if len(values) == 0 {
		panic("Sequence: at least one value required")
	}
	return &SequenceSampler{Values: values}
}

// Family reports Table, the closest family to a scripted value list.
func (s *SequenceSampler) Family() dist.Family { return dist.Table }

func (s *SequenceSampler) Sample(_ *rand.Rand) float64 {
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}

// Calls returns how many samples have been drawn.
func (s *SequenceSampler) Calls() int {
	return s.next
}

// Step is a compact view of a trace.Record used in scenario assertions.
type Step struct {
	Clock   float64
	Subject trace.SubjectKind
	ID      int
	Event   trace.EventKind
	Ref     int
}

// Steps flattens a log into Steps, dropping sequence numbers.
func Steps(r trace.Reader) []Step {
	out := make([]Step, 0, r.Len())
	for _, rec := range r.All() {
		out = append(out, Step{Clock: rec.Clock, Subject: rec.Subject, ID: rec.ID, Event: rec.Event, Ref: rec.Ref})
	}
	return out
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
