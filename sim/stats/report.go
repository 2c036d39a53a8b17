// Package stats derives run statistics from an event log: per-task timings,
// the time-weighted queue-length trace, per-server utilization and an
// Erlang-C reference for M/M/c comparison. It reads only trace records, so
// any log (live, exported or loaded from a store) can be analysed.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/queue-sim/sim/trace"
)

// ErrInvalidInput is returned when Compute's arguments disagree with the log.
var ErrInvalidInput = errors.New("invalid stats input")

// QueueLengthPoint starts a step of the queue-length trace: Length holds
// from Clock until the next point, or the end clock for the last one.
type QueueLengthPoint struct {
	Clock  float64 `json:"clock"`
	Length int     `json:"length"`
}

// ServerStats is the busy time of one server over [0, end clock].
type ServerStats struct {
	ID          int     `json:"id"`
	TasksServed int     `json:"tasks_served"`
	BusyTime    float64 `json:"busy_time"`
	Utilization float64 `json:"utilization"`
}

// LittlesLaw compares the time-averaged queue length with lambda*Wq.
// The two agree exactly on a drained run.
type LittlesLaw struct {
	Lq       float64 `json:"lq"`
	LambdaWq float64 `json:"lambda_wq"`
	RelErr   float64 `json:"rel_err"`
}

// Report is the statistical summary of one run.
type Report struct {
	NumServers int     `json:"num_servers"`
	EndClock   float64 `json:"end_clock"`
	Arrivals   int     `json:"arrivals"`
	Started    int     `json:"started"`
	Completed  int     `json:"completed"`

	Wait    Distribution `json:"wait"`    // start - arrival, started tasks
	System  Distribution `json:"system"`  // end - arrival, completed tasks
	Service Distribution `json:"service"` // end - start, completed tasks

	QueueLength         []QueueLengthPoint `json:"queue_length"`
	QueueLengthIntegral float64            `json:"queue_length_integral"`
	MeanQueueLength     float64            `json:"mean_queue_length"`
	MaxQueueLength      int                `json:"max_queue_length"`

	Servers     []ServerStats `json:"servers"`
	Utilization float64       `json:"utilization"` // mean over servers

	ArrivalRate float64    `json:"arrival_rate"`
	Throughput  float64    `json:"throughput"`
	Little      LittlesLaw `json:"littles_law"`
}

type taskTimes struct {
	arrival, start, end float64
	started, ended      bool
}

// Compute builds a Report from log over [0, endClock]. numServers sizes the
// per-server table; endClock is usually the simulator's final clock and must
// not precede the last record.
func Compute(log trace.Reader, numServers int, endClock float64) (*Report, error) {
	if numServers <= 0 {
		return nil, fmt.Errorf("%w: numServers must be positive, got %d", ErrInvalidInput, numServers)
	}
	if log == nil {
		return nil, fmt.Errorf("%w: nil log", ErrInvalidInput)
	}
	if n := log.Len(); n > 0 && log.At(n-1).Clock > endClock {
		return nil, fmt.Errorf("%w: end clock %g precedes last record at %g", ErrInvalidInput, endClock, log.At(n-1).Clock)
	}

	r := &Report{NumServers: numServers, EndClock: endClock}
	tasks := map[int]*taskTimes{}
	servers := make([]ServerStats, numServers)
	engagedAt := make([]float64, numServers)
	busy := make([]bool, numServers)
	for i := range servers {
		servers[i].ID = i + 1
	}

	qlen := 0
	points := []QueueLengthPoint{{Clock: 0, Length: 0}}
	cur := 0.0
	flush := func() {
		last := &points[len(points)-1]
		if qlen == last.Length {
			return
		}
		if last.Clock == cur {
			last.Length = qlen
			return
		}
		points = append(points, QueueLengthPoint{Clock: cur, Length: qlen})
	}

	for _, rec := range log.All() {
		if rec.Clock > cur {
			flush()
			cur = rec.Clock
		}
		switch rec.Subject {
		case trace.SubjectTask:
			tt := tasks[rec.ID]
			if tt == nil {
				tt = &taskTimes{}
				tasks[rec.ID] = tt
			}
			switch rec.Event {
			case trace.EventArrival:
				tt.arrival = rec.Clock
				r.Arrivals++
			case trace.EventStart:
				tt.start, tt.started = rec.Clock, true
			case trace.EventEnd:
				tt.end, tt.ended = rec.Clock, true
			}
		case trace.SubjectQueue:
			switch rec.Event {
			case trace.EventEnqueue:
				qlen++
			case trace.EventDequeue:
				qlen--
			}
		case trace.SubjectServer:
			if rec.ID < 1 || rec.ID > numServers {
				return nil, fmt.Errorf("%w: server %d outside 1..%d", ErrInvalidInput, rec.ID, numServers)
			}
			i := rec.ID - 1
			switch rec.Event {
			case trace.EventEngage:
				engagedAt[i], busy[i] = rec.Clock, true
			case trace.EventRelease:
				servers[i].BusyTime += rec.Clock - engagedAt[i]
				servers[i].TasksServed++
				busy[i] = false
			}
		}
	}
	flush()

	// servers still busy at the end are charged up to endClock
	for i := range servers {
		if busy[i] {
			servers[i].BusyTime += endClock - engagedAt[i]
		}
	}

	var waits, systems, services []float64
	ids := make([]int, 0, len(tasks))
	for id := range tasks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		tt := tasks[id]
		if tt.started {
			waits = append(waits, tt.start-tt.arrival)
		}
		if tt.ended {
			systems = append(systems, tt.end-tt.arrival)
			services = append(services, tt.end-tt.start)
		}
	}
	r.Started = len(waits)
	r.Completed = len(systems)
	r.Wait = NewDistribution(waits)
	r.System = NewDistribution(systems)
	r.Service = NewDistribution(services)

	r.QueueLength = points
	lengths := make([]float64, len(points))
	durations := make([]float64, len(points))
	for i, p := range points {
		next := endClock
		if i+1 < len(points) {
			next = points[i+1].Clock
		}
		lengths[i] = float64(p.Length)
		durations[i] = next - p.Clock
		r.QueueLengthIntegral += lengths[i] * durations[i]
		if p.Length > r.MaxQueueLength {
			r.MaxQueueLength = p.Length
		}
	}

	r.Servers = servers
	if endClock > 0 {
		r.MeanQueueLength = stat.Mean(lengths, durations)
		utils := make([]float64, len(servers))
		for i := range servers {
			servers[i].Utilization = servers[i].BusyTime / endClock
			utils[i] = servers[i].Utilization
		}
		r.Utilization = stat.Mean(utils, nil)
		r.ArrivalRate = float64(r.Arrivals) / endClock
		r.Throughput = float64(r.Completed) / endClock
	}

	r.Little = LittlesLaw{Lq: r.MeanQueueLength, LambdaWq: r.ArrivalRate * r.Wait.Mean}
	if r.Little.LambdaWq != 0 {
		r.Little.RelErr = math.Abs(r.Little.Lq-r.Little.LambdaWq) / r.Little.LambdaWq
	}
	return r, nil
}
