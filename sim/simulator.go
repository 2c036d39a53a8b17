// sim/simulator.go
package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/queue-sim/sim/dist"
	"github.com/inference-sim/queue-sim/sim/trace"
)

// Simulator is the core object that holds simulation time, system state, and the event loop.
type Simulator struct {
	Clock    float64
	NumTasks int
	// Servers holds every server; it is created once and never resized.
	Servers *ServerPool
	// WaitQ aka task waiting queue before dispatch
	WaitQ *WaitingQueue
	// Completed counts released tasks.
	Completed int

	drain        bool
	phase        Phase
	rng          *PartitionedRNG
	interarrival dist.Sampler
	service      dist.Sampler
	iatRNG       *rand.Rand
	svcRNG       *rand.Rand
	log          *trace.EventLog
	lastTaskID   int
}

// NewSimulator validates cfg, builds both samplers and returns a simulator
// ready to Run. Every configuration error surfaces here, before any event is
// generated.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	interarrival, err := dist.New(cfg.Interarrival)
	if err != nil {
		return nil, fmt.Errorf("interarrival distribution: %w", err)
	}
	service, err := dist.New(cfg.Service)
	if err != nil {
		return nil, fmt.Errorf("service distribution: %w", err)
	}
	return NewSimulatorFromSamplers(cfg, interarrival, service)
}

// NewSimulatorFromSamplers is NewSimulator with caller-supplied samplers;
// cfg's distribution specs are ignored.
func NewSimulatorFromSamplers(cfg Config, interarrival, service dist.Sampler) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if interarrival == nil || service == nil {
		return nil, fmt.Errorf("%w: both samplers are required", ErrInvalidConfig)
	}

	var key SimulationKey
	if cfg.Seed != nil {
		key = NewSimulationKey(*cfg.Seed)
	} else {
		key = NewRandomSimulationKey()
		logrus.Infof("No seed configured; using seed %d", int64(key))
	}
	rng := NewPartitionedRNG(key)

	s := &Simulator{
		Clock:        0,
		NumTasks:     cfg.NumTasks,
		Servers:      NewServerPool(cfg.NumServers),
		WaitQ:        &WaitingQueue{},
		drain:        cfg.Drain,
		phase:        PhaseInitializing,
		rng:          rng,
		interarrival: interarrival,
		service:      service,
		iatRNG:       rng.ForSubsystem(SubsystemInterarrival),
		svcRNG:       rng.ForSubsystem(SubsystemService),
		// arrival+enqueue, dequeue+engage+start, release+end
		log: trace.NewEventLog(7 * cfg.NumTasks),
	}
	logrus.Infof("Simulator ready: %d tasks, %d servers, seed %d, drain=%v", cfg.NumTasks, cfg.NumServers, int64(key), cfg.Drain)
	return s, nil
}

// Seed returns the seed the run's streams were derived from.
func (sim *Simulator) Seed() int64 {
	return int64(sim.rng.Key())
}

// Phase returns the loop's current state.
func (sim *Simulator) Phase() Phase {
	return sim.phase
}

// EventLog returns a read-only view of the records emitted so far.
func (sim *Simulator) EventLog() trace.Reader {
	return sim.log
}

// Run executes the whole simulation and returns the finalized event log.
// Calling Run again after termination returns the same log.
//
// The first task arrives at clock 0. For each task the interarrival gap is
// sampled before the service duration; the gap separates this task from the
// next one. Between arrivals the loop alternates dispatch, a clock jump to the
// sooner of the next release and the next arrival, releases due at that
// instant, and idle-time crediting.
func (sim *Simulator) Run() trace.Reader {
	if sim.phase == PhaseTerminated {
		return sim.log
	}

	nextArrival := 0.0
	for i := 0; i < sim.NumTasks; i++ {
		gap := sim.interarrival.Sample(sim.iatRNG)
		service := sim.service.Sample(sim.svcRNG)
		requireDuration("interarrival", i+1, gap)
		requireDuration("service", i+1, service)

		sim.advanceTo(nextArrival)
		sim.admit(service)
		nextArrival = sim.Clock + gap
	}
	if sim.drain {
		sim.advanceTo(math.Inf(1))
	}

	sim.setPhase(PhaseTerminated)
	logrus.Infof("[clock %.6f] Simulation ended: %d records, %d completed, %d queued", sim.Clock, sim.log.Len(), sim.Completed, sim.WaitQ.Len())
	return sim.log
}

// requireDuration panics on a sample outside [0, +Inf).
func requireDuration(kind string, taskID int, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		panic(fmt.Sprintf("Run: %s sampler returned %v for task %d", kind, v, taskID))
	}
}

// advanceTo runs inner steps until the clock reaches target. With an
// infinite target it stops once nothing is queued or in service.
//
// Releases that land exactly on target are processed, and the servers they
// free are offered to already-waiting tasks, before control returns to the
// caller that admits the arrival at target.
func (sim *Simulator) advanceTo(target float64) {
	for sim.Clock < target {
		sim.setPhase(PhaseDrainingQueue)
		sim.dispatch()

		sim.setPhase(PhaseAdvancingClock)
		next := target
		if s := sim.Servers.PickSoonestRelease(); s != nil && s.ReleaseTime < next {
			next = s.ReleaseTime
		}
		if math.IsInf(next, 1) {
			return
		}
		jump := next - sim.Clock
		sim.Clock = next
		logrus.Tracef("[clock %.6f] advanced by %.6f", sim.Clock, jump)

		sim.setPhase(PhaseReleasingServers)
		sim.releaseDue()

		// servers freed at this instant are credited with the jump as well
		sim.setPhase(PhaseUpdatingIdle)
		sim.Servers.AdvanceIdle(jump)
	}
	sim.setPhase(PhaseDrainingQueue)
	sim.dispatch()
}

// dispatch moves waiting tasks onto the idlest servers until the queue
// empties or no server is idle.
func (sim *Simulator) dispatch() {
	for sim.WaitQ.Len() > 0 {
		server := sim.Servers.PickIdlest()
		if server == nil {
			return
		}
		task, err := sim.WaitQ.DequeueOldest()
		if err != nil {
			panic(err)
		}
		sim.log.Append(sim.Clock, trace.SubjectQueue, task.ID, trace.EventDequeue, task.ID)
		sim.engage(server, task)
	}
}

func (sim *Simulator) engage(server *Server, task *Task) {
	sim.Servers.Engage(server, task, sim.Clock)
	sim.log.Append(sim.Clock, trace.SubjectServer, server.ID, trace.EventEngage, task.ID)
	sim.log.Append(sim.Clock, trace.SubjectTask, task.ID, trace.EventStart, server.ID)
	logrus.Debugf("[clock %.6f] server %d engaged task %d until %.6f", sim.Clock, server.ID, task.ID, server.ReleaseTime)
}

// releaseDue releases every busy server whose release time equals the clock,
// in id order.
func (sim *Simulator) releaseDue() {
	for {
		server := sim.Servers.PickSoonestRelease()
		if server == nil || server.ReleaseTime != sim.Clock {
			return
		}
		task := sim.Servers.Release(server, sim.Clock)
		sim.Completed++
		sim.log.Append(sim.Clock, trace.SubjectServer, server.ID, trace.EventRelease, task.ID)
		sim.log.Append(sim.Clock, trace.SubjectTask, task.ID, trace.EventEnd, server.ID)
		logrus.Debugf("[clock %.6f] server %d released task %d", sim.Clock, server.ID, task.ID)
	}
}

// admit creates the next task at the current clock and queues it.
func (sim *Simulator) admit(service float64) {
	sim.setPhase(PhaseAdmittingArrival)
	sim.lastTaskID++
	task := &Task{
		ID:              sim.lastTaskID,
		ArrivalTime:     sim.Clock,
		ServiceDuration: service,
	}
	sim.log.Append(sim.Clock, trace.SubjectTask, task.ID, trace.EventArrival, 0)
	sim.WaitQ.Enqueue(task, sim.Clock)
	sim.log.Append(sim.Clock, trace.SubjectQueue, task.ID, trace.EventEnqueue, task.ID)
	logrus.Debugf("[clock %.6f] task %d arrived (service %.6f, queue length %d)", sim.Clock, task.ID, service, sim.WaitQ.Len())
}

func (sim *Simulator) setPhase(p Phase) {
	sim.phase = p
}
