package sim

import "fmt"

// ServerState is either Idle or Busy.
type ServerState string

const (
	ServerIdle ServerState = "idle"
	ServerBusy ServerState = "busy"
)

// Server is one unit of service capacity.
//
// While Idle only IdleAccum is meaningful; while Busy only ReleaseTime and
// Task are. Engage and Release keep the unused pair zeroed.
type Server struct {
	ID          int
	State       ServerState
	IdleAccum   float64 // idle time since start or since the last release
	ReleaseTime float64 // clock at which the current task completes
	Task        *Task   // task in service
}

func (s Server) String() string {
	if s.State == ServerBusy {
		return fmt.Sprintf("Server: (ID: %d, busy until %g with task %d)", s.ID, s.ReleaseTime, s.Task.ID)
	}
	return fmt.Sprintf("Server: (ID: %d, idle for %g)", s.ID, s.IdleAccum)
}

// ServerPool is a fixed array of servers indexed by id-1. Servers are
// created once, Idle with zero accumulated idle time, and never destroyed.
//
// Selection is a linear pass over the pool; ties break on the lowest id.
type ServerPool struct {
	servers []*Server
}

// NewServerPool creates n idle servers with ids 1..n.
func NewServerPool(n int) *ServerPool {
	if n <= 0 {
		panic(fmt.Sprintf("NewServerPool: n must be positive, got %d", n))
	}
	p := &ServerPool{servers: make([]*Server, n)}
	for i := range p.servers {
		p.servers[i] = &Server{ID: i + 1, State: ServerIdle}
	}
	return p
}

// Len returns the number of servers.
func (p *ServerPool) Len() int {
	return len(p.servers)
}

// Get returns the server with the given id (1-based).
func (p *ServerPool) Get(id int) *Server {
	return p.servers[id-1]
}

// Servers returns a snapshot copy of every server, ordered by id.
func (p *ServerPool) Servers() []Server {
	out := make([]Server, len(p.servers))
	for i, s := range p.servers {
		out[i] = *s
	}
	return out
}

// PickIdlest returns the idle server with the largest IdleAccum, lowest id on
// ties, or nil when every server is busy.
func (p *ServerPool) PickIdlest() *Server {
	var best *Server
	for _, s := range p.servers {
		if s.State != ServerIdle {
			continue
		}
		if best == nil || s.IdleAccum > best.IdleAccum {
			best = s
		}
	}
	return best
}

// PickSoonestRelease returns the busy server with the smallest ReleaseTime,
// lowest id on ties, or nil when every server is idle.
func (p *ServerPool) PickSoonestRelease() *Server {
	var best *Server
	for _, s := range p.servers {
		if s.State != ServerBusy {
			continue
		}
		if best == nil || s.ReleaseTime < best.ReleaseTime {
			best = s
		}
	}
	return best
}

// Engage assigns task to an idle server at clock. Panics if s is busy.
func (p *ServerPool) Engage(s *Server, task *Task, clock float64) {
	if s.State != ServerIdle {
		panic(fmt.Sprintf("Engage: server %d is %s", s.ID, s.State))
	}
	s.State = ServerBusy
	s.IdleAccum = 0
	s.ReleaseTime = clock + task.ServiceDuration
	s.Task = task

	task.State = TaskRunning
	task.StartTime = clock
	task.ServerID = s.ID
}

// Release frees a busy server whose release time is clock and returns the
// completed task. Panics on any other clock.
func (p *ServerPool) Release(s *Server, clock float64) *Task {
	if s.State != ServerBusy {
		panic(fmt.Sprintf("Release: server %d is %s", s.ID, s.State))
	}
	if s.ReleaseTime != clock {
		panic(fmt.Sprintf("Release: server %d releases at %g, not %g", s.ID, s.ReleaseTime, clock))
	}
	task := s.Task
	task.State = TaskCompleted
	task.EndTime = clock

	s.State = ServerIdle
	s.IdleAccum = 0
	s.ReleaseTime = 0
	s.Task = nil
	return task
}

// AdvanceIdle credits jump to every idle server.
func (p *ServerPool) AdvanceIdle(jump float64) {
	for _, s := range p.servers {
		if s.State == ServerIdle {
			s.IdleAccum += jump
		}
	}
}

// Counts returns the number of idle and busy servers.
func (p *ServerPool) Counts() (idle, busy int) {
	for _, s := range p.servers {
		if s.State == ServerIdle {
			idle++
		} else {
			busy++
		}
	}
	return idle, busy
}
