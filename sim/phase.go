package sim

// Phase is the event loop's current state.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseAdmittingArrival
	PhaseDrainingQueue
	PhaseAdvancingClock
	PhaseReleasingServers
	PhaseUpdatingIdle
	PhaseTerminated
)

var phaseNames = [...]string{
	PhaseInitializing:     "initializing",
	PhaseAdmittingArrival: "admitting-arrival",
	PhaseDrainingQueue:    "draining-queue",
	PhaseAdvancingClock:   "advancing-clock",
	PhaseReleasingServers: "releasing-servers",
	PhaseUpdatingIdle:     "updating-idle",
	PhaseTerminated:       "terminated",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}
