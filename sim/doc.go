// Package sim provides the discrete-event engine for a G/G/c FIFO queue.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - task.go: Task lifecycle (queued → running → completed)
//   - server.go: ServerPool and its two selection rules (idlest, soonest release)
//   - simulator.go: the event loop that interleaves arrivals, dispatches and releases
//
// # Architecture
//
// The engine owns all mutable state and is the only writer of the event log.
// Collaborators live in sub-packages:
//   - sim/dist/: interarrival and service time samplers
//   - sim/trace/: the append-only event log and its read-only view
//   - sim/stats/: waiting times, queue-length integral, utilization
//   - sim/export/: JSON Lines and CSV encodings of an event log
//   - sim/store/: Postgres persistence of runs
//
// A run is fully determined by (seed, tasks, servers, distribution specs):
// the interarrival and service samplers draw from isolated streams derived
// from one seed (see rng.go), each exactly once per task.
package sim
