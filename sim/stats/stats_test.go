package stats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/queue-sim/sim"
	"github.com/inference-sim/queue-sim/sim/dist"
	"github.com/inference-sim/queue-sim/sim/internal/testutil"
	"github.com/inference-sim/queue-sim/sim/trace"
)

func runScripted(t *testing.T, numServers int, gaps, services []float64, numTasks int) *sim.Simulator {
	t.Helper()
	cfg := sim.Config{NumTasks: numTasks, NumServers: numServers, Drain: true}.WithSeed(1)
	s, err := sim.NewSimulatorFromSamplers(cfg, testutil.Sequence(gaps...), testutil.Sequence(services...))
	require.NoError(t, err)
	s.Run()
	return s
}

func TestCompute_ScenarioB_QueueLengthTrace(t *testing.T) {
	// GIVEN one server, arrivals every 1 and service of 5
	s := runScripted(t, 1, []float64{1}, []float64{5}, 3)

	// WHEN statistics are computed to the final clock
	r, err := Compute(s.EventLog(), 1, s.Clock)
	require.NoError(t, err)

	// THEN the step trace has the exact shape of the backlog
	want := []QueueLengthPoint{
		{Clock: 0, Length: 0},
		{Clock: 1, Length: 1},
		{Clock: 2, Length: 2},
		{Clock: 5, Length: 1},
		{Clock: 10, Length: 0},
	}
	assert.Equal(t, want, r.QueueLength)
	assert.Equal(t, 12.0, r.QueueLengthIntegral)
	assert.InDelta(t, 0.8, r.MeanQueueLength, 1e-12)
	assert.Equal(t, 2, r.MaxQueueLength)

	// THEN waits are 0, 4 and 8
	assert.Equal(t, 3, r.Wait.Count)
	assert.InDelta(t, 4.0, r.Wait.Mean, 1e-12)
	assert.Equal(t, 4.0, r.Wait.P50)
	assert.Equal(t, 8.0, r.Wait.Max)
	assert.InDelta(t, 5.0, r.Service.Mean, 1e-12)

	// THEN the single server was busy the whole run
	require.Len(t, r.Servers, 1)
	assert.Equal(t, 15.0, r.Servers[0].BusyTime)
	assert.Equal(t, 1.0, r.Utilization)
	assert.Equal(t, 3, r.Servers[0].TasksServed)

	// THEN Little's law holds exactly on a drained run
	assert.InDelta(t, r.Little.Lq, r.Little.LambdaWq, 1e-12)
}

func TestCompute_ScenarioA_NoBacklog(t *testing.T) {
	s := runScripted(t, 1, []float64{5}, []float64{3}, 3)

	r, err := Compute(s.EventLog(), 1, s.Clock)
	require.NoError(t, err)

	assert.Equal(t, []QueueLengthPoint{{Clock: 0, Length: 0}}, r.QueueLength)
	assert.Zero(t, r.QueueLengthIntegral)
	assert.Zero(t, r.Wait.Mean)
	assert.InDelta(t, 9.0/13.0, r.Utilization, 1e-12)
	assert.InDelta(t, 3.0/13.0, r.Throughput, 1e-12)
}

func TestCompute_BusyTailChargedToEndClock(t *testing.T) {
	// GIVEN a run stopped at the last admission with the server still busy
	cfg := sim.Config{NumTasks: 3, NumServers: 2}.WithSeed(1)
	s, err := sim.NewSimulatorFromSamplers(cfg, testutil.Sequence(1), testutil.Sequence(5))
	require.NoError(t, err)
	s.Run()

	// WHEN computed past the final clock
	r, err := Compute(s.EventLog(), 2, 4)
	require.NoError(t, err)

	// THEN busy intervals run up to the end clock
	assert.Equal(t, 4.0, r.Servers[0].BusyTime)
	assert.Equal(t, 3.0, r.Servers[1].BusyTime)
	assert.Equal(t, 0, r.Completed)
	assert.Equal(t, 3, r.Arrivals)
}

func TestCompute_InvalidInput(t *testing.T) {
	s := runScripted(t, 2, []float64{1}, []float64{1}, 4)

	tests := []struct {
		name       string
		numServers int
		end        float64
	}{
		{"zero servers", 0, s.Clock},
		{"end before last record", 2, s.Clock - 0.5},
		{"server id beyond table", 1, s.Clock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(s.EventLog(), tt.numServers, tt.end)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCompute_EmptyLog(t *testing.T) {
	empty, err := trace.FromRecords(nil)
	require.NoError(t, err)

	r, err := Compute(empty, 3, 0)
	require.NoError(t, err)
	assert.Zero(t, r.Arrivals)
	assert.Len(t, r.Servers, 3)
	assert.Zero(t, r.Utilization)
}

func TestErlangC_KnownValues(t *testing.T) {
	tests := []struct {
		name    string
		lambda  float64
		mu      float64
		c       int
		wantPW  float64
		wantLq  float64
		wantRho float64
	}{
		{"M/M/1", 1, 2, 1, 0.5, 0.5, 0.5},
		{"M/M/2", 2, 1.5, 2, 8.0 / 15.0, 16.0 / 15.0, 2.0 / 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ErlangC(tt.lambda, tt.mu, tt.c)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantPW, got.PWait, 1e-12)
			assert.InDelta(t, tt.wantLq, got.Lq, 1e-12)
			assert.InDelta(t, tt.wantRho, got.Rho, 1e-12)
			assert.InDelta(t, tt.wantLq/tt.lambda, got.Wq, 1e-12)
			assert.InDelta(t, tt.lambda*got.W, got.L, 1e-12)
		})
	}
}

func TestErlangC_Unstable(t *testing.T) {
	_, err := ErlangC(2, 1, 2)
	assert.ErrorIs(t, err, ErrUnstable)

	_, err = ErlangC(0, 1, 1)
	assert.Error(t, err)
}

func TestCompute_MM1_ConvergesToErlangC(t *testing.T) {
	// GIVEN an M/M/1 queue at rho = 0.5
	cfg := sim.Config{
		NumTasks:     50000,
		NumServers:   1,
		Interarrival: dist.Spec{Type: "exponential", Params: map[string]float64{"rate": 1}},
		Service:      dist.Spec{Type: "exponential", Params: map[string]float64{"rate": 2}},
		Drain:        true,
	}.WithSeed(42)
	s, err := sim.NewSimulator(cfg)
	require.NoError(t, err)
	s.Run()

	// WHEN compared with the analytic steady state
	r, err := Compute(s.EventLog(), 1, s.Clock)
	require.NoError(t, err)
	ref, err := ErlangC(1, 2, 1)
	require.NoError(t, err)

	// THEN the long-run averages are close
	assert.InEpsilon(t, ref.Wq, r.Wait.Mean, 0.1)
	assert.InEpsilon(t, ref.Lq, r.MeanQueueLength, 0.1)
	assert.InEpsilon(t, ref.Rho, r.Utilization, 0.05)
}

func TestReport_PrintAndSaveJSON(t *testing.T) {
	s := runScripted(t, 1, []float64{1}, []float64{5}, 3)
	r, err := Compute(s.EventLog(), 1, s.Clock)
	require.NoError(t, err)

	var sb strings.Builder
	r.Print(&sb)
	assert.Contains(t, sb.String(), "=== Simulation Metrics ===")
	assert.Contains(t, sb.String(), "Queue Length (max)   : 2")

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, r.SaveJSON(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var back Report
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r.QueueLength, back.QueueLength)
	assert.Equal(t, r.QueueLengthIntegral, back.QueueLengthIntegral)
}
