package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/queue-sim/sim"
	"github.com/inference-sim/queue-sim/sim/dist"
	"github.com/inference-sim/queue-sim/sim/export"
	"github.com/inference-sim/queue-sim/sim/store"
)

// newTestRunCmd returns a fresh command carrying the run flags, so Changed
// state does not leak between tests.
func newTestRunCmd(t *testing.T) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "run"}
	registerRunFlags(c)
	registerSingleRunFlags(c)
	t.Cleanup(func() { configPath = "" })
	return c
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseRunConfig_OverridesDefaults(t *testing.T) {
	// GIVEN a run file setting every field
	data := []byte(`
num_tasks: 50
num_servers: 3
seed: 7
drain: false
interarrival:
  type: gamma
  params: {shape: 2, scale: 0.5}
service:
  type: table
  params: {"1": 0.5, "2": 0.5}
`)

	// WHEN parsed
	cfg, err := parseRunConfig(data)

	// THEN every field is taken from the file, and maps are not merged with defaults
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.NumTasks)
	assert.Equal(t, 3, cfg.NumServers)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(7), *cfg.Seed)
	assert.False(t, cfg.Drain)
	assert.Equal(t, dist.Spec{Type: "gamma", Params: map[string]float64{"shape": 2, "scale": 0.5}}, cfg.Interarrival)
	assert.Equal(t, map[string]float64{"1": 0.5, "2": 0.5}, cfg.Service.Params)
}

func TestParseRunConfig_PartialFile_KeepsDefaults(t *testing.T) {
	cfg, err := parseRunConfig([]byte("num_servers: 2\n"))
	require.NoError(t, err)

	want := defaultConfig()
	want.NumServers = 2
	assert.Equal(t, want, cfg)
	assert.Nil(t, cfg.Seed)
	assert.True(t, cfg.Drain)
}

func TestParseRunConfig_UnknownField_Rejected(t *testing.T) {
	// GIVEN a typo in a key
	_, err := parseRunConfig([]byte("num_server: 2\n"))

	// THEN strict parsing fails
	assert.Error(t, err)
}

func TestBuildConfig_FlagsOverrideOnlyWhenChanged(t *testing.T) {
	// GIVEN a run file with 4 servers and seed 9
	c := newTestRunCmd(t)
	configPath = writeFile(t, "run.yaml", "num_servers: 4\nseed: 9\nnum_tasks: 20\n")

	// WHEN only --ntask and --arrival are set on the command line
	require.NoError(t, c.Flags().Set("ntask", "7"))
	require.NoError(t, c.Flags().Set("arrival", "uniform:min=1,max=2"))
	cfg, err := buildConfig(c)

	// THEN set flags win and untouched flags leave the file values alone
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.NumTasks)
	assert.Equal(t, 4, cfg.NumServers)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(9), *cfg.Seed)
	assert.Equal(t, "uniform", cfg.Interarrival.Type)
	assert.Equal(t, defaultConfig().Service, cfg.Service)
}

func TestBuildConfig_SeedFlag_OverridesFile(t *testing.T) {
	c := newTestRunCmd(t)
	configPath = writeFile(t, "run.yaml", "seed: 9\n")
	require.NoError(t, c.Flags().Set("seed", "100"))

	cfg, err := buildConfig(c)

	require.NoError(t, err)
	assert.Equal(t, int64(100), *cfg.Seed)
}

func TestBuildConfig_MalformedSpec(t *testing.T) {
	c := newTestRunCmd(t)
	require.NoError(t, c.Flags().Set("service", "gamma:shape"))

	_, err := buildConfig(c)

	assert.ErrorIs(t, err, dist.ErrInvalidSpec)
}

func smallConfig() sim.Config {
	cfg := defaultConfig()
	cfg.NumTasks = 200
	return cfg
}

func TestRunSweep_DeterministicRowOrder(t *testing.T) {
	// GIVEN a 2x2 grid
	servers := []int{2, 1}
	seeds := []int64{5, 6}

	// WHEN swept in parallel and sequentially
	parallel, err := runSweep(context.Background(), smallConfig(), servers, seeds, 4)
	require.NoError(t, err)
	sequential, err := runSweep(context.Background(), smallConfig(), servers, seeds, 1)
	require.NoError(t, err)

	// THEN rows follow the input order and do not depend on scheduling
	require.Len(t, parallel, 4)
	assert.Equal(t, sequential, parallel)
	order := [][2]int64{{2, 5}, {2, 6}, {1, 5}, {1, 6}}
	for i, row := range parallel {
		assert.Equal(t, order[i], [2]int64{int64(row.NumServers), row.Seed})
		assert.Equal(t, 200, row.Completed)
	}
}

func TestRunSweep_InvalidServerCount(t *testing.T) {
	_, err := runSweep(context.Background(), smallConfig(), []int{1, 0}, []int64{1}, 2)
	assert.ErrorIs(t, err, sim.ErrInvalidConfig)

	_, err = runSweep(context.Background(), smallConfig(), nil, []int64{1}, 2)
	assert.Error(t, err)
}

func TestPrintSweep_Header(t *testing.T) {
	var buf bytes.Buffer
	printSweep(&buf, []sweepRow{{NumServers: 1, Seed: 2}})
	assert.Contains(t, buf.String(), "nserv")
	assert.Contains(t, buf.String(), "throughput")
}

func TestWriteOutputs_WritesRequestedArtifacts(t *testing.T) {
	// GIVEN a finished M/M/1 run
	cfg := smallConfig().WithSeed(3)
	s, err := sim.NewSimulator(cfg)
	require.NoError(t, err)
	s.Run()
	dir := t.TempDir()
	opts := outputOptions{
		eventsOut:   filepath.Join(dir, "events.csv"),
		resultsPath: filepath.Join(dir, "report.json"),
	}

	// WHEN outputs are written
	var buf bytes.Buffer
	require.NoError(t, writeOutputs(context.Background(), &buf, cfg, s, opts))

	// THEN the report, the analytic reference and both files exist
	assert.Contains(t, buf.String(), "=== Simulation Metrics ===")
	assert.Contains(t, buf.String(), "=== M/M/c Reference ===")
	assert.Contains(t, buf.String(), "Seed                 : 3")
	assert.FileExists(t, opts.resultsPath)

	back, err := export.ReadFile(opts.eventsOut)
	require.NoError(t, err)
	assert.Equal(t, s.EventLog().Len(), back.Len())
}

func TestMMCReference_OnlyForExponentialPairs(t *testing.T) {
	_, ok := mmcReference(defaultConfig())
	assert.True(t, ok)

	cfg := defaultConfig()
	cfg.Service = dist.Spec{Type: "uniform", Params: map[string]float64{"min": 0, "max": 1}}
	_, ok = mmcReference(cfg)
	assert.False(t, ok)

	// unstable load
	cfg = defaultConfig()
	cfg.Service.Params = map[string]float64{"rate": 0.5}
	_, ok = mmcReference(cfg)
	assert.False(t, ok)
}

func TestSaveToStore_UnknownDriver(t *testing.T) {
	_, err := saveToStore(context.Background(), "mysql", "dsn", storeMeta(), nil)
	assert.ErrorContains(t, err, "unknown store driver")
}

func storeMeta() store.RunMeta {
	return store.RunMeta{Label: "test"}
}
