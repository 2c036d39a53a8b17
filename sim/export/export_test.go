package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/queue-sim/sim"
	"github.com/inference-sim/queue-sim/sim/dist"
	"github.com/inference-sim/queue-sim/sim/trace"
)

func runLog(t *testing.T, seed int64) trace.Reader {
	t.Helper()
	cfg := sim.Config{
		NumTasks:     50,
		NumServers:   2,
		Interarrival: dist.Spec{Type: "exponential", Params: map[string]float64{"rate": 1.3}},
		Service:      dist.Spec{Type: "lognormal", Params: map[string]float64{"mu": 0, "sigma": 0.5}},
		Drain:        true,
	}.WithSeed(seed)
	s, err := sim.NewSimulator(cfg)
	require.NoError(t, err)
	return s.Run()
}

func records(r trace.Reader) []trace.Record {
	out := make([]trace.Record, 0, r.Len())
	for _, rec := range r.All() {
		out = append(out, rec)
	}
	return out
}

func TestWriteJSONL_SameSeed_ByteIdentical(t *testing.T) {
	// GIVEN two runs with the same seed
	var a, b bytes.Buffer

	// WHEN both are exported
	require.NoError(t, WriteJSONL(&a, runLog(t, 9)))
	require.NoError(t, WriteJSONL(&b, runLog(t, 9)))

	// THEN the bytes match
	assert.Equal(t, a.Bytes(), b.Bytes())
	assert.Equal(t, runLog(t, 9).Len(), strings.Count(a.String(), "\n"))
}

func TestJSONL_RoundTrip_PreservesRecords(t *testing.T) {
	log := runLog(t, 3)
	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, log))

	got, err := ReadJSONL(&buf)
	require.NoError(t, err)
	assert.Equal(t, records(log), got)
}

func TestWriteJSONL_FieldNames(t *testing.T) {
	log := trace.NewEventLog(1)
	log.Append(0.25, trace.SubjectTask, 1, trace.EventArrival, 0)

	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, log))

	assert.Equal(t, `{"seq":0,"clock":0.25,"subject":"task","id":1,"event":"arrival","ref":0}`+"\n", buf.String())
}

func TestReadJSONL_Errors(t *testing.T) {
	_, err := ReadJSONL(strings.NewReader("{\"seq\":0}\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	got, err := ReadJSONL(strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCSV_RoundTrip_PreservesRecords(t *testing.T) {
	log := runLog(t, 5)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, log))
	assert.True(t, strings.HasPrefix(buf.String(), "seq,clock,subject,id,event,ref\n"))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, records(log), got)
}

func TestReadCSV_BadHeaderOrRow(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b,c,d,e,f\n"))
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("seq,clock,subject,id,event,ref\n0,x,task,1,arrival,0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clock")
}

func TestWriteFile_ReadFile_ByExtension(t *testing.T) {
	log := runLog(t, 11)
	dir := t.TempDir()

	for _, name := range []string{"events.jsonl", "events.csv"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, log))

			back, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, records(log), records(back))
		})
	}

	csvBytes, err := os.ReadFile(filepath.Join(dir, "events.csv"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(csvBytes, []byte("seq,")))
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatCSV, FormatFor("out/EVENTS.CSV"))
	assert.Equal(t, FormatJSONL, FormatFor("events.jsonl"))
	assert.Equal(t, FormatJSONL, FormatFor("events"))
}
