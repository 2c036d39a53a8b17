package stats

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Print writes a human-readable summary of r to w.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Servers              : %d\n", r.NumServers)
	fmt.Fprintf(w, "End Clock            : %.4f\n", r.EndClock)
	fmt.Fprintf(w, "Arrivals / Completed : %d / %d\n", r.Arrivals, r.Completed)
	if r.Started > 0 {
		fmt.Fprintf(w, "Wait (mean/p50/p99)  : %.4f / %.4f / %.4f\n", r.Wait.Mean, r.Wait.P50, r.Wait.P99)
	}
	if r.Completed > 0 {
		fmt.Fprintf(w, "System (mean/p99)    : %.4f / %.4f\n", r.System.Mean, r.System.P99)
		fmt.Fprintf(w, "Service (mean)       : %.4f\n", r.Service.Mean)
	}
	fmt.Fprintf(w, "Queue Length (mean)  : %.4f\n", r.MeanQueueLength)
	fmt.Fprintf(w, "Queue Length (max)   : %d\n", r.MaxQueueLength)
	fmt.Fprintf(w, "Utilization          : %.4f\n", r.Utilization)
	for _, s := range r.Servers {
		fmt.Fprintf(w, "  server %-4d        : %.4f (%d tasks)\n", s.ID, s.Utilization, s.TasksServed)
	}
	fmt.Fprintf(w, "Throughput           : %.4f tasks/unit\n", r.Throughput)
	fmt.Fprintf(w, "Little's Law Lq      : %.4f vs lambda*Wq %.4f\n", r.Little.Lq, r.Little.LambdaWq)
}

// PrintComparison writes the simulated values next to an analytic reference.
func (r *Report) PrintComparison(w io.Writer, ref Analytic) {
	fmt.Fprintln(w, "=== M/M/c Reference ===")
	fmt.Fprintf(w, "Wq  simulated %.4f   analytic %.4f\n", r.Wait.Mean, ref.Wq)
	fmt.Fprintf(w, "Lq  simulated %.4f   analytic %.4f\n", r.MeanQueueLength, ref.Lq)
	fmt.Fprintf(w, "rho simulated %.4f   analytic %.4f\n", r.Utilization, ref.Rho)
}

// SaveJSON writes r to path as indented JSON.
func (r *Report) SaveJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	logrus.Infof("Report written to %s", path)
	return nil
}
