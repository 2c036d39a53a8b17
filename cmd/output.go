package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the "postgres" driver for sqlx
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/queue-sim/sim"
	"github.com/inference-sim/queue-sim/sim/dist"
	"github.com/inference-sim/queue-sim/sim/export"
	"github.com/inference-sim/queue-sim/sim/stats"
	"github.com/inference-sim/queue-sim/sim/store"
	"github.com/inference-sim/queue-sim/sim/trace"
)

// outputOptions selects where a finished run is written.
type outputOptions struct {
	eventsOut   string
	resultsPath string
	storeDSN    string
	storeDriver string
	label       string
}

// writeOutputs prints the report to w and writes every requested artifact.
func writeOutputs(ctx context.Context, w io.Writer, cfg sim.Config, s *sim.Simulator, opts outputOptions) error {
	log := s.EventLog()

	summary := trace.Summarize(log)
	logrus.Infof("Event log: %d records over [%g, %g], %d tasks, %d completed",
		summary.TotalRecords, summary.FirstClock, summary.LastClock, summary.Tasks, summary.Completed)

	report, err := stats.Compute(log, cfg.NumServers, s.Clock)
	if err != nil {
		return err
	}
	report.Print(w)
	if ref, ok := mmcReference(cfg); ok {
		report.PrintComparison(w, ref)
	}
	fmt.Fprintf(w, "Seed                 : %d\n", s.Seed())

	if opts.resultsPath != "" {
		if err := report.SaveJSON(opts.resultsPath); err != nil {
			return err
		}
	}
	if opts.eventsOut != "" {
		if err := export.WriteFile(opts.eventsOut, log); err != nil {
			return err
		}
	}
	if opts.storeDSN != "" {
		meta := store.RunMeta{Label: opts.label, Config: cfg.WithSeed(s.Seed()), Seed: s.Seed(), EndClock: s.Clock}
		runID, err := saveToStore(ctx, opts.storeDriver, opts.storeDSN, meta, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Run ID               : %s\n", runID)
	}
	return nil
}

// mmcReference returns the Erlang-C steady state when both distributions are
// exponential and the queue is stable.
func mmcReference(cfg sim.Config) (stats.Analytic, bool) {
	lambda, ok := exponentialRate(cfg.Interarrival)
	if !ok {
		return stats.Analytic{}, false
	}
	mu, ok := exponentialRate(cfg.Service)
	if !ok {
		return stats.Analytic{}, false
	}
	ref, err := stats.ErlangC(lambda, mu, cfg.NumServers)
	if err != nil {
		logrus.Warnf("No M/M/c reference: %v", err)
		return stats.Analytic{}, false
	}
	return ref, true
}

func exponentialRate(spec dist.Spec) (float64, bool) {
	f, err := dist.ParseFamily(spec.Type)
	if err != nil || f != dist.Exponential {
		return 0, false
	}
	rate, ok := spec.Params["rate"]
	return rate, ok
}

// saveToStore opens the requested driver, ensures the schema and saves the run.
func saveToStore(ctx context.Context, driver, dsn string, meta store.RunMeta, log trace.Reader) (string, error) {
	var (
		st      *store.Store
		err     error
		closeDB func()
	)
	switch driver {
	case "pgx":
		pool, poolErr := pgxpool.New(ctx, dsn)
		if poolErr != nil {
			return "", fmt.Errorf("connect to store: %w", poolErr)
		}
		closeDB = pool.Close
		st, err = store.NewStoreFromPGXPool(pool)
	case "sqlx":
		db, dbErr := sqlx.ConnectContext(ctx, "postgres", dsn)
		if dbErr != nil {
			return "", fmt.Errorf("connect to store: %w", dbErr)
		}
		closeDB = func() { _ = db.Close() }
		st, err = store.NewStoreFromSQLX(db)
	default:
		return "", fmt.Errorf("unknown store driver %q (want pgx or sqlx)", driver)
	}
	defer closeDB()
	if err != nil {
		return "", err
	}

	if err := st.CreateSchema(ctx); err != nil {
		return "", err
	}
	runID, err := st.SaveRun(ctx, meta, log)
	if err != nil {
		return "", err
	}
	return runID.String(), nil
}
