package cmd

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/queue-sim/sim"
	"github.com/inference-sim/queue-sim/sim/dist"
)

var (
	// CLI flags for the run configuration
	configPath  string // YAML run file; flags below override it when set
	numTasks    int    // Number of tasks to admit
	numServers  int    // Number of servers
	seed        int64  // Seed for the interarrival and service streams
	arrivalSpec string // Interarrival distribution, compact form
	serviceSpec string // Service distribution, compact form
	drain       bool   // Keep running after the last arrival until empty
	logLevel    string // Log verbosity level

	// CLI flags for outputs
	eventsOut   string // Event log file (.jsonl or .csv)
	resultsPath string // Report JSON file
	storeDSN    string // Postgres DSN; empty disables the store
	storeDriver string // pgx or sqlx
	runLabel    string // Label stored with the run
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "queue-sim",
	Short: "Discrete-event simulator for multi-server FIFO queues",
}

// runCmd executes one simulation using the run file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one queue simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)

		cfg, err := buildConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Starting simulation: %d tasks, %d servers, interarrival %s, service %s",
			cfg.NumTasks, cfg.NumServers, cfg.Interarrival, cfg.Service)

		startTime := time.Now()
		s, err := sim.NewSimulator(cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		s.Run()
		logrus.Infof("Simulation finished in %s", time.Since(startTime))

		out := outputOptions{
			eventsOut:   eventsOut,
			resultsPath: resultsPath,
			storeDSN:    storeDSN,
			storeDriver: storeDriver,
			label:       runLabel,
		}
		if err := writeOutputs(context.Background(), os.Stdout, cfg, s, out); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// setLogLevel applies a --log value or exits.
func setLogLevel(name string) {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", name)
	}
	logrus.SetLevel(level)
}

// buildConfig loads --config if given and applies every flag the user set.
// Unset flags never override the file.
func buildConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := defaultConfig()
	if configPath != "" {
		loaded, err := loadRunConfig(configPath)
		if err != nil {
			return sim.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("ntask") {
		cfg.NumTasks = numTasks
	}
	if flags.Changed("nserv") {
		cfg.NumServers = numServers
	}
	if flags.Changed("seed") {
		cfg = cfg.WithSeed(seed)
	}
	if flags.Changed("drain") {
		cfg.Drain = drain
	}
	if flags.Changed("arrival") {
		spec, err := dist.ParseSpec(arrivalSpec)
		if err != nil {
			return sim.Config{}, err
		}
		cfg.Interarrival = spec
	}
	if flags.Changed("service") {
		spec, err := dist.ParseSpec(serviceSpec)
		if err != nil {
			return sim.Config{}, err
		}
		cfg.Service = spec
	}
	return cfg, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerRunFlags adds the flags shared by run and sweep.
func registerRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configPath, "config", "", "YAML run configuration file")
	cmd.Flags().IntVar(&numTasks, "ntask", 100, "Number of tasks")
	cmd.Flags().StringVar(&arrivalSpec, "arrival", "exponential:rate=1", "Interarrival distribution, e.g. exponential:rate=1")
	cmd.Flags().StringVar(&serviceSpec, "service", "exponential:rate=1.25", "Service distribution, e.g. gamma:shape=2,scale=0.4")
	cmd.Flags().BoolVar(&drain, "drain", true, "Keep running after the last arrival until every task completes")
	cmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
}

// registerSingleRunFlags adds the flags sweep replaces with lists.
func registerSingleRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&numServers, "nserv", 1, "Number of servers")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for random sampling (default: time-derived)")
}

// init sets up CLI flags and subcommands
func init() {
	registerRunFlags(runCmd)
	registerSingleRunFlags(runCmd)

	// outputs
	runCmd.Flags().StringVar(&eventsOut, "events-out", "", "Write the event log to this file (.jsonl or .csv)")
	runCmd.Flags().StringVar(&resultsPath, "results-path", "", "Write the statistics report as JSON to this file")
	runCmd.Flags().StringVar(&storeDSN, "store-dsn", "", "Postgres DSN to persist the run and its event log")
	runCmd.Flags().StringVar(&storeDriver, "store-driver", "pgx", "Store driver (pgx, sqlx)")
	runCmd.Flags().StringVar(&runLabel, "label", "", "Label stored with the run")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
