package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/queue-sim/sim"
	"github.com/inference-sim/queue-sim/sim/dist"
)

// runFile is the YAML run configuration. Every field is optional; absent
// fields keep their defaults. Unknown keys are rejected so typos fail loudly.
type runFile struct {
	NumTasks     *int       `yaml:"num_tasks"`
	NumServers   *int       `yaml:"num_servers"`
	Seed         *int64     `yaml:"seed"`
	Drain        *bool      `yaml:"drain"`
	Interarrival *dist.Spec `yaml:"interarrival"`
	Service      *dist.Spec `yaml:"service"`
}

// defaultConfig is an M/M/1 queue at 80% load.
func defaultConfig() sim.Config {
	return sim.Config{
		NumTasks:     100,
		NumServers:   1,
		Interarrival: dist.Spec{Type: "exponential", Params: map[string]float64{"rate": 1.0}},
		Service:      dist.Spec{Type: "exponential", Params: map[string]float64{"rate": 1.25}},
		Drain:        true,
	}
}

// loadRunConfig parses a YAML run file over the defaults.
func loadRunConfig(path string) (sim.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sim.Config{}, fmt.Errorf("read run config: %w", err)
	}
	return parseRunConfig(data)
}

func parseRunConfig(data []byte) (sim.Config, error) {
	var f runFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return sim.Config{}, fmt.Errorf("parse run config: %w", err)
	}

	cfg := defaultConfig()
	if f.NumTasks != nil {
		cfg.NumTasks = *f.NumTasks
	}
	if f.NumServers != nil {
		cfg.NumServers = *f.NumServers
	}
	if f.Seed != nil {
		cfg = cfg.WithSeed(*f.Seed)
	}
	if f.Drain != nil {
		cfg.Drain = *f.Drain
	}
	if f.Interarrival != nil {
		cfg.Interarrival = *f.Interarrival
	}
	if f.Service != nil {
		cfg.Service = *f.Service
	}
	return cfg, nil
}
